package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice represents a committed sale, either a walk-in receipt or a
// deferred invoice. Total is derived by the settlement engine at commit and
// never edited independently of its lines.
type Invoice struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNo      string             `gorm:"size:100;unique;not null" json:"invoice_no"`
	CustomerID     *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	SaleType       enum.SaleType      `gorm:"default:0" json:"sale_type"`
	Status         enum.InvoiceStatus `gorm:"default:0" json:"status"`
	ReturnStatus   enum.ReturnStatus  `gorm:"default:0" json:"return_status"`
	SubTotal       decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0" json:"sub_total"`
	Discount       decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0" json:"discount"`
	DeliveryCharge decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0" json:"delivery_charge"`
	CreditApplied  decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0" json:"credit_applied"`
	Total          decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0" json:"total"`
	AmountPaid     decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0" json:"amount_paid"`
	DueDate        *time.Time         `json:"due_date,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Customer *Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Lines    []LineItem       `gorm:"foreignKey:InvoiceID" json:"lines,omitempty"`
	Payments []InvoicePayment `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// AmountDue returns what remains unpaid on the invoice. Store credit
// applied at checkout counts as settled value.
func (i *Invoice) AmountDue() decimal.Decimal {
	due := i.Total.Sub(i.CreditApplied).Sub(i.AmountPaid)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// AmountSettled returns the total value received against the invoice,
// method payments plus store credit. Refunds are capped by this figure.
func (i *Invoice) AmountSettled() decimal.Decimal {
	return i.AmountPaid.Add(i.CreditApplied)
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// LineItem is one line on an invoice. ProductID is optional so that custom
// (non-catalogue) items can be sold. Discount is stored resolved to an
// absolute currency amount, already clamped to the line total.
type LineItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ProductID        *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Description      string          `gorm:"size:500;not null" json:"description"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	Discount         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount"`
	Unit             string          `gorm:"size:50" json:"unit"`
	WarrantyMonths   int             `gorm:"default:0" json:"warranty_months"`
	QuantityReturned int             `gorm:"default:0" json:"quantity_returned"`
	CreatedAt        time.Time       `json:"created_at"`

	// Relationships
	Invoice    Invoice           `gorm:"foreignKey:InvoiceID" json:"-"`
	Product    *Product          `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Components []BundleComponent `gorm:"foreignKey:LineItemID" json:"components,omitempty"`
}

// ReturnableQuantity returns how many units can still be returned on the line
func (l *LineItem) ReturnableQuantity() int {
	remaining := l.Quantity - l.QuantityReturned
	if remaining < 0 {
		return 0
	}
	return remaining
}

// BeforeCreate generates a UUID before creating a new line item
func (l *LineItem) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LineItem model
func (LineItem) TableName() string {
	return "line_items"
}

// InvoicePayment is one payment method line committed with a sale or
// recorded against a due invoice later.
type InvoicePayment struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Method       string          `gorm:"size:100;not null" json:"method"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	ChequeNumber string          `gorm:"size:100" json:"cheque_number,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new invoice payment
func (p *InvoicePayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoicePayment model
func (InvoicePayment) TableName() string {
	return "invoice_payments"
}

// BundleComponent is a sub-item of a bundle line. Components carry no price
// of their own; they exist to drive stock movement when the bundle sells or
// is returned. Quantity is per unit of the parent line.
type BundleComponent struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	LineItemID uuid.UUID `gorm:"type:uuid;not null;index" json:"line_item_id"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity   int       `gorm:"not null" json:"quantity"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new bundle component
func (b *BundleComponent) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BundleComponent model
func (BundleComponent) TableName() string {
	return "bundle_components"
}
