package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReturnRecord is a committed reversal of part or all of a prior sale.
// TotalRefund is derived by the refund calculator at commit. RestockItems
// records whether the returned quantities were added back to saleable
// stock; damaged returns leave it false.
type ReturnRecord struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	CustomerID   *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	ItemsRefund  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"items_refund"`
	DeliveryRefund decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"delivery_refund"`
	TotalRefund  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_refund"`
	RestockItems bool            `gorm:"default:true" json:"restock_items"`
	Notes        *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Invoice  Invoice         `gorm:"foreignKey:InvoiceID" json:"-"`
	Items    []ReturnItem    `gorm:"foreignKey:ReturnID" json:"items,omitempty"`
	Expenses []ReturnExpense `gorm:"foreignKey:ReturnID" json:"expenses,omitempty"`
	Payments []ReturnPayment `gorm:"foreignKey:ReturnID" json:"payments,omitempty"`
}

// BeforeCreate generates a UUID before creating a new return record
func (r *ReturnRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReturnRecord model
func (ReturnRecord) TableName() string {
	return "return_records"
}

// ReturnItem records how many units of one invoice line came back.
// UnitPrice is the original sale price, fixed at return time.
type ReturnItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ReturnID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"return_id"`
	LineItemID uuid.UUID       `gorm:"type:uuid;not null;index" json:"line_item_id"`
	ProductID  *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new return item
func (r *ReturnItem) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReturnItem model
func (ReturnItem) TableName() string {
	return "return_items"
}

// ReturnExpense is a cost incurred handling the return (shipping the item
// back, inspection). Expenses are reporting-only; they never bound or
// reduce the refund ceiling.
type ReturnExpense struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ReturnID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"return_id"`
	Description string          `gorm:"size:500;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new return expense
func (r *ReturnExpense) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReturnExpense model
func (ReturnExpense) TableName() string {
	return "return_expenses"
}

// ReturnPayment is one refund disbursement line (cash handed back, card
// reversal). The sum of payments never exceeds the return's total refund;
// any remainder is issued as store credit.
type ReturnPayment struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ReturnID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"return_id"`
	Method       string          `gorm:"size:50;not null" json:"method"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	ChequeNumber *string         `gorm:"size:100" json:"cheque_number,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new return payment
func (r *ReturnPayment) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReturnPayment model
func (ReturnPayment) TableName() string {
	return "return_payments"
}
