package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repair is a repair job taken in from a customer, or raised internally
// from a damage log entry (DamageLogID set). While IsWarranty is true the
// repair fee is pinned to zero; voiding the warranty is one-way and
// requires a reason.
type Repair struct {
	ID                uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID        *uuid.UUID        `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	ProductID         *uuid.UUID        `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Description       string            `gorm:"size:500;not null" json:"description"`
	Status            enum.RepairStatus `gorm:"default:0" json:"status"`
	IsWarranty        bool              `gorm:"default:false" json:"is_warranty"`
	WarrantyVoidReason *string          `gorm:"size:500" json:"warranty_void_reason,omitempty"`
	RepairFee         decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0" json:"repair_fee"`
	DamageLogID       *uuid.UUID        `gorm:"type:uuid;index" json:"damage_log_id,omitempty"`
	InvoiceID         *uuid.UUID        `gorm:"type:uuid;index" json:"invoice_id,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	DeletedAt         gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relationships
	Customer *Customer    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []RepairItem `gorm:"foreignKey:RepairID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new repair
func (r *Repair) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Repair model
func (Repair) TableName() string {
	return "repairs"
}

// RepairItem is a part consumed by a repair. Parts are billed as invoice
// lines when the repair completes through the normal billing path.
type RepairItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	RepairID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"repair_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new repair item
func (r *RepairItem) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RepairItem model
func (RepairItem) TableName() string {
	return "repair_items"
}
