package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is one ledger posting against a customer.
//
// Amount is always positive; the type supplies the sign. Postings are never
// mutated after creation. Deletion only happens as part of a full reversal
// (deleting a return removes the postings that return created). The optional
// source references tie a posting back to the operation that produced it.
type Transaction struct {
	ID            uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID    uuid.UUID            `gorm:"type:uuid;not null;index" json:"customer_id"`
	Amount        decimal.Decimal      `gorm:"type:decimal(18,4);not null" json:"amount"`
	Type          enum.TransactionType `gorm:"default:0" json:"type"`
	Description   string               `gorm:"size:500;not null" json:"description"`
	Date          time.Time            `gorm:"not null;index" json:"date"`
	PaymentMethod *string              `gorm:"size:50" json:"payment_method,omitempty"`
	ChequeNumber  *string              `gorm:"size:100" json:"cheque_number,omitempty"`
	InvoiceID     *uuid.UUID           `gorm:"type:uuid;index" json:"invoice_id,omitempty"`
	ReturnID      *uuid.UUID           `gorm:"type:uuid;index" json:"return_id,omitempty"`
	RepairID      *uuid.UUID           `gorm:"type:uuid;index" json:"repair_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`

	// Relationships
	Customer Customer `gorm:"foreignKey:CustomerID" json:"-"`
}

// SignedAmount returns the amount with the sign implied by the type
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == enum.TransactionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// BeforeCreate generates a UUID before creating a new transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
