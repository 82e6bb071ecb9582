package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer represents a customer account.
//
// Balance is signed: positive means store credit owed to the customer,
// negative means the customer owes the store. Outside of customer creation
// (opening balance, itself posted as an initial transaction) the balance
// column is only ever mutated alongside a ledger posting, inside the same
// database transaction.
type Customer struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Email     *string         `gorm:"size:255" json:"email,omitempty"`
	Phone     *string         `gorm:"size:50" json:"phone,omitempty"`
	Address   *string         `gorm:"type:text" json:"address,omitempty"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:CustomerID" json:"-"`
	Invoices     []Invoice     `gorm:"foreignKey:CustomerID" json:"-"`
	Repairs      []Repair      `gorm:"foreignKey:CustomerID" json:"-"`
}

// AvailableCredit returns the positive part of the balance
func (c *Customer) AvailableCredit() decimal.Decimal {
	if c.Balance.IsPositive() {
		return c.Balance
	}
	return decimal.Zero
}

// OutstandingBalance returns the amount the customer owes, as a positive number
func (c *Customer) OutstandingBalance() decimal.Decimal {
	if c.Balance.IsNegative() {
		return c.Balance.Neg()
	}
	return decimal.Zero
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
