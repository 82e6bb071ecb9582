package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentMethod is a configured way of paying (cash, card, cheque, mobile
// money). RequiresReference marks methods that need a reference string on
// every payment line, e.g. a cheque number.
type PaymentMethod struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name              string         `gorm:"size:50;unique;not null" json:"name"`
	RequiresReference bool           `gorm:"default:false" json:"requires_reference"`
	Active            bool           `gorm:"default:true" json:"active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new payment method
func (m *PaymentMethod) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PaymentMethod model
func (PaymentMethod) TableName() string {
	return "payment_methods"
}
