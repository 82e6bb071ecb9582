package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Courier holds the weight-banded delivery pricing for one carrier:
// the first kilogram costs FirstKgPrice, every kilogram above that costs
// AdditionalKgPrice.
type Courier struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name              string          `gorm:"size:255;unique;not null" json:"name"`
	FirstKgPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"first_kg_price"`
	AdditionalKgPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"additional_kg_price"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new courier
func (c *Courier) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Courier model
func (Courier) TableName() string {
	return "couriers"
}
