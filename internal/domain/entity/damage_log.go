package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DamageLog records a unit pulled from saleable stock as damaged. A damage
// log entry can spawn an internal repair; if that repair succeeds the unit
// goes back to stock, with no customer-facing billing either way.
type DamageLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	ProductID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity    int            `gorm:"not null;default:1" json:"quantity"`
	Reason      string         `gorm:"size:500;not null" json:"reason"`
	Resolved    bool           `gorm:"default:false" json:"resolved"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new damage log entry
func (d *DamageLog) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DamageLog model
func (DamageLog) TableName() string {
	return "damage_logs"
}
