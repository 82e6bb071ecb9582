package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
)

// PaymentMethodRepository defines configured payment method access
type PaymentMethodRepository interface {
	Create(ctx context.Context, method *entity.PaymentMethod) error
	GetByName(ctx context.Context, name string) (*entity.PaymentMethod, error)
	ListActive(ctx context.Context) ([]entity.PaymentMethod, error)
	List(ctx context.Context) ([]entity.PaymentMethod, error)
	Update(ctx context.Context, method *entity.PaymentMethod) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CourierRepository defines courier pricing table access
type CourierRepository interface {
	Create(ctx context.Context, courier *entity.Courier) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Courier, error)
	List(ctx context.Context) ([]entity.Courier, error)
	Update(ctx context.Context, courier *entity.Courier) error
	Delete(ctx context.Context, id uuid.UUID) error
}
