package repository

import (
	"context"

	"github.com/ledgerpos/settlement-api/internal/domain/entity"
)

// IdempotencyRepository defines idempotency key data access
type IdempotencyRepository interface {
	GetByKey(ctx context.Context, key, endpoint string) (*entity.IdempotencyKey, error)
	Create(ctx context.Context, key *entity.IdempotencyKey) error
	DeleteExpired(ctx context.Context) error
}
