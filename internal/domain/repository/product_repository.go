package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
)

// ProductFilterParams holds filtering options for listing products
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	LowStock   bool
}

// ProductRepository defines product and stock data access
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)

	// AtomicDecrementBatch decrements stock for several products in one
	// transaction, each guarded by `quantity >= amount`. It returns the IDs
	// that had insufficient stock; when any fail the whole batch rolls back.
	AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error)

	// AtomicIncrementBatch restores stock (returns, cancellations, restocks)
	AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error
}
