package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
)

// CustomerFilterParams holds filtering options for listing customers
type CustomerFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
}

// CustomerRepository defines customer data access.
//
// Balance never moves through Update; it moves only as part of a ledger
// posting (TransactionRepository). That keeps the balance column a pure
// derivative of the transactions table.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *CustomerFilterParams) ([]entity.Customer, int64, error)
}
