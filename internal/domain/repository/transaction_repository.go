package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// TransactionFilterParams holds filtering options for listing transactions
type TransactionFilterParams struct {
	Pagination *pagination.PaginationParams
	CustomerID *uuid.UUID
}

// TransactionRepository is the single write path into the ledger.
//
// Post inserts the transaction and applies its signed amount to the
// customer balance inside one database transaction, so the invariant
// balance == Σ signed(amount) can never be observed broken. Postings are
// immutable; DeleteByReturn exists solely for full reversal of a return.
type TransactionRepository interface {
	Post(ctx context.Context, txn *entity.Transaction) error
	PostBatch(ctx context.Context, txns []*entity.Transaction) error

	// PostBatchGuarded posts all transactions atomically. The posting at
	// guardIndex must not push the customer balance below zero: its balance
	// update runs as
	//   UPDATE customers SET balance = balance - ? WHERE id = ? AND balance >= ?
	// and a zero-row result rolls the whole batch back and returns false.
	// A guardIndex of -1 behaves like PostBatch.
	PostBatchGuarded(ctx context.Context, txns []*entity.Transaction, guardIndex int) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	List(ctx context.Context, params *TransactionFilterParams) ([]entity.Transaction, int64, error)
	ListByReturn(ctx context.Context, returnID uuid.UUID) ([]entity.Transaction, error)

	// SumSignedByCustomer recomputes the customer's balance from the ledger
	SumSignedByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)

	// DeleteByReturn removes the postings a return created and backs their
	// signed amounts out of the customer balance, in one database
	// transaction. Returns the deleted postings.
	DeleteByReturn(ctx context.Context, returnID uuid.UUID) ([]entity.Transaction, error)
}
