package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ReturnFilterParams holds filtering options for listing returns
type ReturnFilterParams struct {
	Pagination *pagination.PaginationParams
	InvoiceID  *uuid.UUID
	CustomerID *uuid.UUID
}

// ReturnRepository defines return record data access. Create persists the
// record with its items, expenses and payment lines in one transaction;
// Delete hard-deletes the record and children so a reversal leaves no
// trace beyond the ledger corrections made alongside it.
type ReturnRepository interface {
	Create(ctx context.Context, record *entity.ReturnRecord) error
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.ReturnRecord, error)
	List(ctx context.Context, params *ReturnFilterParams) ([]entity.ReturnRecord, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// SumRefundsByInvoice totals the refunds already committed against the
	// invoice: total refund and the delivery portion. Reversed returns are
	// hard-deleted, so whatever is on record counts.
	SumRefundsByInvoice(ctx context.Context, invoiceID uuid.UUID) (RefundTotals, error)
}

// RefundTotals is the committed refund sum for one invoice
type RefundTotals struct {
	Total    decimal.Decimal
	Delivery decimal.Decimal
}
