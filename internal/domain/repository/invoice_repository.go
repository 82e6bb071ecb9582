package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
)

// InvoiceFilterParams holds filtering options for listing invoices
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.InvoiceStatus
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// InvoiceRepository defines invoice data access
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetWithLines(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error
	UpdateReturnStatus(ctx context.Context, id uuid.UUID, status enum.ReturnStatus) error

	// RecordPayment inserts the payment line, adds its amount to the
	// invoice's amount_paid and sets the status, in one transaction
	RecordPayment(ctx context.Context, id uuid.UUID, payment *entity.InvoicePayment, status enum.InvoiceStatus) error

	// RemovePayment deletes the payment line, subtracts its amount from
	// amount_paid and restores the status, in one transaction. Only
	// payment compensation uses it.
	RemovePayment(ctx context.Context, id uuid.UUID, paymentID uuid.UUID, status enum.InvoiceStatus) error

	// Delete hard-deletes the invoice and its lines. Only commit
	// compensation uses it; committed invoices are otherwise permanent.
	Delete(ctx context.Context, id uuid.UUID) error

	// AdjustReturnedQuantities adds the deltas (may be negative, for
	// reversal) to each line's quantity_returned in one transaction
	AdjustReturnedQuantities(ctx context.Context, deltas map[uuid.UUID]int) error

	// ListOverdue returns unpaid invoices whose due date has passed
	ListOverdue(ctx context.Context, asOf time.Time, params *pagination.PaginationParams) ([]entity.Invoice, int64, error)
}
