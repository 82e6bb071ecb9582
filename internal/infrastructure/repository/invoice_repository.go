package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	domainRepo "github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
	"gorm.io/gorm"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	// Lines and their bundle components persist through gorm associations,
	// all inside one insert transaction.
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetWithLines(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines").Preload("Lines.Components").Preload("Payments").Preload("Customer").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Invoice{})

	if params.Search != "" {
		query = query.Where("invoice_no ILIKE ?", "%"+params.Search+"%")
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Order("created_at DESC").
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *invoiceRepository) UpdateReturnStatus(ctx context.Context, id uuid.UUID, status enum.ReturnStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("id = ?", id).
		Update("return_status", status).Error
}

// RecordPayment inserts the payment line, bumps amount_paid and sets the
// status inside one transaction.
func (r *invoiceRepository) RecordPayment(ctx context.Context, id uuid.UUID, payment *entity.InvoicePayment, status enum.InvoiceStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment.InvoiceID = id
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		return tx.Model(&entity.Invoice{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"amount_paid": gorm.Expr("amount_paid + ?", payment.Amount),
				"status":      status,
			}).Error
	})
}

func (r *invoiceRepository) RemovePayment(ctx context.Context, id uuid.UUID, paymentID uuid.UUID, status enum.InvoiceStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment entity.InvoicePayment
		if err := tx.Where("id = ? AND invoice_id = ?", paymentID, id).
			First(&payment).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&payment).Error; err != nil {
			return err
		}
		return tx.Model(&entity.Invoice{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"amount_paid": gorm.Expr("amount_paid - ?", payment.Amount),
				"status":      status,
			}).Error
	})
}

// Delete hard-deletes the invoice with its lines, components and payments.
// Used only to unwind a commit whose ledger postings failed.
func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lineIDs []uuid.UUID
		if err := tx.Model(&entity.LineItem{}).
			Where("invoice_id = ?", id).
			Pluck("id", &lineIDs).Error; err != nil {
			return err
		}
		if len(lineIDs) > 0 {
			if err := tx.Unscoped().Where("line_item_id IN ?", lineIDs).
				Delete(&entity.BundleComponent{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("invoice_id = ?", id).
			Delete(&entity.InvoicePayment{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("invoice_id = ?", id).
			Delete(&entity.LineItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&entity.Invoice{}, "id = ?", id).Error
	})
}

// AdjustReturnedQuantities applies the deltas to quantity_returned on each
// line in one transaction; negative deltas reverse a deleted return.
func (r *invoiceRepository) AdjustReturnedQuantities(ctx context.Context, deltas map[uuid.UUID]int) error {
	if len(deltas) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for lineID, delta := range deltas {
			if err := tx.Model(&entity.LineItem{}).
				Where("id = ?", lineID).
				Update("quantity_returned", gorm.Expr("quantity_returned + ?", delta)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *invoiceRepository) ListOverdue(ctx context.Context, asOf time.Time, params *pagination.PaginationParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("status IN ?", []enum.InvoiceStatus{enum.InvoiceStatusSent, enum.InvoiceStatusPartiallyPaid}).
		Where("due_date IS NOT NULL AND due_date < ?", asOf)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Customer").
		Order("due_date ASC").
		Find(&invoices).Error

	return invoices, total, err
}
