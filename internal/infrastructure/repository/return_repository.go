package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	domainRepo "github.com/ledgerpos/settlement-api/internal/domain/repository"
	"gorm.io/gorm"
)

type returnRepository struct {
	db *gorm.DB
}

// NewReturnRepository creates a new return repository
func NewReturnRepository(db *gorm.DB) domainRepo.ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) Create(ctx context.Context, record *entity.ReturnRecord) error {
	// Items, expenses and payment lines persist through gorm associations
	// inside the insert transaction.
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *returnRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.ReturnRecord, error) {
	var record entity.ReturnRecord
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Expenses").Preload("Payments").
		First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

func (r *returnRepository) List(ctx context.Context, params *domainRepo.ReturnFilterParams) ([]entity.ReturnRecord, int64, error) {
	var records []entity.ReturnRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ReturnRecord{})

	if params.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *params.InvoiceID)
	}
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items").
		Order("created_at DESC").
		Find(&records).Error

	return records, total, err
}

func (r *returnRepository) SumRefundsByInvoice(ctx context.Context, invoiceID uuid.UUID) (domainRepo.RefundTotals, error) {
	var totals domainRepo.RefundTotals
	err := r.db.WithContext(ctx).Model(&entity.ReturnRecord{}).
		Where("invoice_id = ?", invoiceID).
		Select("COALESCE(SUM(total_refund), 0) AS total, COALESCE(SUM(delivery_refund), 0) AS delivery").
		Scan(&totals).Error
	return totals, err
}

// Delete hard-deletes the record and its children; the ledger and stock
// corrections of a reversal are made by the caller alongside this.
func (r *returnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("return_id = ?", id).Delete(&entity.ReturnItem{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("return_id = ?", id).Delete(&entity.ReturnExpense{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("return_id = ?", id).Delete(&entity.ReturnPayment{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&entity.ReturnRecord{}, "id = ?", id).Error
	})
}
