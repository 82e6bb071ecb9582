package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	domainRepo "github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) domainRepo.TransactionRepository {
	return &transactionRepository{db: db}
}

// Post inserts the posting and applies its signed amount to the customer
// balance in one database transaction.
func (r *transactionRepository) Post(ctx context.Context, txn *entity.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return postOne(tx, txn)
	})
}

// PostBatch posts several transactions atomically; either every posting and
// balance adjustment lands or none do.
func (r *transactionRepository) PostBatch(ctx context.Context, txns []*entity.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, txn := range txns {
			if err := postOne(tx, txn); err != nil {
				return err
			}
		}
		return nil
	})
}

// PostBatchGuarded posts the batch atomically with one posting, at
// guardIndex, required to not overdraw the balance. The guarded posting is
// how store credit gets consumed: if the authoritative balance no longer
// covers it the whole batch rolls back and (false, nil) is returned.
func (r *transactionRepository) PostBatchGuarded(ctx context.Context, txns []*entity.Transaction, guardIndex int) (bool, error) {
	if len(txns) == 0 {
		return true, nil
	}

	guarded := true
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, txn := range txns {
			if i != guardIndex {
				if err := postOne(tx, txn); err != nil {
					return err
				}
				continue
			}

			if err := tx.Create(txn).Error; err != nil {
				return err
			}
			result := tx.Model(&entity.Customer{}).
				Where("id = ? AND balance >= ?", txn.CustomerID, txn.Amount).
				Update("balance", gorm.Expr("balance - ?", txn.Amount))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				guarded = false
				return gorm.ErrInvalidTransaction
			}
		}
		return nil
	})

	if !guarded {
		return false, nil
	}
	return err == nil, err
}

func postOne(tx *gorm.DB, txn *entity.Transaction) error {
	if err := tx.Create(txn).Error; err != nil {
		return err
	}
	return tx.Model(&entity.Customer{}).
		Where("id = ?", txn.CustomerID).
		Update("balance", gorm.Expr("balance + ?", txn.SignedAmount())).Error
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	var txn entity.Transaction
	err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &txn, err
}

func (r *transactionRepository) List(ctx context.Context, params *domainRepo.TransactionFilterParams) ([]entity.Transaction, int64, error) {
	var txns []entity.Transaction
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Transaction{})

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("date DESC, created_at DESC").
		Find(&txns).Error

	return txns, total, err
}

func (r *transactionRepository) ListByReturn(ctx context.Context, returnID uuid.UUID) ([]entity.Transaction, error) {
	var txns []entity.Transaction
	err := r.db.WithContext(ctx).
		Where("return_id = ?", returnID).
		Find(&txns).Error
	return txns, err
}

// SumSignedByCustomer recomputes the balance from the ledger:
// credits count positive, debits negative.
func (r *transactionRepository) SumSignedByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&entity.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN type = 1 THEN -amount ELSE amount END), 0)").
		Where("customer_id = ?", customerID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// DeleteByReturn removes a return's postings and backs their signed amounts
// out of the customer balance inside one transaction.
func (r *transactionRepository) DeleteByReturn(ctx context.Context, returnID uuid.UUID) ([]entity.Transaction, error) {
	var txns []entity.Transaction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("return_id = ?", returnID).Find(&txns).Error; err != nil {
			return err
		}
		for _, txn := range txns {
			if err := tx.Model(&entity.Customer{}).
				Where("id = ?", txn.CustomerID).
				Update("balance", gorm.Expr("balance - ?", txn.SignedAmount())).Error; err != nil {
				return err
			}
		}
		return tx.Where("return_id = ?", returnID).Delete(&entity.Transaction{}).Error
	})

	return txns, err
}
