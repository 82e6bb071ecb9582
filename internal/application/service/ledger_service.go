package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/ledgerpos/settlement-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// LedgerService exposes the customer ledger: listing postings, manual
// adjustments, and the balance consistency check.
type LedgerService struct {
	txnRepo      repository.TransactionRepository
	customerRepo repository.CustomerRepository
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	txnRepo repository.TransactionRepository,
	customerRepo repository.CustomerRepository,
) *LedgerService {
	return &LedgerService{txnRepo: txnRepo, customerRepo: customerRepo}
}

// ListTransactions returns ledger postings matching the filter
func (s *LedgerService) ListTransactions(ctx context.Context, params *repository.TransactionFilterParams) ([]entity.Transaction, int64, error) {
	return s.txnRepo.List(ctx, params)
}

// GetTransaction returns a single posting
func (s *LedgerService) GetTransaction(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	txn, err := s.txnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	return txn, nil
}

// AdjustmentInput is a manual ledger adjustment
type AdjustmentInput struct {
	CustomerID  uuid.UUID
	Amount      decimal.Decimal
	Type        enum.TransactionType
	Description string
}

// PostAdjustment records a manual posting against a customer. The amount is
// always positive; the type supplies the direction.
func (s *LedgerService) PostAdjustment(ctx context.Context, input *AdjustmentInput) (*entity.Transaction, error) {
	if !input.Amount.IsPositive() {
		return nil, apperror.NewUnprocessableError("Adjustment amount must be positive")
	}
	if input.Description == "" {
		return nil, apperror.NewUnprocessableError("Adjustment requires a description")
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	txn := &entity.Transaction{
		CustomerID:  input.CustomerID,
		Amount:      input.Amount,
		Type:        input.Type,
		Description: input.Description,
		Date:        time.Now(),
	}
	if err := s.txnRepo.Post(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// BalanceCheck is the result of verifying a customer's stored balance
// against the sum of their ledger.
type BalanceCheck struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Stored     decimal.Decimal `json:"stored"`
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Consistent bool            `json:"consistent"`
}

// CheckBalance recomputes the balance from the ledger and compares it with
// the stored column. Every posting updates both in one database
// transaction, so drift means something wrote the balance out-of-band.
func (s *LedgerService) CheckBalance(ctx context.Context, customerID uuid.UUID) (*BalanceCheck, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	sum, err := s.txnRepo.SumSignedByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return &BalanceCheck{
		CustomerID: customerID,
		Stored:     customer.Balance,
		LedgerSum:  sum,
		Consistent: customer.Balance.Equal(sum),
	}, nil
}
