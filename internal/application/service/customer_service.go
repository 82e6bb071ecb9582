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

// CustomerService handles customer account operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
	txnRepo      repository.TransactionRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	txnRepo repository.TransactionRepository,
) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, txnRepo: txnRepo}
}

// CreateCustomerInput represents the create customer input. A non-zero
// opening balance is posted as the account's first ledger transaction:
// positive for store credit carried in, negative for an amount owed.
type CreateCustomerInput struct {
	Name           string
	Email          *string
	Phone          *string
	Address        *string
	OpeningBalance decimal.Decimal
}

// CreateCustomer creates a customer, posting any opening balance
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	if input.Name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "name", Message: "Name is required"},
		})
	}

	customer := &entity.Customer{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Address: input.Address,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	if !input.OpeningBalance.IsZero() {
		txn := &entity.Transaction{
			CustomerID:  customer.ID,
			Amount:      input.OpeningBalance.Abs(),
			Type:        enum.TransactionCredit,
			Description: "Opening balance",
			Date:        time.Now(),
		}
		if input.OpeningBalance.IsNegative() {
			txn.Type = enum.TransactionDebit
		}
		if err := s.txnRepo.Post(ctx, txn); err != nil {
			return nil, err
		}
		customer.Balance = input.OpeningBalance
	}

	return customer, nil
}

// GetCustomer returns a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// UpdateCustomerInput represents the update customer input. The balance is
// deliberately absent; it only moves through ledger postings.
type UpdateCustomerInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// UpdateCustomer updates a customer's contact details
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperror.NewValidationError([]apperror.FieldError{
				{Field: "name", Message: "Name cannot be empty"},
			})
		}
		customer.Name = *input.Name
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.Address != nil {
		customer.Address = input.Address
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer soft-deletes a customer. The ledger history stays.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, id)
}

// ListCustomers returns customers matching the filter
func (s *CustomerService) ListCustomers(ctx context.Context, params *repository.CustomerFilterParams) ([]entity.Customer, int64, error) {
	return s.customerRepo.List(ctx, params)
}
