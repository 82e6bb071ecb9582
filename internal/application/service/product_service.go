package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/ledgerpos/settlement-api/pkg/apperror"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ProductService handles catalogue and stock operations
type ProductService struct {
	productRepo repository.ProductRepository
	damageRepo  repository.DamageLogRepository
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repository.ProductRepository,
	damageRepo repository.DamageLogRepository,
) *ProductService {
	return &ProductService{productRepo: productRepo, damageRepo: damageRepo}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name          string
	Code          string
	Quantity      int
	QuantityAlert int
	Price         decimal.Decimal
	WeightKg      decimal.Decimal
	Unit          string
	Notes         *string
}

// CreateProduct creates a product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	var fieldErrors []apperror.FieldError
	if input.Name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if input.Code == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "code", Message: "Code is required"})
	}
	if input.Price.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "price", Message: "Price must not be negative"})
	}
	if input.Quantity < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "quantity", Message: "Quantity must not be negative"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	existing, err := s.productRepo.GetByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewBadRequestError("A product with this code already exists")
	}

	product := &entity.Product{
		Name:          input.Name,
		Code:          input.Code,
		Quantity:      input.Quantity,
		QuantityAlert: input.QuantityAlert,
		Price:         input.Price,
		WeightKg:      input.WeightKg,
		Unit:          input.Unit,
		Notes:         input.Notes,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// UpdateProductInput represents the update product input. Quantity is
// absent: stock moves through sales, returns and damage logs, not edits.
type UpdateProductInput struct {
	Name          *string
	QuantityAlert *int
	Price         *decimal.Decimal
	WeightKg      *decimal.Decimal
	Unit          *string
	Notes         *string
}

// UpdateProduct updates a product's catalogue details
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.QuantityAlert != nil {
		product.QuantityAlert = *input.QuantityAlert
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperror.NewValidationError([]apperror.FieldError{
				{Field: "price", Message: "Price must not be negative"},
			})
		}
		product.Price = *input.Price
	}
	if input.WeightKg != nil {
		product.WeightKg = *input.WeightKg
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.Notes != nil {
		product.Notes = input.Notes
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct soft-deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// ListProducts returns products matching the filter
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	return s.productRepo.List(ctx, params)
}

// ListLowStock returns products at or below their alert quantity
func (s *ProductService) ListLowStock(ctx context.Context, params *pagination.PaginationParams) ([]entity.Product, int64, error) {
	return s.productRepo.List(ctx, &repository.ProductFilterParams{
		Pagination: params,
		LowStock:   true,
	})
}

// RestockProduct adds received stock to a product
func (s *ProductService) RestockProduct(ctx context.Context, id uuid.UUID, quantity int) (*entity.Product, error) {
	if quantity <= 0 {
		return nil, apperror.NewUnprocessableError("Restock quantity must be positive")
	}
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	if err := s.productRepo.AtomicIncrementBatch(ctx, map[uuid.UUID]int{id: quantity}); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// LogDamage pulls units out of saleable stock and records a damage log
// entry. The units can later go through an internal repair and, if it
// succeeds, back into stock.
func (s *ProductService) LogDamage(ctx context.Context, productID uuid.UUID, quantity int, reason string) (*entity.DamageLog, error) {
	if quantity <= 0 {
		return nil, apperror.NewUnprocessableError("Damage quantity must be positive")
	}
	if reason == "" {
		return nil, apperror.NewUnprocessableError("Damage log requires a reason")
	}
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	insufficient, err := s.productRepo.AtomicDecrementBatch(ctx, map[uuid.UUID]int{productID: quantity})
	if err != nil {
		return nil, err
	}
	if len(insufficient) > 0 {
		return nil, apperror.NewConflictError("Insufficient stock to log as damaged")
	}

	log := &entity.DamageLog{
		ProductID: productID,
		Quantity:  quantity,
		Reason:    reason,
	}
	if err := s.damageRepo.Create(ctx, log); err != nil {
		_ = s.productRepo.AtomicIncrementBatch(ctx, map[uuid.UUID]int{productID: quantity})
		return nil, err
	}
	return log, nil
}

// ListDamageLogs returns damage log entries
func (s *ProductService) ListDamageLogs(ctx context.Context, params *pagination.PaginationParams) ([]entity.DamageLog, int64, error) {
	return s.damageRepo.List(ctx, params)
}
