package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/ledgerpos/settlement-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// SettingsService manages settlement configuration: payment methods and
// courier pricing tables.
type SettingsService struct {
	methodRepo  repository.PaymentMethodRepository
	courierRepo repository.CourierRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(
	methodRepo repository.PaymentMethodRepository,
	courierRepo repository.CourierRepository,
) *SettingsService {
	return &SettingsService{methodRepo: methodRepo, courierRepo: courierRepo}
}

// PaymentMethodInput represents a payment method create/update input
type PaymentMethodInput struct {
	Name              string
	RequiresReference bool
	Active            bool
}

// CreatePaymentMethod adds a configured payment method
func (s *SettingsService) CreatePaymentMethod(ctx context.Context, input *PaymentMethodInput) (*entity.PaymentMethod, error) {
	if input.Name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "name", Message: "Name is required"},
		})
	}
	existing, err := s.methodRepo.GetByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewBadRequestError("A payment method with this name already exists")
	}

	method := &entity.PaymentMethod{
		Name:              input.Name,
		RequiresReference: input.RequiresReference,
		Active:            input.Active,
	}
	if err := s.methodRepo.Create(ctx, method); err != nil {
		return nil, err
	}
	return method, nil
}

// UpdatePaymentMethod updates a payment method's flags. The name is fixed;
// committed payment lines reference methods by name.
func (s *SettingsService) UpdatePaymentMethod(ctx context.Context, id uuid.UUID, requiresReference, active bool) (*entity.PaymentMethod, error) {
	methods, err := s.methodRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	var method *entity.PaymentMethod
	for i := range methods {
		if methods[i].ID == id {
			method = &methods[i]
			break
		}
	}
	if method == nil {
		return nil, apperror.NewNotFoundError("Payment method")
	}

	method.RequiresReference = requiresReference
	method.Active = active
	if err := s.methodRepo.Update(ctx, method); err != nil {
		return nil, err
	}
	return method, nil
}

// DeletePaymentMethod removes a payment method from configuration
func (s *SettingsService) DeletePaymentMethod(ctx context.Context, id uuid.UUID) error {
	return s.methodRepo.Delete(ctx, id)
}

// ListPaymentMethods returns every configured payment method
func (s *SettingsService) ListPaymentMethods(ctx context.Context) ([]entity.PaymentMethod, error) {
	return s.methodRepo.List(ctx)
}

// CourierInput represents a courier create/update input
type CourierInput struct {
	Name              string
	FirstKgPrice      decimal.Decimal
	AdditionalKgPrice decimal.Decimal
}

func (i *CourierInput) validate() error {
	var fieldErrors []apperror.FieldError
	if i.Name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if i.FirstKgPrice.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "first_kg_price", Message: "Price must not be negative"})
	}
	if i.AdditionalKgPrice.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "additional_kg_price", Message: "Price must not be negative"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreateCourier adds a courier pricing table
func (s *SettingsService) CreateCourier(ctx context.Context, input *CourierInput) (*entity.Courier, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	courier := &entity.Courier{
		Name:              input.Name,
		FirstKgPrice:      input.FirstKgPrice,
		AdditionalKgPrice: input.AdditionalKgPrice,
	}
	if err := s.courierRepo.Create(ctx, courier); err != nil {
		return nil, err
	}
	return courier, nil
}

// UpdateCourier updates a courier pricing table
func (s *SettingsService) UpdateCourier(ctx context.Context, id uuid.UUID, input *CourierInput) (*entity.Courier, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	courier, err := s.courierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if courier == nil {
		return nil, apperror.NewNotFoundError("Courier")
	}

	courier.Name = input.Name
	courier.FirstKgPrice = input.FirstKgPrice
	courier.AdditionalKgPrice = input.AdditionalKgPrice
	if err := s.courierRepo.Update(ctx, courier); err != nil {
		return nil, err
	}
	return courier, nil
}

// DeleteCourier removes a courier
func (s *SettingsService) DeleteCourier(ctx context.Context, id uuid.UUID) error {
	return s.courierRepo.Delete(ctx, id)
}

// ListCouriers returns every courier
func (s *SettingsService) ListCouriers(ctx context.Context) ([]entity.Courier, error) {
	return s.courierRepo.List(ctx)
}
