package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	domainRepo "github.com/ledgerpos/settlement-api/internal/domain/repository"
	"gorm.io/gorm"
)

type paymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository creates a new payment method repository
func NewPaymentMethodRepository(db *gorm.DB) domainRepo.PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

func (r *paymentMethodRepository) Create(ctx context.Context, method *entity.PaymentMethod) error {
	return r.db.WithContext(ctx).Create(method).Error
}

func (r *paymentMethodRepository) GetByName(ctx context.Context, name string) (*entity.PaymentMethod, error) {
	var method entity.PaymentMethod
	err := r.db.WithContext(ctx).First(&method, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &method, err
}

func (r *paymentMethodRepository) ListActive(ctx context.Context) ([]entity.PaymentMethod, error) {
	var methods []entity.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&methods).Error
	return methods, err
}

func (r *paymentMethodRepository) List(ctx context.Context) ([]entity.PaymentMethod, error) {
	var methods []entity.PaymentMethod
	err := r.db.WithContext(ctx).Order("name ASC").Find(&methods).Error
	return methods, err
}

func (r *paymentMethodRepository) Update(ctx context.Context, method *entity.PaymentMethod) error {
	return r.db.WithContext(ctx).Save(method).Error
}

func (r *paymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.PaymentMethod{}, "id = ?", id).Error
}

type courierRepository struct {
	db *gorm.DB
}

// NewCourierRepository creates a new courier repository
func NewCourierRepository(db *gorm.DB) domainRepo.CourierRepository {
	return &courierRepository{db: db}
}

func (r *courierRepository) Create(ctx context.Context, courier *entity.Courier) error {
	return r.db.WithContext(ctx).Create(courier).Error
}

func (r *courierRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Courier, error) {
	var courier entity.Courier
	err := r.db.WithContext(ctx).First(&courier, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &courier, err
}

func (r *courierRepository) List(ctx context.Context) ([]entity.Courier, error) {
	var couriers []entity.Courier
	err := r.db.WithContext(ctx).Order("name ASC").Find(&couriers).Error
	return couriers, err
}

func (r *courierRepository) Update(ctx context.Context, courier *entity.Courier) error {
	return r.db.WithContext(ctx).Save(courier).Error
}

func (r *courierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Courier{}, "id = ?", id).Error
}
