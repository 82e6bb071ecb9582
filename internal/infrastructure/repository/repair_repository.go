package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	domainRepo "github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
	"gorm.io/gorm"
)

type repairRepository struct {
	db *gorm.DB
}

// NewRepairRepository creates a new repair repository
func NewRepairRepository(db *gorm.DB) domainRepo.RepairRepository {
	return &repairRepository{db: db}
}

func (r *repairRepository) Create(ctx context.Context, repair *entity.Repair) error {
	return r.db.WithContext(ctx).Create(repair).Error
}

func (r *repairRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Repair, error) {
	var repair entity.Repair
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").Preload("Customer").
		First(&repair, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &repair, err
}

func (r *repairRepository) Update(ctx context.Context, repair *entity.Repair) error {
	return r.db.WithContext(ctx).Save(repair).Error
}

func (r *repairRepository) List(ctx context.Context, params *domainRepo.RepairFilterParams) ([]entity.Repair, int64, error) {
	var repairs []entity.Repair
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Repair{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Order("created_at DESC").
		Find(&repairs).Error

	return repairs, total, err
}

func (r *repairRepository) AddItem(ctx context.Context, item *entity.RepairItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

type damageLogRepository struct {
	db *gorm.DB
}

// NewDamageLogRepository creates a new damage log repository
func NewDamageLogRepository(db *gorm.DB) domainRepo.DamageLogRepository {
	return &damageLogRepository{db: db}
}

func (r *damageLogRepository) Create(ctx context.Context, log *entity.DamageLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *damageLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.DamageLog, error) {
	var log entity.DamageLog
	err := r.db.WithContext(ctx).First(&log, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &log, err
}

func (r *damageLogRepository) Update(ctx context.Context, log *entity.DamageLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

func (r *damageLogRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.DamageLog, int64, error) {
	var logs []entity.DamageLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.DamageLog{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Product").
		Order("created_at DESC").
		Find(&logs).Error

	return logs, total, err
}
