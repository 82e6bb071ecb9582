package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
)

// RepairFilterParams holds filtering options for listing repairs
type RepairFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.RepairStatus
	CustomerID *uuid.UUID
}

// RepairRepository defines repair data access
type RepairRepository interface {
	Create(ctx context.Context, repair *entity.Repair) error
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Repair, error)
	Update(ctx context.Context, repair *entity.Repair) error
	List(ctx context.Context, params *RepairFilterParams) ([]entity.Repair, int64, error)
	AddItem(ctx context.Context, item *entity.RepairItem) error
}

// DamageLogRepository defines damage log data access
type DamageLogRepository interface {
	Create(ctx context.Context, log *entity.DamageLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.DamageLog, error)
	Update(ctx context.Context, log *entity.DamageLog) error
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.DamageLog, int64, error)
}
