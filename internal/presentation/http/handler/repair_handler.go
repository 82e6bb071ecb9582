package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/application/service"
	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/ledgerpos/settlement-api/internal/domain/settlement"
	"github.com/ledgerpos/settlement-api/internal/presentation/http/dto/response"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// RepairHandler handles repair HTTP requests
type RepairHandler struct {
	repairService *service.RepairService
}

// NewRepairHandler creates a new repair handler
func NewRepairHandler(repairService *service.RepairService) *RepairHandler {
	return &RepairHandler{repairService: repairService}
}

// Create handles taking in a customer repair
func (h *RepairHandler) Create(c *gin.Context) {
	var req struct {
		CustomerID  *uuid.UUID      `json:"customer_id"`
		ProductID   *uuid.UUID      `json:"product_id"`
		Description string          `json:"description" binding:"required"`
		IsWarranty  bool            `json:"is_warranty"`
		RepairFee   decimal.Decimal `json:"repair_fee"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	repair, err := h.repairService.CreateRepair(c.Request.Context(), &service.CreateRepairInput{
		CustomerID:  req.CustomerID,
		ProductID:   req.ProductID,
		Description: req.Description,
		IsWarranty:  req.IsWarranty,
		RepairFee:   req.RepairFee,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Repair created successfully", repair)
}

// CreateFromDamageLog handles raising an internal repair for a damaged unit
func (h *RepairHandler) CreateFromDamageLog(c *gin.Context) {
	var req struct {
		DamageLogID uuid.UUID `json:"damage_log_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	repair, err := h.repairService.CreateFromDamageLog(c.Request.Context(), req.DamageLogID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Repair created successfully", repair)
}

// Get handles getting a single repair
func (h *RepairHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid repair ID")
		return
	}

	repair, err := h.repairService.GetRepair(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repair retrieved successfully", repair)
}

// List handles listing repairs
func (h *RepairHandler) List(c *gin.Context) {
	params := &repository.RepairFilterParams{
		Pagination: paginationFromQuery(c),
		CustomerID: optionalUUIDQuery(c, "customer_id"),
	}
	if raw := c.Query("status"); raw != "" {
		var status enum.RepairStatus
		if err := status.UnmarshalJSON([]byte(`"` + raw + `"`)); err == nil {
			params.Status = &status
		}
	}

	repairs, total, err := h.repairService.ListRepairs(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(repairs,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Repairs retrieved successfully", result)
}

// Start handles moving a repair into progress
func (h *RepairHandler) Start(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid repair ID")
		return
	}

	repair, err := h.repairService.StartRepair(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repair started successfully", repair)
}

// AddPart handles recording a part consumed by a repair
func (h *RepairHandler) AddPart(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid repair ID")
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Quantity  int       `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	repair, err := h.repairService.AddPart(c.Request.Context(), id, req.ProductID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Part added successfully", repair)
}

// SetFee handles setting the repair fee
func (h *RepairHandler) SetFee(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid repair ID")
		return
	}

	var req struct {
		RepairFee decimal.Decimal `json:"repair_fee"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	repair, err := h.repairService.SetFee(c.Request.Context(), id, req.RepairFee)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repair fee updated successfully", repair)
}

// VoidWarranty handles voiding the warranty on a repair
func (h *RepairHandler) VoidWarranty(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid repair ID")
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	repair, err := h.repairService.VoidWarranty(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Warranty voided successfully", repair)
}

// Complete handles completing a repair and billing it
func (h *RepairHandler) Complete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid repair ID")
		return
	}

	var req struct {
		SaleType enum.SaleType            `json:"sale_type"`
		Payments []settlement.PaymentLine `json:"payments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	repair, err := h.repairService.CompleteRepair(c.Request.Context(), id, &service.CompleteRepairInput{
		SaleType: req.SaleType,
		Payments: req.Payments,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repair completed successfully", repair)
}

// MarkUnrepairable handles marking a repair unrepairable
func (h *RepairHandler) MarkUnrepairable(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid repair ID")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "Invalid request body")
		return
	}

	repair, err := h.repairService.MarkUnrepairable(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repair marked unrepairable", repair)
}

// CompleteWithReplacement handles resolving an unrepairable repair with a
// replacement product
func (h *RepairHandler) CompleteWithReplacement(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid repair ID")
		return
	}

	var req struct {
		ReplacementProductID uuid.UUID                `json:"replacement_product_id" binding:"required"`
		Price                *decimal.Decimal         `json:"price"`
		SaleType             enum.SaleType            `json:"sale_type"`
		Payments             []settlement.PaymentLine `json:"payments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	repair, err := h.repairService.CompleteWithReplacement(c.Request.Context(), id, &service.CompleteReplacementInput{
		ReplacementProductID: req.ReplacementProductID,
		Price:                req.Price,
		SaleType:             req.SaleType,
		Payments:             req.Payments,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repair resolved with replacement", repair)
}

// CompleteWithCredit handles resolving an unrepairable repair with store
// credit
func (h *RepairHandler) CompleteWithCredit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid repair ID")
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	repair, err := h.repairService.CompleteWithCredit(c.Request.Context(), id, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repair resolved with store credit", repair)
}

// MarkRepaired handles finishing an internal damage-log repair
func (h *RepairHandler) MarkRepaired(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid repair ID")
		return
	}

	repair, err := h.repairService.MarkRepaired(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repair marked repaired", repair)
}
