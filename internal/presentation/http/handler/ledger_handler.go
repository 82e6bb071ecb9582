package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/application/service"
	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/ledgerpos/settlement-api/internal/presentation/http/dto/response"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles ledger HTTP requests
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// List handles listing ledger postings
func (h *LedgerHandler) List(c *gin.Context) {
	params := &repository.TransactionFilterParams{
		Pagination: paginationFromQuery(c),
		CustomerID: optionalUUIDQuery(c, "customer_id"),
	}

	txns, total, err := h.ledgerService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(txns,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Transactions retrieved successfully", result)
}

// Get handles getting a single posting
func (h *LedgerHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}

	txn, err := h.ledgerService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transaction retrieved successfully", txn)
}

// PostAdjustment handles recording a manual ledger adjustment
func (h *LedgerHandler) PostAdjustment(c *gin.Context) {
	var req struct {
		CustomerID  uuid.UUID            `json:"customer_id" binding:"required"`
		Amount      decimal.Decimal      `json:"amount" binding:"required"`
		Type        enum.TransactionType `json:"type"`
		Description string               `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	txn, err := h.ledgerService.PostAdjustment(c.Request.Context(), &service.AdjustmentInput{
		CustomerID:  req.CustomerID,
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Adjustment posted successfully", txn)
}
