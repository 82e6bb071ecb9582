package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/application/service"
	"github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/ledgerpos/settlement-api/internal/domain/settlement"
	"github.com/ledgerpos/settlement-api/internal/presentation/http/dto/response"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ReturnHandler handles return HTTP requests
type ReturnHandler struct {
	returnService *service.ReturnService
}

// NewReturnHandler creates a new return handler
func NewReturnHandler(returnService *service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

type returnRequest struct {
	InvoiceID      uuid.UUID                  `json:"invoice_id" binding:"required"`
	Items          []settlement.ReturnRequest `json:"items"`
	DeliveryRefund decimal.Decimal            `json:"delivery_refund"`
	RestockItems   *bool                      `json:"restock_items"`
	Expenses       []settlement.Expense       `json:"expenses"`
	Payouts        []settlement.PaymentLine   `json:"payouts"`
	Notes          *string                    `json:"notes"`
}

func (r *returnRequest) toInput() *service.ReturnInput {
	restock := true
	if r.RestockItems != nil {
		restock = *r.RestockItems
	}
	return &service.ReturnInput{
		InvoiceID:      r.InvoiceID,
		Items:          r.Items,
		DeliveryRefund: r.DeliveryRefund,
		RestockItems:   restock,
		Expenses:       r.Expenses,
		Payouts:        r.Payouts,
		Notes:          r.Notes,
	}
}

// Quote handles quoting a return
func (h *ReturnHandler) Quote(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.returnService.QuoteReturn(c.Request.Context(), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Return quoted successfully", result)
}

// Commit handles committing a return
func (h *ReturnHandler) Commit(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	record, err := h.returnService.CommitReturn(c.Request.Context(), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Return committed successfully", record)
}

// Get handles getting a single return
func (h *ReturnHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid return ID")
		return
	}

	record, err := h.returnService.GetReturn(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Return retrieved successfully", record)
}

// List handles listing returns
func (h *ReturnHandler) List(c *gin.Context) {
	params := &repository.ReturnFilterParams{
		Pagination: paginationFromQuery(c),
		InvoiceID:  optionalUUIDQuery(c, "invoice_id"),
		CustomerID: optionalUUIDQuery(c, "customer_id"),
	}

	records, total, err := h.returnService.ListReturns(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(records,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Returns retrieved successfully", result)
}

// Delete handles reversing a committed return
func (h *ReturnHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid return ID")
		return
	}

	if err := h.returnService.DeleteReturn(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
