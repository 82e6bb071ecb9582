package handler

import (
	"time"

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

// SaleHandler handles sale and invoice HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

type saleLineRequest struct {
	ProductID      *uuid.UUID       `json:"product_id"`
	Description    string           `json:"description"`
	Quantity       int              `json:"quantity" binding:"required"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	Discount       string           `json:"discount"`
	WarrantyMonths int              `json:"warranty_months"`
	Components     []struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Quantity  int       `json:"quantity" binding:"required"`
	} `json:"components"`
}

type saleRequest struct {
	CustomerID      *uuid.UUID        `json:"customer_id"`
	SaleType        enum.SaleType     `json:"sale_type"`
	Lines           []saleLineRequest `json:"lines" binding:"required"`
	OverallDiscount string            `json:"overall_discount"`
	Delivery        struct {
		CourierID    *uuid.UUID      `json:"courier_id"`
		WeightKg     decimal.Decimal `json:"weight_kg"`
		ManualCharge decimal.Decimal `json:"manual_charge"`
		FreeShipping bool            `json:"free_shipping"`
	} `json:"delivery"`
	CreditToApply decimal.Decimal          `json:"credit_to_apply"`
	SettleBalance bool                     `json:"settle_balance"`
	Payments      []settlement.PaymentLine `json:"payments"`
}

func (r *saleRequest) toInput() *service.SaleInput {
	input := &service.SaleInput{
		CustomerID:      r.CustomerID,
		SaleType:        r.SaleType,
		OverallDiscount: r.OverallDiscount,
		Delivery: service.DeliveryInput{
			CourierID:    r.Delivery.CourierID,
			WeightKg:     r.Delivery.WeightKg,
			ManualCharge: r.Delivery.ManualCharge,
			FreeShipping: r.Delivery.FreeShipping,
		},
		CreditToApply: r.CreditToApply,
		SettleBalance: r.SettleBalance,
		Payments:      r.Payments,
	}
	for _, line := range r.Lines {
		lineInput := service.SaleLineInput{
			ProductID:      line.ProductID,
			Description:    line.Description,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			Discount:       line.Discount,
			WarrantyMonths: line.WarrantyMonths,
		}
		for _, comp := range line.Components {
			lineInput.Components = append(lineInput.Components, service.ComponentInput{
				ProductID: comp.ProductID,
				Quantity:  comp.Quantity,
			})
		}
		input.Lines = append(input.Lines, lineInput)
	}
	return input
}

// Quote handles quoting a draft sale
func (h *SaleHandler) Quote(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	quote, err := h.saleService.QuoteSale(c.Request.Context(), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale quoted successfully", quote)
}

// Commit handles committing a sale
func (h *SaleHandler) Commit(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.saleService.CommitSale(c.Request.Context(), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale committed successfully", invoice)
}

// Get handles getting a single invoice
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.saleService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// List handles listing invoices
func (h *SaleHandler) List(c *gin.Context) {
	params := &repository.InvoiceFilterParams{
		Pagination: paginationFromQuery(c),
		Search:     c.Query("search"),
		CustomerID: optionalUUIDQuery(c, "customer_id"),
	}

	if raw := c.Query("status"); raw != "" {
		var status enum.InvoiceStatus
		if err := status.UnmarshalJSON([]byte(`"` + raw + `"`)); err == nil {
			params.Status = &status
		}
	}
	if raw := c.Query("start_date"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			params.StartDate = &t
		}
	}
	if raw := c.Query("end_date"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			params.EndDate = &t
		}
	}

	invoices, total, err := h.saleService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(invoices,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// ListOverdue handles listing overdue invoices
func (h *SaleHandler) ListOverdue(c *gin.Context) {
	params := paginationFromQuery(c)

	invoices, total, err := h.saleService.ListOverdueInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(invoices,
		pagination.NewPagination(params.Page, params.PerPage, total))
	response.SuccessWithPagination(c, 200, "Overdue invoices retrieved successfully", result)
}

// PayDue handles recording a payment against an outstanding invoice
func (h *SaleHandler) PayDue(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req struct {
		Method       string          `json:"method" binding:"required"`
		Amount       decimal.Decimal `json:"amount" binding:"required"`
		ChequeNumber string          `json:"cheque_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.saleService.PayDue(c.Request.Context(), id, settlement.PaymentLine{
		Method:       req.Method,
		Amount:       req.Amount,
		ChequeNumber: req.ChequeNumber,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment recorded successfully", invoice)
}
