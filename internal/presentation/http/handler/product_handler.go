package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/application/service"
	"github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/ledgerpos/settlement-api/internal/presentation/http/dto/response"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ProductHandler handles product and stock HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles listing products
func (h *ProductHandler) List(c *gin.Context) {
	params := &repository.ProductFilterParams{
		Pagination: paginationFromQuery(c),
		Search:     c.Query("search"),
		LowStock:   c.Query("low_stock") == "true",
	}

	products, total, err := h.productService.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(products,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	var req struct {
		Name          string          `json:"name" binding:"required"`
		Code          string          `json:"code" binding:"required"`
		Quantity      int             `json:"quantity"`
		QuantityAlert int             `json:"quantity_alert"`
		Price         decimal.Decimal `json:"price"`
		WeightKg      decimal.Decimal `json:"weight_kg"`
		Unit          string          `json:"unit"`
		Notes         *string         `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		Name:          req.Name,
		Code:          req.Code,
		Quantity:      req.Quantity,
		QuantityAlert: req.QuantityAlert,
		Price:         req.Price,
		WeightKg:      req.WeightKg,
		Unit:          req.Unit,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req struct {
		Name          *string          `json:"name"`
		QuantityAlert *int             `json:"quantity_alert"`
		Price         *decimal.Decimal `json:"price"`
		WeightKg      *decimal.Decimal `json:"weight_kg"`
		Unit          *string          `json:"unit"`
		Notes         *string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, &service.UpdateProductInput{
		Name:          req.Name,
		QuantityAlert: req.QuantityAlert,
		Price:         req.Price,
		WeightKg:      req.WeightKg,
		Unit:          req.Unit,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// LowStock handles listing products at or below their alert quantity
func (h *ProductHandler) LowStock(c *gin.Context) {
	params := paginationFromQuery(c)

	products, total, err := h.productService.ListLowStock(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(products,
		pagination.NewPagination(params.Page, params.PerPage, total))
	response.SuccessWithPagination(c, 200, "Low stock products retrieved successfully", result)
}

// Restock handles adding received stock to a product
func (h *ProductHandler) Restock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.RestockProduct(c.Request.Context(), id, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product restocked successfully", product)
}

// LogDamage handles pulling damaged units out of stock
func (h *ProductHandler) LogDamage(c *gin.Context) {
	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Quantity  int       `json:"quantity" binding:"required"`
		Reason    string    `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	log, err := h.productService.LogDamage(c.Request.Context(), req.ProductID, req.Quantity, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Damage logged successfully", log)
}

// ListDamageLogs handles listing damage log entries
func (h *ProductHandler) ListDamageLogs(c *gin.Context) {
	params := paginationFromQuery(c)

	logs, total, err := h.productService.ListDamageLogs(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(logs,
		pagination.NewPagination(params.Page, params.PerPage, total))
	response.SuccessWithPagination(c, 200, "Damage logs retrieved successfully", result)
}
