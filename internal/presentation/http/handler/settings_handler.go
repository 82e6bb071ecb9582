package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ledgerpos/settlement-api/internal/application/service"
	"github.com/ledgerpos/settlement-api/internal/presentation/http/dto/response"
	"github.com/shopspring/decimal"
)

// SettingsHandler handles settlement configuration HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// ListPaymentMethods handles listing configured payment methods
func (h *SettingsHandler) ListPaymentMethods(c *gin.Context) {
	methods, err := h.settingsService.ListPaymentMethods(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment methods retrieved successfully", methods)
}

// CreatePaymentMethod handles adding a payment method
func (h *SettingsHandler) CreatePaymentMethod(c *gin.Context) {
	var req struct {
		Name              string `json:"name" binding:"required"`
		RequiresReference bool   `json:"requires_reference"`
		Active            *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	method, err := h.settingsService.CreatePaymentMethod(c.Request.Context(), &service.PaymentMethodInput{
		Name:              req.Name,
		RequiresReference: req.RequiresReference,
		Active:            active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment method created successfully", method)
}

// UpdatePaymentMethod handles updating a payment method's flags
func (h *SettingsHandler) UpdatePaymentMethod(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid payment method ID")
		return
	}

	var req struct {
		RequiresReference bool `json:"requires_reference"`
		Active            bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	method, err := h.settingsService.UpdatePaymentMethod(c.Request.Context(), id, req.RequiresReference, req.Active)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment method updated successfully", method)
}

// DeletePaymentMethod handles removing a payment method
func (h *SettingsHandler) DeletePaymentMethod(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid payment method ID")
		return
	}

	if err := h.settingsService.DeletePaymentMethod(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListCouriers handles listing couriers
func (h *SettingsHandler) ListCouriers(c *gin.Context) {
	couriers, err := h.settingsService.ListCouriers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Couriers retrieved successfully", couriers)
}

type courierRequest struct {
	Name              string          `json:"name" binding:"required"`
	FirstKgPrice      decimal.Decimal `json:"first_kg_price"`
	AdditionalKgPrice decimal.Decimal `json:"additional_kg_price"`
}

// CreateCourier handles adding a courier pricing table
func (h *SettingsHandler) CreateCourier(c *gin.Context) {
	var req courierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	courier, err := h.settingsService.CreateCourier(c.Request.Context(), &service.CourierInput{
		Name:              req.Name,
		FirstKgPrice:      req.FirstKgPrice,
		AdditionalKgPrice: req.AdditionalKgPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Courier created successfully", courier)
}

// UpdateCourier handles updating a courier pricing table
func (h *SettingsHandler) UpdateCourier(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid courier ID")
		return
	}

	var req courierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	courier, err := h.settingsService.UpdateCourier(c.Request.Context(), id, &service.CourierInput{
		Name:              req.Name,
		FirstKgPrice:      req.FirstKgPrice,
		AdditionalKgPrice: req.AdditionalKgPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Courier updated successfully", courier)
}

// DeleteCourier handles removing a courier
func (h *SettingsHandler) DeleteCourier(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.BadRequest(c, "Invalid courier ID")
		return
	}

	if err := h.settingsService.DeleteCourier(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
