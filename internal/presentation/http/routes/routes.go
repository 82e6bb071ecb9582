package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledgerpos/settlement-api/internal/config"
	domainRepo "github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/ledgerpos/settlement-api/internal/presentation/http/handler"
	"github.com/ledgerpos/settlement-api/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Sale     *handler.SaleHandler
	Return   *handler.ReturnHandler
	Repair   *handler.RepairHandler
	Customer *handler.CustomerHandler
	Product  *handler.ProductHandler
	Ledger   *handler.LedgerHandler
	Settings *handler.SettingsHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		v1.Use(rateLimiter.Middleware())

		idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		})

		registerSaleRoutes(v1, h, idempotency)
		registerReturnRoutes(v1, h, idempotency)
		registerRepairRoutes(v1, h, idempotency)
		registerCustomerRoutes(v1, h)
		registerProductRoutes(v1, h)
		registerLedgerRoutes(v1, h, idempotency)
		registerSettingsRoutes(v1, h)
	}

	return router
}

func registerSaleRoutes(v1 *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	sales := v1.Group("/sales")
	{
		sales.POST("/quote", h.Sale.Quote)
		// Commits are replay-safe behind an idempotency key
		sales.POST("", idempotency, h.Sale.Commit)
		sales.GET("", h.Sale.List)
		sales.GET("/overdue", h.Sale.ListOverdue)
		sales.GET("/:id", h.Sale.Get)
		sales.POST("/:id/pay", idempotency, h.Sale.PayDue)
	}
}

func registerReturnRoutes(v1 *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	returns := v1.Group("/returns")
	{
		returns.POST("/quote", h.Return.Quote)
		returns.POST("", idempotency, h.Return.Commit)
		returns.GET("", h.Return.List)
		returns.GET("/:id", h.Return.Get)
		returns.DELETE("/:id", h.Return.Delete)
	}
}

func registerRepairRoutes(v1 *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	repairs := v1.Group("/repairs")
	{
		repairs.GET("", h.Repair.List)
		repairs.POST("", h.Repair.Create)
		repairs.POST("/from-damage-log", h.Repair.CreateFromDamageLog)
		repairs.GET("/:id", h.Repair.Get)
		repairs.POST("/:id/start", h.Repair.Start)
		repairs.POST("/:id/parts", h.Repair.AddPart)
		repairs.PUT("/:id/fee", h.Repair.SetFee)
		repairs.POST("/:id/void-warranty", h.Repair.VoidWarranty)
		repairs.POST("/:id/complete", idempotency, h.Repair.Complete)
		repairs.POST("/:id/unrepairable", h.Repair.MarkUnrepairable)
		repairs.POST("/:id/replace", idempotency, h.Repair.CompleteWithReplacement)
		repairs.POST("/:id/credit", idempotency, h.Repair.CompleteWithCredit)
		repairs.POST("/:id/repaired", h.Repair.MarkRepaired)
	}
}

func registerCustomerRoutes(v1 *gin.RouterGroup, h *Handlers) {
	customers := v1.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
		customers.GET("/:id/transactions", h.Customer.Transactions)
		customers.GET("/:id/balance-check", h.Customer.CheckBalance)
	}
}

func registerProductRoutes(v1 *gin.RouterGroup, h *Handlers) {
	products := v1.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/low-stock", h.Product.LowStock)
		products.GET("/damage-logs", h.Product.ListDamageLogs)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
		products.POST("/:id/restock", h.Product.Restock)
		products.POST("/:id/damage", h.Product.LogDamage)
	}
}

func registerLedgerRoutes(v1 *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	transactions := v1.Group("/transactions")
	{
		transactions.GET("", h.Ledger.List)
		transactions.POST("/adjustments", idempotency, h.Ledger.PostAdjustment)
		transactions.GET("/:id", h.Ledger.Get)
	}
}

func registerSettingsRoutes(v1 *gin.RouterGroup, h *Handlers) {
	settings := v1.Group("/settings")
	{
		settings.GET("/payment-methods", h.Settings.ListPaymentMethods)
		settings.POST("/payment-methods", h.Settings.CreatePaymentMethod)
		settings.PUT("/payment-methods/:id", h.Settings.UpdatePaymentMethod)
		settings.DELETE("/payment-methods/:id", h.Settings.DeletePaymentMethod)
		settings.GET("/couriers", h.Settings.ListCouriers)
		settings.POST("/couriers", h.Settings.CreateCourier)
		settings.PUT("/couriers/:id", h.Settings.UpdateCourier)
		settings.DELETE("/couriers/:id", h.Settings.DeleteCourier)
	}
}
