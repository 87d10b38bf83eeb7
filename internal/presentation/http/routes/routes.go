package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/confreg/registration-api/internal/config"
	domainRepo "github.com/confreg/registration-api/internal/domain/repository"
	"github.com/confreg/registration-api/internal/presentation/http/handler"
	"github.com/confreg/registration-api/internal/presentation/http/middleware"
	"github.com/confreg/registration-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth       *handler.AuthHandler
	Category   *handler.CategoryHandler
	Product    *handler.ProductHandler
	Ceiling    *handler.CeilingHandler
	Voucher    *handler.VoucherHandler
	Condition  *handler.ConditionHandler
	Discount   *handler.DiscountHandler
	Cart       *handler.CartHandler
	Invoice    *handler.InvoiceHandler
	CreditNote *handler.CreditNoteHandler
	Profile    *handler.ProfileHandler
	Report     *handler.ReportHandler
	User       *handler.UserHandler
	Printer    *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
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
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-user rate limiter
		rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/reset-password", h.Auth.ResetPassword)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Account routes
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/account", h.Auth.GetAccount)
	protected.PUT("/account", h.Auth.UpdateAccount)
	protected.PUT("/account/password", h.Auth.ChangePassword)

	// Attendee profile
	protected.GET("/profile", h.Profile.Get)
	protected.PUT("/profile", h.Profile.Update)

	// Catalog (attendee-visible)
	registerCatalogRoutes(protected, h)

	// Cart and checkout
	registerCartRoutes(protected, h, deps)

	// Invoices and credit notes
	registerInvoiceRoutes(protected, h, deps)

	// Inventory management (staff)
	registerInventoryRoutes(protected, h)

	// Vouchers (staff)
	registerVoucherRoutes(protected, h)

	// Conditions (staff)
	registerConditionRoutes(protected, h)

	// Discounts (staff)
	registerDiscountRoutes(protected, h)

	// Reports (staff)
	registerReportRoutes(protected, h)

	// Registration desk (staff)
	registerDeskRoutes(protected, h)

	// Users (Admin)
	registerUserRoutes(protected, h)

	// Roles (Admin)
	registerRoleRoutes(protected, h)

	// Permissions (Admin)
	registerPermissionRoutes(protected, h)
}

func registerCatalogRoutes(protected *gin.RouterGroup, h *Handlers) {
	categories := protected.Group("/categories")
	{
		categories.GET("", h.Category.List)
		categories.GET("/:id", h.Category.Get)
		categories.GET("/:id/products", h.Product.Available)
	}

	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.Get)
	}
}

func registerCartRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	cart := protected.Group("/cart")
	{
		cart.GET("", h.Cart.Get)
		cart.PUT("/items", h.Cart.SetQuantities)
		cart.POST("/items", h.Cart.AddItem)
		cart.POST("/vouchers", h.Cart.ApplyVoucher)
		cart.DELETE("/vouchers/:voucherId", h.Cart.RemoveVoucher)
		cart.GET("/validate", h.Cart.Validate)
		cart.POST("/fix", h.Cart.FixErrors)
		// Checkout uses idempotency middleware to prevent duplicate invoices
		cart.POST("/checkout", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Invoice.Checkout)
	}
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.Invoice.ListMine)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.POST("/:id/credit-notes", h.Invoice.ApplyCreditNote)

		// Manual payments and refunds are staff operations
		invoices.POST("/:id/payments", middleware.RequirePermission("manage-invoices"),
			middleware.Idempotency(middleware.IdempotencyConfig{
				Repo: deps.IdempotencyRepo,
			}), h.Invoice.RecordPayment)
		invoices.POST("/:id/refund", middleware.RequirePermission("manage-invoices"), h.Invoice.Refund)
		invoices.GET("/overdue", middleware.RequirePermission("manage-invoices"), h.Invoice.ListOverdue)
	}

	creditNotes := protected.Group("/credit-notes")
	{
		creditNotes.GET("", h.CreditNote.ListMine)
		creditNotes.GET("/unclaimed", middleware.RequirePermission("manage-credit-notes"), h.CreditNote.ListUnclaimed)
		creditNotes.GET("/:id", h.CreditNote.Get)
		creditNotes.POST("/:id/cash-out", middleware.RequirePermission("manage-credit-notes"), h.CreditNote.CashOut)
	}
}

func registerInventoryRoutes(protected *gin.RouterGroup, h *Handlers) {
	inventory := protected.Group("/inventory")
	inventory.Use(middleware.RequirePermission("manage-inventory"))
	{
		inventory.GET("/categories", h.Category.ListAll)
		inventory.POST("/categories", h.Category.Create)
		inventory.PUT("/categories/:id", h.Category.Update)
		inventory.DELETE("/categories/:id", h.Category.Delete)

		inventory.POST("/products", h.Product.Create)
		inventory.PUT("/products/:id", h.Product.Update)
		inventory.DELETE("/products/:id", h.Product.Delete)

		inventory.GET("/ceilings", h.Ceiling.List)
		inventory.POST("/ceilings", h.Ceiling.Create)
		inventory.GET("/ceilings/:id", h.Ceiling.Get)
		inventory.PUT("/ceilings/:id", h.Ceiling.Update)
		inventory.DELETE("/ceilings/:id", h.Ceiling.Delete)
	}
}

func registerVoucherRoutes(protected *gin.RouterGroup, h *Handlers) {
	vouchers := protected.Group("/vouchers")
	vouchers.Use(middleware.RequirePermission("manage-vouchers"))
	{
		vouchers.GET("", h.Voucher.List)
		vouchers.POST("", h.Voucher.Create)
		vouchers.GET("/:id", h.Voucher.Get)
		vouchers.PUT("/:id", h.Voucher.Update)
		vouchers.DELETE("/:id", h.Voucher.Delete)
	}
}

func registerConditionRoutes(protected *gin.RouterGroup, h *Handlers) {
	conditions := protected.Group("/conditions")
	conditions.Use(middleware.RequirePermission("manage-conditions"))
	{
		conditions.GET("", h.Condition.List)
		conditions.POST("", h.Condition.Create)
		conditions.GET("/:id", h.Condition.Get)
		conditions.PUT("/:id", h.Condition.Update)
		conditions.DELETE("/:id", h.Condition.Delete)
	}
}

func registerDiscountRoutes(protected *gin.RouterGroup, h *Handlers) {
	discounts := protected.Group("/discounts")
	discounts.Use(middleware.RequirePermission("manage-discounts"))
	{
		discounts.GET("", h.Discount.List)
		discounts.POST("", h.Discount.Create)
		discounts.GET("/:id", h.Discount.Get)
		discounts.PUT("/:id", h.Discount.Update)
		discounts.DELETE("/:id", h.Discount.Delete)
	}
}

func registerReportRoutes(protected *gin.RouterGroup, h *Handlers) {
	reports := protected.Group("/reports")
	reports.Use(middleware.RequirePermission("view-reports"))
	{
		reports.GET("/overview", h.Report.Overview)
		reports.GET("/products", h.Report.ProductRegistrations)
		reports.GET("/ceilings", h.Report.CeilingUtilisation)
		reports.GET("/vouchers", h.Report.VoucherUsage)
	}
}

func registerDeskRoutes(protected *gin.RouterGroup, h *Handlers) {
	desk := protected.Group("/desk")
	desk.Use(middleware.RequirePermission("operate-desk"))
	{
		desk.GET("/attendees/:code", h.Profile.GetByAccessCode)
		desk.GET("/printer/status", h.Printer.Status)
		desk.POST("/printer/test", h.Printer.TestPrint)
		desk.POST("/printer/receipt", h.Printer.PrintReceipt)
		desk.POST("/printer/badge", h.Printer.PrintBadge)
	}
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	users := protected.Group("/users")
	users.Use(middleware.RequirePermission("manage-users"))
	{
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id/roles", h.User.UpdateRoles)
		users.DELETE("/:id", h.User.Delete)
	}
}

func registerRoleRoutes(protected *gin.RouterGroup, h *Handlers) {
	roles := protected.Group("/roles")
	roles.Use(middleware.RequirePermission("manage-users"))
	{
		roles.GET("", h.User.ListRoles)
	}
}

func registerPermissionRoutes(protected *gin.RouterGroup, h *Handlers) {
	permissions := protected.Group("/permissions")
	permissions.Use(middleware.RequirePermission("manage-users"))
	{
		permissions.GET("", h.User.ListPermissions)
	}
}
