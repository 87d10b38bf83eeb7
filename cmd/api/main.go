package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/confreg/registration-api/internal/application/service"
	"github.com/confreg/registration-api/internal/config"
	"github.com/confreg/registration-api/internal/infrastructure/database"
	"github.com/confreg/registration-api/internal/infrastructure/repository"
	"github.com/confreg/registration-api/internal/presentation/http/handler"
	"github.com/confreg/registration-api/internal/presentation/http/routes"
	"github.com/confreg/registration-api/pkg/email"
	"github.com/confreg/registration-api/pkg/oauth"
	"github.com/confreg/registration-api/pkg/printer"
	"github.com/confreg/registration-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	txManager := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	passwordResetRepo := repository.NewPasswordResetTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	ceilingRepo := repository.NewCeilingRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)
	conditionRepo := repository.NewConditionRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	cartRepo := repository.NewCartRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	creditNoteRepo := repository.NewCreditNoteRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	reportRepo := repository.NewReportRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize email service
	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
		FrontendURL:  cfg.Email.FrontendURL,
	})

	// Initialize Google OAuth service
	googleOAuthService := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
	})

	// Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, passwordResetRepo, jwtManager, emailService, googleOAuthService)
	userService := service.NewUserService(userRepo, roleRepo, permissionRepo)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, ceilingRepo)
	voucherService := service.NewVoucherService(voucherRepo)
	conditionService := service.NewConditionService(conditionRepo)
	discountService := service.NewDiscountService(discountRepo, productRepo, cartRepo, userRepo)
	availabilityService := service.NewAvailabilityService(productRepo, categoryRepo, ceilingRepo, conditionRepo, cartRepo, userRepo)
	cartService := service.NewCartService(txManager, cartRepo, productRepo, voucherRepo, availabilityService, discountService, cfg.Registration.VoucherReservation)
	invoiceService := service.NewInvoiceService(txManager, invoiceRepo, paymentRepo, creditNoteRepo, cartRepo, userRepo, profileRepo, cartService, discountService, emailService, cfg.Registration.InvoiceDue)
	creditNoteService := service.NewCreditNoteService(txManager, creditNoteRepo)
	profileService := service.NewProfileService(profileRepo, userRepo)
	reportService := service.NewReportService(reportRepo, invoiceRepo)

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
	)
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
	}
	printerService := service.NewPrinterService(thermalPrinter, invoiceRepo, profileRepo, cfg.Registration.ConferenceName, cfg.Printer.Type)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Category:   handler.NewCategoryHandler(catalogService, availabilityService),
		Product:    handler.NewProductHandler(catalogService, availabilityService),
		Ceiling:    handler.NewCeilingHandler(catalogService),
		Voucher:    handler.NewVoucherHandler(voucherService),
		Condition:  handler.NewConditionHandler(conditionService),
		Discount:   handler.NewDiscountHandler(discountService),
		Cart:       handler.NewCartHandler(cartService),
		Invoice:    handler.NewInvoiceHandler(invoiceService),
		CreditNote: handler.NewCreditNoteHandler(creditNoteService),
		Profile:    handler.NewProfileHandler(profileService),
		Report:     handler.NewReportHandler(reportService),
		User:       handler.NewUserHandler(userService),
		Printer:    handler.NewPrinterHandler(printerService, profileService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
