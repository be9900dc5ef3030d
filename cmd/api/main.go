package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/docs"
	"github.com/bandera-print/backoffice-api/internal/auth"
	"github.com/bandera-print/backoffice-api/internal/config"
	"github.com/bandera-print/backoffice-api/internal/database"
	"github.com/bandera-print/backoffice-api/internal/http/handler"
	"github.com/bandera-print/backoffice-api/internal/http/middleware"
	"github.com/bandera-print/backoffice-api/internal/http/router"
	"github.com/bandera-print/backoffice-api/internal/jobs"
	"github.com/bandera-print/backoffice-api/internal/logger"
	"github.com/bandera-print/backoffice-api/internal/mailer"
	"github.com/bandera-print/backoffice-api/internal/metrics"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/service"
	"github.com/bandera-print/backoffice-api/internal/storage"
)

// @title Bandera Back Office API
// @version 1.0
// @description Back office for a flag and signage print shop: catalogue, clients, quotes, orders, providers and purchases

// @contact.name Bandera
// @contact.email soporte@bandera.com.ar

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	if host := os.Getenv("PUBLIC_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	}

	// Environment variables in development, Azure Key Vault in staging/production
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	taxRate, err := cfg.Pricing.TaxRate()
	if err != nil {
		return fmt.Errorf("invalid pricing config: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Info("Database schema migrated")
	}

	fileStorage, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	recorder := metrics.New()
	quoteMailer := mailer.New(&cfg.Mail, log)

	// Repositories
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	clientRepo := repository.NewClientRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	fileRepo := repository.NewFileRepository(db)
	userRepo := repository.NewUserRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)

	// Services
	activityService := service.NewActivityService(activityRepo, log)
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, log)
	fileService := service.NewFileService(fileRepo, productRepo, quoteRepo, orderRepo, activityService, fileStorage, service.FileServiceOptions{
		MaxBytes:      cfg.Storage.MaxUploadBytes(),
		ThumbnailSize: cfg.Storage.ThumbnailSize,
	}, log)
	categoryService := service.NewCategoryService(categoryRepo, activityService, log)
	productService := service.NewProductService(productRepo, categoryRepo, fileService, activityService, log)
	clientService := service.NewClientService(clientRepo, activityService, log)
	providerService := service.NewProviderService(providerRepo, activityService, log)
	purchaseService := service.NewPurchaseService(purchaseRepo, providerRepo, activityService, log)
	quoteService := service.NewQuoteService(db, quoteRepo, clientRepo, productRepo, numberSequenceService, activityService, quoteMailer, recorder, service.QuoteDefaults{
		TaxRate:      taxRate,
		ValidityDays: cfg.Pricing.QuoteValidityDays,
	}, log)
	orderService := service.NewOrderService(orderRepo, activityService, recorder, log)
	dashboardService := service.NewDashboardService(quoteRepo, orderRepo, productService, cfg.Inventory.LowStockThreshold, log)
	userService := service.NewUserService(userRepo, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(&cfg.Auth, userRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(cfg, log, db, authMiddleware, rateLimiter, recorder, router.Handlers{
		Category:  handler.NewCategoryHandler(categoryService, log),
		Product:   handler.NewProductHandler(productService, cfg.Inventory.LowStockThreshold, log),
		Client:    handler.NewClientHandler(clientService, quoteService, orderService, log),
		Provider:  handler.NewProviderHandler(providerService, log),
		Purchase:  handler.NewPurchaseHandler(purchaseService, log),
		Quote:     handler.NewQuoteHandler(quoteService, log),
		Order:     handler.NewOrderHandler(orderService, log),
		File:      handler.NewFileHandler(fileService, cfg.Storage.MaxUploadSizeMB, log),
		Activity:  handler.NewActivityHandler(activityService, log),
		Dashboard: handler.NewDashboardHandler(dashboardService, log),
		User:      handler.NewUserHandler(userService, log),
	})

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		timeout := cfg.Jobs.TimeoutDuration()

		overdueJob := jobs.NewOverdueOrdersJob(orderRepo, activityService, recorder, log, timeout)
		if err := scheduler.AddJob(jobs.OverdueOrdersJobName, cfg.Jobs.OverdueOrderCron, overdueJob.Run); err != nil {
			return fmt.Errorf("failed to register %s job: %w", jobs.OverdueOrdersJobName, err)
		}

		expiredJob := jobs.NewExpiredQuotesJob(quoteRepo, activityRepo, activityService, recorder, log, timeout)
		if err := scheduler.AddJob(jobs.ExpiredQuotesJobName, cfg.Jobs.ExpiredQuoteCron, expiredJob.Run); err != nil {
			return fmt.Errorf("failed to register %s job: %w", jobs.ExpiredQuotesJobName, err)
		}

		scheduler.Start()
		log.Info("Scheduler started", zap.Strings("jobs", scheduler.GetJobNames()))
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		log.Info("Server stopped gracefully")
	}

	return nil
}
