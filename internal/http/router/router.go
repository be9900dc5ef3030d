package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bandera-print/backoffice-api/internal/auth"
	"github.com/bandera-print/backoffice-api/internal/config"
	"github.com/bandera-print/backoffice-api/internal/database"
	"github.com/bandera-print/backoffice-api/internal/http/handler"
	"github.com/bandera-print/backoffice-api/internal/http/middleware"
	"github.com/bandera-print/backoffice-api/internal/metrics"

	_ "github.com/bandera-print/backoffice-api/docs" // Import generated swagger docs
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Category  *handler.CategoryHandler
	Product   *handler.ProductHandler
	Client    *handler.ClientHandler
	Provider  *handler.ProviderHandler
	Purchase  *handler.PurchaseHandler
	Quote     *handler.QuoteHandler
	Order     *handler.OrderHandler
	File      *handler.FileHandler
	Activity  *handler.ActivityHandler
	Dashboard *handler.DashboardHandler
	User      *handler.UserHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	recorder       *metrics.Recorder
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	recorder *metrics.Recorder,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		recorder:       recorder,
		handlers:       handlers,
	}
}

func writeHealth(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Metrics(rt.recorder))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database health with pool stats
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			writeHealth(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		body := map[string]interface{}{"status": "healthy", "service": "database"}
		if sqlDB, err := rt.db.DB(); err == nil {
			stats := sqlDB.Stats()
			body["stats"] = map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			}
		}
		writeHealth(w, http.StatusOK, body)
	})

	// Readiness probe
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]interface{}{"database": map[string]interface{}{"status": "healthy"}}
		status, code := "healthy", http.StatusOK
		if err := database.HealthCheck(ctx, rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		writeHealth(w, code, map[string]interface{}{"status": status, "checks": checks})
	})

	if rt.cfg.Server.EnableMetrics && rt.recorder != nil {
		r.Method(http.MethodGet, "/metrics", rt.recorder.Handler())
	}

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	h := rt.handlers

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.rateLimiter.PerClient)
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.PerUser)
		if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
			r.Use(chimw.Timeout(timeout))
		}

		r.Get("/users/me", h.User.Me)
		r.Get("/dashboard", h.Dashboard.GetSummary)
		r.Get("/activities", h.Activity.List)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Category.List)
			r.Post("/", h.Category.Create)
			r.Get("/{id}", h.Category.GetByID)
			r.Put("/{id}", h.Category.Update)
			r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", h.Category.Delete)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.List)
			r.Post("/", h.Product.Create)
			r.Get("/low-stock", h.Product.LowStock)
			r.Get("/{id}", h.Product.GetByID)
			r.Put("/{id}", h.Product.Update)
			r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", h.Product.Delete)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.Client.List)
			r.Post("/", h.Client.Create)
			r.Get("/{id}", h.Client.GetByID)
			r.Put("/{id}", h.Client.Update)
			r.Get("/{id}/quotes", h.Client.ListQuotes)
			r.Get("/{id}/orders", h.Client.ListOrders)
			r.Get("/{id}/activities", h.Client.Activities)
		})

		r.Route("/providers", func(r chi.Router) {
			r.Get("/", h.Provider.List)
			r.Post("/", h.Provider.Create)
			r.Get("/{id}", h.Provider.GetByID)
			r.Put("/{id}", h.Provider.Update)
			r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", h.Provider.Delete)
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", h.Purchase.List)
			r.Post("/", h.Purchase.Create)
			r.Get("/{id}", h.Purchase.GetByID)
			r.Put("/{id}", h.Purchase.Update)
			r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", h.Purchase.Delete)
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", h.Quote.List)
			r.Post("/", h.Quote.Create)
			r.Get("/{id}", h.Quote.GetByID)
			r.Put("/{id}", h.Quote.Update)
			r.Post("/{id}/send", h.Quote.Send)
			r.Post("/{id}/confirm", h.Quote.Confirm)
			r.Post("/{id}/reject", h.Quote.Reject)
			r.Post("/{id}/comments", h.Quote.AddComment)
			r.Post("/{id}/duplicate", h.Quote.Duplicate)
			r.Get("/{id}/activities", h.Quote.Activities)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Order.List)
			r.Get("/{id}", h.Order.GetByID)
			r.Put("/{id}", h.Order.Update)
			r.Post("/{id}/payments", h.Order.RecordPayment)
			r.Post("/{id}/complete", h.Order.Complete)
			r.Post("/{id}/cancel", h.Order.Cancel)
			r.Get("/{id}/activities", h.Order.Activities)
		})

		r.Route("/files", func(r chi.Router) {
			r.Get("/", h.File.List)
			r.Post("/", h.File.Upload)
			r.Get("/{id}", h.File.GetByID)
			r.Get("/{id}/download", h.File.Download)
			r.Get("/{id}/thumbnail", h.File.Thumbnail)
			r.Delete("/{id}", h.File.Delete)
		})
	})

	return r
}
