package main

import (
	"log"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/ameliang/tabsplit/docs"
	"github.com/ameliang/tabsplit/internal/assignment"
	"github.com/ameliang/tabsplit/internal/config"
	"github.com/ameliang/tabsplit/internal/database"
	"github.com/ameliang/tabsplit/internal/history"
	"github.com/ameliang/tabsplit/internal/notification"
	"github.com/ameliang/tabsplit/internal/receipt"
	"github.com/ameliang/tabsplit/pkg/logging"
	"github.com/ameliang/tabsplit/pkg/metrics"
	mw "github.com/ameliang/tabsplit/pkg/middleware"
)

// @title TabSplit API
// @version 1.0
// @description Receipt splitting API: shared receipts, per-item contribution
// @description claims, and proportional tax and tip breakdowns.
// @BasePath /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logging.Setup()

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.CreateSchema(db); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	slog.Info("connected to database")

	// Breakdown history lives in a local bbolt file, not Postgres
	historyStore, err := history.Open(cfg.HistoryPath)
	if err != nil {
		log.Fatalf("Failed to open history store: %v", err)
	}
	defer historyStore.Close()

	// Receipt feature
	receiptRepo := receipt.NewRepository(db)
	receiptService := receipt.NewService(receiptRepo)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Assignment feature (receipt service supplies the ledger)
	assignmentRepo := assignment.NewRepository(db)
	assignmentService := assignment.NewService(assignmentRepo, receiptService, historyStore, notificationService)
	assignmentHandler := assignment.NewHandler(assignmentService)

	// Receipt handler checks completeness through the assignment service
	receiptHandler := receipt.NewHandler(receiptService, assignmentService)

	// History feature
	historyHandler := history.NewHandler(historyStore)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(metrics.Middleware)
	r.Use(mw.ContributorMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", metrics.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Mount feature routers
		r.Mount("/receipts", receiptHandler.Routes())
		r.Mount("/assignments", assignmentHandler.Routes())
		r.Mount("/history", historyHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	slog.Info("server starting", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
