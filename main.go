package main

import (
	"database/sql"
	"log"

	"github.com/gtl92/gmail-svelkit/internal/artifact"
	"github.com/gtl92/gmail-svelkit/internal/config"
	"github.com/gtl92/gmail-svelkit/internal/gmail"
	"github.com/gtl92/gmail-svelkit/internal/handler"
	"github.com/gtl92/gmail-svelkit/internal/logger"
	"github.com/gtl92/gmail-svelkit/internal/report"
	"github.com/gtl92/gmail-svelkit/internal/repository"
	"github.com/gtl92/gmail-svelkit/internal/repository/file"
	"github.com/gtl92/gmail-svelkit/internal/repository/memory"
	"github.com/gtl92/gmail-svelkit/internal/repository/postgres"
	"github.com/gtl92/gmail-svelkit/internal/router"
	"github.com/gtl92/gmail-svelkit/internal/scheduler"
	"github.com/gtl92/gmail-svelkit/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Config validation failed:", err)
	}

	appLogger := logger.New()

	// Initialize repositories (conditionally use postgres or local backends
	// based on DATABASE_URL)
	var userRepo repository.UserRepository
	var automationRepo repository.AutomationRepository

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()

		userRepo = postgres.NewPostgresUserRepository(db)
		automationRepo = postgres.NewPostgresAutomationRepository(db)

		if err := postgres.InitializeDatabase(db); err != nil {
			log.Fatal("Failed to initialize database:", err)
		}

		appLogger.Info("Using PostgreSQL repositories")
	} else {
		userRepo = memory.NewInMemoryUserRepository()
		automationRepo = file.NewAutomationRepository(cfg.AutomationFile)

		appLogger.Info("Using in-memory user store and file-backed automation registry")
	}

	// Generation jobs are ephemeral; they always live in memory.
	jobRepo := memory.NewInMemoryJobRepository()
	reportRepo := memory.NewInMemoryReportRepository()

	store, err := artifact.NewStore(cfg.ReportsDir, appLogger)
	if err != nil {
		log.Fatal("Failed to initialize report store:", err)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, appLogger)
	mailFactory := gmail.NewFactory(cfg, appLogger)
	reportService := service.NewReportService(
		mailFactory,
		jobRepo,
		reportRepo,
		store,
		report.NewHTMLRenderer(),
		cfg.BaseURL,
		appLogger,
	)
	automationService := service.NewAutomationService(automationRepo, reportService, cfg.AuditLogFile, appLogger)

	sched := scheduler.New(automationService, jobRepo, cfg.SchedulerInterval, appLogger)
	if cfg.SchedulerEnabled {
		go sched.Start()
		defer sched.Stop()
	} else {
		appLogger.Info("Internal scheduler disabled; sweeps run only via /cron/run")
	}

	// Initialize handlers
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	authHandler := handler.NewAuthHandler(authService, cfg, e.Logger)
	reportHandler := handler.NewReportHandler(reportService, store, authHandler, e.Logger)
	automationHandler := handler.NewAutomationHandler(automationService, sched, authHandler, cfg, e.Logger)

	router.SetupRoutes(e, authHandler, reportHandler, automationHandler)

	// Start server
	appLogger.Info("Starting server on port", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil {
		appLogger.Error("Failed to start server:", err)
	}
}
