package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"causalUplift/app/echo-server/router"
	"causalUplift/business/uplift"
	"causalUplift/internal/middleware"
	"causalUplift/internal/repository/artifact"
	"causalUplift/internal/repository/chart"
	"causalUplift/internal/repository/csvfile"
	psqlRepo "causalUplift/internal/repository/postgres"
	"causalUplift/internal/repository/predictor"
	"causalUplift/internal/rest"
	"causalUplift/pkg/config"
	"causalUplift/pkg/database"
	"causalUplift/pkg/logger"
	"causalUplift/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting uplift evaluator", "version", cfg.App.Version)

	if cfg.JWT.SecretKey == "" {
		logger.Fatal("Missing JWT_SECRET")
	}

	metrics.Init()

	ctx := context.Background()

	// Init collaborators
	store, err := artifact.Open(ctx, artifact.FromConfig(cfg.Artifact, cfg.Uplift.ResultsDir))
	if err != nil {
		logger.Fatal("Failed to open artifact store", "error", err)
	}

	model, err := predictor.FromConfig(cfg.Predictor)
	if err != nil {
		logger.Fatal("Failed to init predictor", "error", err)
	}

	var reportRepo uplift.ReportRepository
	if cfg.Database.Enabled {
		db, err := database.InitPostgres(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", "error", err)
		}
		logger.Info("Database connected successfully")
		reportRepo = psqlRepo.NewUpliftReportRepository(db)
	}

	// Init service
	emitter := uplift.NewChartEmitter(chart.NewPNGRenderer(), store, cfg.Uplift.ChartKey)
	upliftService := uplift.NewUpliftService(
		csvfile.NewDatasetRepository(),
		model,
		emitter,
		reportRepo,
		uplift.ConfigFrom(cfg.Uplift),
	)

	// Init handler
	upliftHandler := rest.NewUpliftHandler(upliftService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = middleware.ErrorHandler

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	authRequired := middleware.AuthMiddleware(cfg.JWT.SecretKey)

	api := e.Group("/api/v1")
	router.SetupUpliftRoutes(api, upliftHandler, authRequired)
	router.SetupMetricsRoute(e)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
