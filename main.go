package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/shefa-net/steward-engine/pkg/config"
	"github.com/shefa-net/steward-engine/pkg/database"
	"github.com/shefa-net/steward-engine/pkg/logging"
	"github.com/shefa-net/steward-engine/pkg/repositories"
	"github.com/shefa-net/steward-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.Env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("limits_path", cfg.LimitsPath))

	ctx := context.Background()

	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open database for migrations", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, "migrations", logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		// Connection errors can echo credentials back.
		logger.Fatal("Failed to connect to database",
			zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis",
			zap.String("error", logging.SanitizeError(err)))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	limits, err := config.LoadLimits(cfg.LimitsPath)
	if err != nil {
		logger.Fatal("Failed to load constitutional limits", zap.Error(err))
	}

	resourceRepo := repositories.NewResourceRepository(db)
	usageRepo := repositories.NewUsageRepository(db)
	ledgerRepo := repositories.NewLedgerRepository(db)
	assetRepo := repositories.NewFinancialAssetRepository(db)

	_ = services.NewResourceService(resourceRepo, usageRepo, ledgerRepo,
		cfg.Engine.PersistTimeout(), cfg.Engine.RecentUsageLimit, logger)
	_ = services.NewComplianceService(resourceRepo, limits, logger)
	_ = services.NewFinancialService(assetRepo, cfg.DignityFloor, logger)
	_ = services.NewDashboardService(resourceRepo, redisClient,
		cfg.Engine.DashboardCacheTTL(), logger)

	logger.Info("steward-engine ready",
		zap.Int("configured_limit_categories", len(limits.Categories())))

	// Transport layers mount the services; the engine itself only waits.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("steward-engine shutting down")
}
