// Command api runs the AgroConnect marketplace HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/agroconnect/marketplace-backend/internal/api/rest"
	"github.com/agroconnect/marketplace-backend/internal/infrastructure/auth"
	"github.com/agroconnect/marketplace-backend/internal/infrastructure/cache"
	"github.com/agroconnect/marketplace-backend/internal/infrastructure/config"
	"github.com/agroconnect/marketplace-backend/internal/infrastructure/database"
	"github.com/agroconnect/marketplace-backend/internal/infrastructure/repository"
	"github.com/agroconnect/marketplace-backend/internal/infrastructure/telemetry"
	"github.com/agroconnect/marketplace-backend/internal/metrics"
	"github.com/agroconnect/marketplace-backend/internal/service/account"
	"github.com/agroconnect/marketplace-backend/internal/service/activityfeed"
	"github.com/agroconnect/marketplace-backend/internal/service/listing"
	"github.com/agroconnect/marketplace-backend/internal/service/negotiation"
	"github.com/agroconnect/marketplace-backend/internal/service/reputation"
	"github.com/agroconnect/marketplace-backend/internal/service/verification"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := telemetry.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.Setup(ctx, cfg.Telemetry.Enabled, cfg.Telemetry.ServiceName,
		cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.SampleRate)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer provider.Shutdown(context.Background())

	zapLogger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("zap: %w", err)
	}
	defer zapLogger.Sync()

	db, err := database.Connect(ctx, database.Options{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, zapLogger)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	var listingCache listing.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.New(ctx, cfg.Redis.URL, cfg.Redis.PoolSize, logger)
		if err != nil {
			// The cache is an optimization, not a dependency.
			logger.Warn("redis unavailable, running without cache", slog.String("error", err.Error()))
		} else {
			defer redisCache.Close()
			listingCache = redisCache
		}
	}

	// repositories
	users := repository.NewUserRepository(db)
	announcements := repository.NewAnnouncementRepository(db)
	offers := repository.NewOfferRepository(db)
	reviews := repository.NewReviewRepository(db)
	documents := repository.NewDocumentRepository(db)
	activities := repository.NewActivityRepository(db)
	txManager := repository.NewTxManager(db)

	// auth
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	// services
	feed := activityfeed.NewService(activities, logger)
	defer feed.Close()

	listings := listing.NewService(announcements, listingCache, feed, logger)
	defer listings.Close()

	services := rest.Services{
		Accounts:     account.NewService(users, hasher, tokens, logger),
		Listings:     listings,
		Negotiations: negotiation.NewService(offers, announcements, users, txManager, feed, logger),
		Reputation:   reputation.NewService(reviews, offers, users, txManager, feed, logger),
		Verification: verification.NewService(documents, users, txManager, feed, logger),
		Activities:   feed,
	}

	registry, err := metrics.NewRegistry()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	var limiter *cache.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = cache.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	go serveMetrics(ctx, logger)

	server := rest.NewServer(services, tokens, logger, rest.Options{
		Addr:         cfg.Server.Address(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Pagination:   cfg.Pagination,
		Metrics:      registry,
		Limiter:      limiter,
		DB:           db,
	})

	logger.Info("starting agroconnect api",
		slog.String("environment", cfg.Environment),
		slog.String("addr", cfg.Server.Address()),
	)
	return server.Start(ctx, cfg.Server.ShutdownTimeout)
}
