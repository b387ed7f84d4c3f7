package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bidding-marketplace/internal/auth"
	bidding "bidding-marketplace/internal/biddingService"
	collection "bidding-marketplace/internal/collectionService"
	"bidding-marketplace/internal/config"
	"bidding-marketplace/internal/database"
	"bidding-marketplace/internal/events"
	identity "bidding-marketplace/internal/identityService"
	"bidding-marketplace/internal/obs"
	"bidding-marketplace/internal/repository"
	"bidding-marketplace/internal/seed"
	"bidding-marketplace/internal/server"
	"bidding-marketplace/utils"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (overrides CONFIG_FILE)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		utils.Fatal("invalid configuration", map[string]any{"error": err.Error()})
	}
	utils.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, cfg.ServiceName, version, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		utils.Fatal("failed to initialise tracing", map[string]any{"error": err.Error()})
	}

	repo, err := openStore(cfg)
	if err != nil {
		utils.Fatal("failed to open store", map[string]any{"driver": cfg.DatabaseDriver, "error": err.Error()})
	}

	publisher := openPublisher(cfg)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	identitySvc := identity.NewIdentityService(repo, tokens, cfg.BcryptCost)
	collectionSvc := collection.NewCollectionService(repo, publisher)
	biddingSvc := bidding.NewBiddingService(repo, publisher)

	if cfg.SeedDemoData {
		seeder := seed.NewSeeder(repo, identitySvc, collectionSvc, biddingSvc)
		if _, err := seeder.Run(ctx, seed.DefaultOptions()); err != nil {
			utils.Error("failed to seed demo data", map[string]any{"error": err.Error()})
		}
	}

	router := server.SetupRouter(server.Services{
		Identity:    identitySvc,
		Collections: collectionSvc,
		Bidding:     biddingSvc,
	}, server.RateLimit{
		Enabled: cfg.AuthRateLimitEnabled,
		RPS:     cfg.AuthRateLimitRPS,
		Burst:   cfg.AuthRateLimitBurst,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Info("starting marketplace server", map[string]any{
			"addr":   srv.Addr,
			"driver": cfg.DatabaseDriver,
			"env":    cfg.Env,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("server shutdown failed", map[string]any{"error": err.Error()})
	}
	if err := publisher.Close(); err != nil {
		utils.Warn("event publisher close failed", map[string]any{"error": err.Error()})
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		utils.Warn("tracer shutdown failed", map[string]any{"error": err.Error()})
	}
}

// openStore returns the in-memory store or a migrated SQL store, per DATABASE_DRIVER
func openStore(cfg config.Config) (repository.MarketDB, error) {
	if cfg.DatabaseDriver == config.DriverMemory {
		return repository.NewMemoryRepo(), nil
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	repo := repository.NewGormRepo(db)
	if err := repo.Migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// openPublisher connects to RabbitMQ when AMQP_URL is set. A broker that cannot
// be reached degrades to the log publisher instead of failing startup.
func openPublisher(cfg config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.NewLogPublisher()
	}

	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		utils.Warn("amqp unavailable, logging events instead", map[string]any{"error": err.Error()})
		return events.NewLogPublisher()
	}
	return publisher
}
