package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bidding "vehicle-auction/internal/biddingService"
	"vehicle-auction/internal/clock"
	"vehicle-auction/internal/config"
	"vehicle-auction/internal/engagement"
	"vehicle-auction/internal/events"
	"vehicle-auction/internal/identity"
	"vehicle-auction/internal/lifecycle"
	model "vehicle-auction/internal/models"
	"vehicle-auction/internal/moderation"
	"vehicle-auction/internal/notification"
	"vehicle-auction/internal/repository"
	"vehicle-auction/internal/server"
	"vehicle-auction/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	if err := utils.ConfigureLogger(cfg.LogLevel); err != nil {
		utils.Fatal("invalid log level", map[string]any{"level": cfg.LogLevel, "error": err.Error()})
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.SystemClock{}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		utils.Fatal("failed to open storage", map[string]any{"driver": cfg.StorageDriver, "error": err.Error()})
	}
	defer closeStore()

	if cfg.SeedSampleData {
		if err := prepopulateListings(ctx, store, clk); err != nil {
			utils.Warn("failed to seed sample listings", map[string]any{"error": err.Error()})
		}
	}

	bus, closeBus, err := openBus(ctx, cfg)
	if err != nil {
		utils.Fatal("failed to connect to redis", map[string]any{"addr": cfg.RedisAddr, "error": err.Error()})
	}
	defer closeBus()

	admins := identity.NewStaticDirectory(cfg.AdminUserIDs...)
	fanout := notification.NewFanout(store, store, clk, 0)

	biddingSvc := bidding.NewBiddingService(store,
		bidding.WithClock(clk),
		bidding.WithAdminDirectory(admins),
		bidding.WithPublisher(bus),
		bidding.WithNotifier(fanout),
	)

	sweeper := lifecycle.NewSweeper(store, fanout, bus, clk, lifecycle.Config{
		Interval:         cfg.SweepInterval.Duration,
		EndingSoonWindow: cfg.EndingSoonWindow.Duration,
		Workers:          cfg.SweepWorkers,
		EnforceReserve:   cfg.EnforceReserve,
	})
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		sweeper.Run(ctx)
	}()

	router := server.SetupRouter(server.Dependencies{
		Bidding:    biddingSvc,
		Engagement: engagement.NewService(store, fanout, clk),
		Moderation: moderation.NewGate(store, admins, clk),
		Events:     bus,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		utils.Info("starting auction server", map[string]any{"addr": srv.Addr, "storage": cfg.StorageDriver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			utils.Error("server stopped unexpectedly", map[string]any{"error": err.Error()})
		}
		stop()
	case <-ctx.Done():
		utils.Info("shutdown signal received", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// SSE streams are long lived; Shutdown waits for them until the deadline
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Warn("graceful shutdown incomplete", map[string]any{"error": err.Error()})
	}
	<-sweeperDone
	utils.Info("server stopped", nil)
}

func openStore(ctx context.Context, cfg config.Config) (repository.Store, func(), error) {
	if cfg.StorageDriver != config.StoragePostgres {
		return repository.NewMemoryRepo(), func() {}, nil
	}

	repo := repository.NewPostgresRepo(cfg.DatabaseURL)
	if err := repo.Ping(ctx); err != nil {
		repo.Close()
		return nil, nil, err
	}
	if err := repo.InitSchema(ctx); err != nil {
		repo.Close()
		return nil, nil, err
	}
	return repo, func() {
		if err := repo.Close(); err != nil {
			utils.Warn("error closing database", map[string]any{"error": err.Error()})
		}
	}, nil
}

func openBus(ctx context.Context, cfg config.Config) (events.Bus, func(), error) {
	if cfg.RedisAddr == "" {
		return events.NewMemoryBus(), func() {}, nil
	}

	bus := events.NewRedisBus(cfg.RedisAddr, cfg.RedisPassword)
	if err := bus.Ping(ctx); err != nil {
		bus.Close()
		return nil, nil, err
	}
	return bus, func() {
		if err := bus.Close(); err != nil {
			utils.Warn("error closing redis client", map[string]any{"error": err.Error()})
		}
	}, nil
}

// prepopulateListings adds approved sample vehicles so a fresh server has something to bid on
func prepopulateListings(ctx context.Context, store repository.ListingStore, clk clock.Clock) error {
	now := clk.Now()
	listings := []model.Listing{
		{ID: "vehicle1", Title: "1991 Mazda MX-5", Make: "Mazda", Model: "MX-5", Year: 1991, StartingBid: decimal.NewFromInt(2500), AuctionEndTime: now.Add(72 * time.Hour)},
		{ID: "vehicle2", Title: "2004 Porsche 911 Carrera", Make: "Porsche", Model: "911", Year: 2004, StartingBid: decimal.NewFromInt(18000), ReservePrice: decimal.NewNullDecimal(decimal.NewFromInt(30000)), AuctionEndTime: now.Add(48 * time.Hour)},
		{ID: "vehicle3", Title: "1997 Toyota Land Cruiser", Make: "Toyota", Model: "Land Cruiser", Year: 1997, StartingBid: decimal.NewFromInt(50), AuctionEndTime: now.Add(12 * time.Hour)},
	}

	for _, l := range listings {
		if _, err := store.GetListing(ctx, l.ID); err == nil {
			continue
		}
		l.SellerID = "seller-demo"
		l.ImageURLs = []string{}
		l.CurrentBid = decimal.Zero
		l.Status = model.StatusActive
		l.ApprovalStatus = model.ApprovalApproved
		l.Version = 1
		l.CreatedAt = now
		l.UpdatedAt = now
		if err := store.CreateListing(ctx, l); err != nil {
			return err
		}
	}
	return nil
}
