package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/loading"
	"github.com/angelmondragon/storefront/internal/mockpay"
	"github.com/angelmondragon/storefront/internal/orderstatus"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/backend"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/env"
	"github.com/angelmondragon/storefront/pkg/instance"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "storefront stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var (
		redisPinger      controllers.Pinger
		idempotencyStore redis.IdempotencyStore
		vault            routes.SessionVault
		ledger           orderstatus.Ledger
	)
	if redis.Configured(cfg.Redis) {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisVault, err := session.NewRedisVault(redisClient, cfg.Session)
		if err != nil {
			return err
		}
		redisPinger, idempotencyStore, vault, ledger = redisClient, redisClient, redisVault, redisClient
	} else {
		logg.Warn(ctx, "redis not configured; sessions and payment callbacks are kept in memory")
		vault = session.NewMemoryVault(cfg.Session.AuthTTL)
		ledger = orderstatus.NewMemoryLedger()
	}

	client, err := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithMetrics(metrics.NewBackendMetrics(reg)),
		backend.WithLogger(logg),
	)
	if err != nil {
		return err
	}

	gate := loading.NewGate()
	metrics.RegisterGauge(reg, "storefront_cart_mutations_in_flight", "Cart mutations currently awaiting the backend.", func() float64 {
		return float64(gate.InFlight())
	})
	carts := cart.NewRegistry(client, gate, logg, cfg.Cart)
	metrics.RegisterGauge(reg, "storefront_live_carts", "Cart stores held in memory.", func() float64 {
		return float64(carts.Len())
	})

	checkoutService, err := checkout.NewService(client, logg, cfg.Checkout, cfg.App.PublicURL)
	if err != nil {
		return err
	}

	var gateway controllers.PaymentGateway
	if cfg.Checkout.MockGatewayEnabled {
		sim, err := mockpay.NewSimulator(cfg.MockPay)
		if err != nil {
			return err
		}
		mockGateway, err := mockpay.NewGateway(sim, client, metrics.NewPaymentMetrics(reg), logg)
		if err != nil {
			return err
		}
		gateway = mockGateway
		logg.Warn(ctx, "mock payment gateway enabled")
	}

	statusPages, err := orderstatus.NewCatalog(cfg.Checkout.SupportEmail)
	if err != nil {
		return err
	}
	callbacks := orderstatus.NewCallbacks(ledger, 0, logg)

	addr := ":" + env.Get("PORT", cfg.App.Port)
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, redisPinger, idempotencyStore, reg,
			session.NewResolver(cfg.Session), vault, carts, client,
			checkoutService, gateway, callbacks, statusPages),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return carts.Run(gctx)
	})
	g.Go(func() error {
		logg.Info(logCtx, "starting storefront server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		logg.Info(logCtx, "shutting down storefront server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
