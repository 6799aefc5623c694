package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/ityouth/xtn-storefront/api/controllers"
	"github.com/ityouth/xtn-storefront/api/routes"
	cartsvc "github.com/ityouth/xtn-storefront/internal/cart"
	"github.com/ityouth/xtn-storefront/internal/catalog"
	checkoutsvc "github.com/ityouth/xtn-storefront/internal/checkout"
	"github.com/ityouth/xtn-storefront/internal/lookup"
	ordersvc "github.com/ityouth/xtn-storefront/internal/orders"
	"github.com/ityouth/xtn-storefront/pkg/config"
	"github.com/ityouth/xtn-storefront/pkg/db"
	"github.com/ityouth/xtn-storefront/pkg/events"
	"github.com/ityouth/xtn-storefront/pkg/logger"
	"github.com/ityouth/xtn-storefront/pkg/metrics"
	"github.com/ityouth/xtn-storefront/pkg/orderapi"
	"github.com/ityouth/xtn-storefront/pkg/redis"
	"github.com/ityouth/xtn-storefront/pkg/vietqr"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	apiClient, err := orderapi.NewClient(cfg.OrderAPI.BaseURL, orderapi.WithTimeout(cfg.OrderAPI.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create order api client", err)
		os.Exit(1)
	}

	qrRenderer := vietqr.NewRenderer(vietqr.NewClient(
		vietqr.WithGenerateURL(cfg.VietQR.GenerateURL),
		vietqr.WithImageBaseURL(cfg.VietQR.ImageBaseURL),
		vietqr.WithTemplate(cfg.VietQR.Template),
		vietqr.WithTimeout(cfg.VietQR.Timeout),
	))

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	bus := events.NewBus()
	defer bus.Close()

	cartRepo, err := cartsvc.NewRepository(redisClient, cfg.Checkout.CartTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart repository", err)
		os.Exit(1)
	}
	cartService, err := cartsvc.NewService(cartRepo, bus)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	orderRepo, err := ordersvc.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create order repository", err)
		os.Exit(1)
	}
	orderService, err := ordersvc.NewService(orderRepo, bus, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(apiClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	lookupService, err := lookup.NewService(orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create lookup service", err)
		os.Exit(1)
	}

	checkoutManager, err := checkoutsvc.NewManager(checkoutsvc.ManagerOptions{
		Carts:      cartService,
		Orders:     orderService,
		API:        apiClient,
		Renderer:   qrRenderer,
		Metrics:    checkoutMetrics,
		Logger:     logg,
		IdemScope:  cfg.Checkout.IdemScope,
		SessionTTL: cfg.Checkout.SessionTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout manager", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:   cfg,
			Logger:   logg,
			Registry: registry,
			Pingers: map[string]controllers.Pinger{
				"database":  dbClient,
				"redis":     redisClient,
				"order_api": apiClient,
			},
			Catalog:  catalogService,
			Cart:     cartService,
			Checkout: checkoutManager,
			Orders:   orderService,
			Lookup:   lookupService,
			OrderAPI: apiClient,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			logg.Error(ctx, "storefront server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(drainCtx))
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "shutdown complete")
}
