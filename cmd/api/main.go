package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storefront-cart/internal/config"
	"storefront-cart/internal/db"
	"storefront-cart/internal/events"
	"storefront-cart/internal/httpserver"
	"storefront-cart/internal/logging"
	"storefront-cart/internal/migrate"
	cartrepo "storefront-cart/internal/repository/cart"
	couponrepo "storefront-cart/internal/repository/coupon"
	customerrepo "storefront-cart/internal/repository/customer"
	orderrepo "storefront-cart/internal/repository/order"
	productrepo "storefront-cart/internal/repository/product"
	projectrepo "storefront-cart/internal/repository/project"
	tokenrepo "storefront-cart/internal/repository/token"
	cartsvc "storefront-cart/internal/service/cart"
	catalogsvc "storefront-cart/internal/service/catalog"
	customersvc "storefront-cart/internal/service/customer"
	ordersvc "storefront-cart/internal/service/order"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, "api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	if err := migrate.Apply(ctx, dbpool, logger); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	var publisher ordersvc.EventPublisher
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			logger.Fatal("connect to rabbitmq", zap.Error(err))
		}
		defer conn.Close()
		p, err := events.NewPublisher(conn, logger.Named("events"))
		if err != nil {
			logger.Fatal("init publisher", zap.Error(err))
		}
		defer p.Close()
		publisher = p
	} else {
		logger.Warn("RABBITMQ_URL not set, checkout events are not published")
	}

	projectRepo := projectrepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	catalogService := catalogsvc.New(productRepo, logger)
	customerService := customersvc.New(customerrepo.NewPostgres(dbpool, logger), tokenrepo.NewPostgres(dbpool), logger)
	orderService := ordersvc.New(orderrepo.NewPostgres(dbpool, logger), publisher, logger)
	cartService := cartsvc.New(
		cartrepo.NewPostgres(dbpool, logger),
		catalogService,
		couponrepo.NewPostgres(dbpool),
		customerService,
		orderService,
		cartsvc.Settings{Currency: cfg.SettlementCurrency, TaxRate: cfg.TaxRatePercent},
		logger.Named("cart"),
	)

	srv, err := httpserver.New(httpserver.Options{
		Addr:           cfg.HTTPAddr,
		AllowedOrigins: cfg.AllowedOrigins,
	}, logger.Named("http"), dbpool, httpserver.Deps{
		ProjectRepo: projectRepo,
		CatalogSvc:  catalogService,
		CustomerSvc: customerService,
		CartSvc:     cartService,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
