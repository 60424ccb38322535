package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"storefront-cart/internal/config"
	"storefront-cart/internal/db"
	"storefront-cart/internal/logging"
	couponrepo "storefront-cart/internal/repository/coupon"
	customerrepo "storefront-cart/internal/repository/customer"
	productrepo "storefront-cart/internal/repository/product"
	projectrepo "storefront-cart/internal/repository/project"
	tokenrepo "storefront-cart/internal/repository/token"
	"storefront-cart/internal/seed"
	customersvc "storefront-cart/internal/service/customer"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, "seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	_, err = seed.Apply(ctx, seed.Deps{
		Projects:  projectrepo.NewPostgres(pool),
		Products:  productrepo.NewPostgres(pool, logger),
		Coupons:   couponrepo.NewPostgres(pool),
		Customers: customersvc.New(customerrepo.NewPostgres(pool, logger), tokenrepo.NewPostgres(pool), logger),
	}, logger)
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
}
