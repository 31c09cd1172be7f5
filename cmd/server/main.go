package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"bloom/internal/account"
	"bloom/internal/auth"
	"bloom/internal/cart"
	"bloom/internal/config"
	"bloom/internal/coupon"
	"bloom/internal/dashboard"
	"bloom/internal/favorite"
	"bloom/internal/infrastructure/cache"
	"bloom/internal/infrastructure/logger"
	"bloom/internal/infrastructure/mysql"
	"bloom/internal/infrastructure/rabbitmq"
	"bloom/internal/notification"
	"bloom/internal/order"
	"bloom/internal/order/realtime"
	"bloom/internal/product"
	"bloom/internal/review"
	"bloom/internal/server"
	"bloom/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	zapLogger.Info("database connected")

	if cfg.Database.AutoMigrate {
		applied, err := mysql.Migrate(ctx, db)
		if err != nil {
			zapLogger.Fatal("applying migrations", zap.Error(err))
		}
		zapLogger.Info("migrations applied", zap.Strings("migrations", applied))
	}

	redisClient, err := cache.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("connecting to redis", zap.Error(err))
	}
	zapLogger.Info("redis connected")

	sessions := auth.NewRedisSessionStore(redisClient, cfg.Session.TTL)
	hub := realtime.NewHub(zapLogger.Named("realtime"))

	settingsModule := settings.NewModule(db, cache.NewRedisCache(redisClient, "bloom"), zapLogger)
	couponModule := coupon.NewModule(db, zapLogger)
	cartModule := cart.NewModule(db, redisClient, couponModule.Service, settingsModule.Service, zapLogger)
	orderModule := order.NewModule(db, cfg, settingsModule.Service, cartModule.Repository, hub, zapLogger)
	productModule := product.NewModule(db, zapLogger)
	accountModule := account.NewModule(db, sessions, zapLogger)

	router := server.NewRouter(server.Handlers{
		Catalog:   productModule.Catalog,
		Products:  productModule.Admin,
		Auth:      accountModule.Auth,
		Addresses: accountModule.Addresses,
		Favorites: favorite.NewModule(db, zapLogger),
		Reviews:   review.NewModule(db, zapLogger),
		Coupons:   couponModule.Controller,
		Cart:      cartModule.Controller,
		Orders:    orderModule.Controller,
		Settings:  settingsModule.Controller,
		Dashboard: dashboard.NewModule(db, cfg, zapLogger),
	}, sessions, map[string]server.Pinger{
		"mysql": server.PingFunc(db.PingContext),
		"redis": server.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
	}, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	var workers conc.WaitGroup
	workers.Go(func() { hub.Run(ctx) })

	var closers []func() error
	if cfg.Rabbit.Enabled {
		publisher, err := rabbitmq.NewRabbitPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			zapLogger.Fatal("connecting rabbitmq publisher", zap.Error(err))
		}
		consumer, err := rabbitmq.NewRabbitConsumer(cfg.Rabbit.URL, cfg.Rabbit.Exchange, cfg.Rabbit.Queue, zapLogger)
		if err != nil {
			zapLogger.Fatal("connecting rabbitmq consumer", zap.Error(err))
		}
		closers = append(closers, publisher.Close, consumer.Close)

		notifications := notification.NewModule(db, cfg, publisher, settingsModule.Service, zapLogger)
		workers.Go(func() { notifications.Dispatcher.Run(ctx) })
		workers.Go(func() {
			if err := consumer.Start(ctx, notifications.Notifier.HandleDelivery); err != nil {
				zapLogger.Error("notification consumer stopped", zap.Error(err))
			}
		})
		zapLogger.Info("notifications enabled", zap.String("exchange", cfg.Rabbit.Exchange))
	} else {
		zapLogger.Info("notifications disabled")
	}

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLogger.Info("received shutdown signal")

	if err := srv.Shutdown(context.Background()); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}
	workers.Wait()

	var closeErr error
	for _, c := range closers {
		closeErr = multierr.Append(closeErr, c())
	}
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, db.Close())
	if closeErr != nil {
		zapLogger.Warn("closing resources", zap.Error(closeErr))
	}

	zapLogger.Info("server stopped gracefully")
}
