package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/db"
	"storefront/kvstore"
	"storefront/logger"
	"storefront/notification"
	"storefront/payment"
	"storefront/realtime"
	"storefront/registration"
	"storefront/repository"
	"storefront/routes"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zapLog); err != nil {
		zapLog.Fatal("Server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) error {
	// Initialize database
	database, err := db.Open(cfg, zapLog.Named("db"))
	if err != nil {
		return err
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	store, err := newStore(ctx, cfg, zapLog)
	if err != nil {
		return err
	}

	notifier, err := notification.NewManager(cfg.NotifyChannel, zapLog.Named("notify"))
	if err != nil {
		return err
	}

	gateway, err := payment.NewGateway(cfg.PaymentGateway, zapLog.Named("payment"))
	if err != nil {
		return err
	}

	// Realtime feeds
	hub := realtime.NewHub(zapLog.Named("ws"), 256)
	sockets := realtime.NewSocketServer(zapLog.Named("socketio"))
	go hub.Run(ctx)
	go func() {
		if err := sockets.Serve(); err != nil {
			zapLog.Error("Socket.io server stopped", zap.Error(err))
		}
	}()
	realtimeSrv := &http.Server{
		Addr:              ":" + cfg.RealtimePort,
		Handler:           realtime.NewMux(hub, sockets),
		ReadHeaderTimeout: 5 * time.Second,
	}

	app := routes.New(routes.Deps{
		Carts:        repository.NewGormCartRepository(database, zapLog.Named("carts")),
		Products:     repository.NewGormProductRepository(database, zapLog.Named("products")),
		Categories:   repository.NewGormCategoryRepository(database, zapLog.Named("categories")),
		Users:        repository.NewGormUserRepository(database, zapLog.Named("users")),
		Tags:         repository.NewGormTagRepository(database, zapLog.Named("tags")),
		Orders:       repository.NewGormOrderRepository(database, zapLog.Named("orders")),
		Payments:     gateway,
		Registration: registration.NewService(store, notifier, cfg.KVTTL, zapLog.Named("registration")),
		Events:       realtime.Fanout{hub, sockets},
		Log:          zapLog,
		CORSOrigins:  cfg.CORSOrigins,
	})

	errCh := make(chan error, 2)
	go func() {
		zapLog.Info("Realtime server listening", zap.String("addr", realtimeSrv.Addr))
		if err := realtimeSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		zapLog.Info("API server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + cfg.Port); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		zapLog.Info("Shutting down")
	case err = <-errCh:
		zapLog.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if serr := app.ShutdownWithContext(shutdownCtx); serr != nil {
		zapLog.Warn("API shutdown", zap.Error(serr))
	}
	if serr := realtimeSrv.Shutdown(shutdownCtx); serr != nil {
		zapLog.Warn("Realtime shutdown", zap.Error(serr))
	}
	if serr := sockets.Close(); serr != nil {
		zapLog.Warn("Socket.io shutdown", zap.Error(serr))
	}
	return err
}

// newStore picks Redis when REDIS_URL is set and an in-process store otherwise.
func newStore(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (kvstore.Store, error) {
	if cfg.RedisURL == "" {
		zapLog.Info("Using in-memory key-value store")
		return kvstore.NewMemory(), nil
	}
	client, err := kvstore.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	zapLog.Info("Connected to Redis")
	return kvstore.NewRedis(client, "storefront:"), nil
}
