package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"grocerfront/internal/cartapi"
	"grocerfront/internal/cartsync"
	"grocerfront/internal/catalog"
	"grocerfront/internal/config"
	"grocerfront/internal/db"
	"grocerfront/internal/guestcart"
	"grocerfront/internal/httpserver"
	"grocerfront/internal/recommend"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer redisClient.Close()

	catalogRepo := catalog.NewPostgres(dbpool, logger)
	guestStore := guestcart.NewRedisStore(redisClient, cfg.GuestCartTTL, logger)

	// The association graph is hand-curated and small; it is loaded once at
	// startup. A failure only costs the cheapest recommendation source.
	assoc, err := catalogRepo.Associations(ctx)
	if err != nil {
		logger.Printf("load product associations: %v", err)
		assoc = nil
	}

	recsClient := recommend.NewClient(cfg.RecsBaseURL, cfg.RecsTimeout)
	recsService := recommend.New(catalogRepo, recsClient, assoc, logger)

	engines := cartsync.NewRegistry(func() *cartsync.Engine {
		gateway := cartapi.NewClient(cfg.CartAPIBaseURL, cfg.CartAPITimeout)
		return cartsync.New(guestStore, gateway, catalogRepo, logger)
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Engines: engines,
		Recs:    recsService,
		Catalog: catalogRepo,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
