package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/yeremiapane/restaurant-floorplan/config"
	"github.com/yeremiapane/restaurant-floorplan/database"
	"github.com/yeremiapane/restaurant-floorplan/hub"
	"github.com/yeremiapane/restaurant-floorplan/router"
	"github.com/yeremiapane/restaurant-floorplan/services"
	"github.com/yeremiapane/restaurant-floorplan/storage"
	"github.com/yeremiapane/restaurant-floorplan/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}

	utils.InitLogger(cfg.LogLevel)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	kv, closeKV, err := openStorage(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to open storage: %v", err)
	}
	defer closeKV()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := services.NewFloorPlanStore(ctx, kv, storeOptions(cfg)...)
	floorHub := hub.New()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.SetupRouter(store, floorHub, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s (storage=%s)", cfg.Port, cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Shutdown: %v", err)
	}
}

func storeOptions(cfg *config.Config) []services.Option {
	var opts []services.Option
	if cfg.TableIDStrategy == config.IDStrategySequence {
		opts = append(opts, services.WithSequentialIDs())
	}
	if cfg.ReservationOccupancy == config.OccupancyOccupy {
		opts = append(opts, services.WithForcedOccupancy())
	}
	return opts
}

// openStorage returns the KV backend for cfg and a function that releases it.
func openStorage(cfg *config.Config) (storage.KV, func(), error) {
	if cfg.StorageDriver == config.StorageRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		return storage.NewRedisKV(client, cfg.RedisKeyPrefix), func() { client.Close() }, nil
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return storage.NewGormKV(db), closeDB, nil
}
