package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleet-simulator/internal/config"
	httpDelivery "github.com/fleet-simulator/internal/delivery/http"
	"github.com/fleet-simulator/internal/delivery/http/handler"
	"github.com/fleet-simulator/internal/domain/repository"
	"github.com/fleet-simulator/internal/infrastructure/osrm"
	"github.com/fleet-simulator/internal/pkg/logger"
	"github.com/fleet-simulator/internal/repository/cache"
	"github.com/fleet-simulator/internal/repository/postgres"
	redisrepo "github.com/fleet-simulator/internal/repository/redis"
	"github.com/fleet-simulator/internal/usecase"
	"github.com/fleet-simulator/internal/worker"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New("fleet-simulator-api", cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Fleet Simulator API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("osrm_base_url", cfg.Routing.BaseURL),
	)

	// 3. Connect to Redis (optional telemetry stream)
	var telemetryRepo repository.TelemetryRepository
	var redisClient *redisrepo.Redis
	if cfg.Redis.Enabled {
		redisClient, err = redisrepo.New(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		telemetryRepo = redisrepo.NewTelemetryRepository(redisClient.Client(), cfg.Redis.Stream, log)
		log.Info("Redis connected", zap.String("stream", cfg.Redis.Stream))
	} else {
		log.Info("Redis disabled, telemetry stream is off")
	}

	// 4. Connect to PostgreSQL (optional wave history storage)
	var waveRepo repository.WaveRepository
	var db *postgres.DB
	if cfg.Database.Enabled {
		db, err = postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()
		waveRepo = postgres.NewWaveRepository(db, log)
		log.Info("PostgreSQL connected")
	} else {
		log.Info("PostgreSQL disabled, wave history is off")
	}

	// 5. Initialize repositories
	routeCache := cache.NewRouteCache(cfg.Routing.CacheSize, log)
	routingRepo := osrm.NewClient(&cfg.Routing, log)

	log.Info("Repositories initialized")

	// 6. Initialize use cases
	// rand.Rand не потокобезопасен, и каждый use case синхронизирует
	// только свой экземпляр: источники не разделяются
	deliveryRng := rand.New(rand.NewSource(time.Now().UnixNano()))
	fleetRng := rand.New(rand.NewSource(time.Now().UnixNano()))

	routeUC := usecase.NewRouteUseCase(routingRepo, routeCache, log, cfg.Routing.MaxRoutePoints)
	deliveryUC := usecase.NewDeliveryUseCase(&cfg.Delivery, log, deliveryRng)
	fleetUC := usecase.NewFleetUseCase(
		routeUC,
		log,
		cfg.Routing.Workers,
		cfg.Routing.RequestTimeout,
		cfg.Routing.BatchTimeout,
		fleetRng,
	)
	simUC := usecase.NewSimulationUseCase(log)

	log.Info("Use cases initialized")

	// 7. Initialize workers
	manager := worker.NewManager(log)
	manager.Register(worker.NewSimulationWorker(
		simUC,
		telemetryRepo,
		waveRepo,
		cfg.Simulation.TickInterval,
		cfg.Simulation.PauseBetweenWaves,
		cfg.Simulation.AutoRestart,
		log,
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := manager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	log.Info("Workers started")

	// 8. Initialize HTTP handlers
	fleetHandler := handler.NewFleetHandler(deliveryUC, fleetUC, simUC, waveRepo, &cfg.Fleet, log)
	deliveryHandler := handler.NewDeliveryHandler(deliveryUC, log)
	simulationHandler := handler.NewSimulationHandler(simUC, log)

	log.Info("HTTP handlers initialized")

	// 9. Initialize HTTP server
	server := httpDelivery.NewServer(cfg, log, fleetHandler, deliveryHandler, simulationHandler)

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	cancel()

	if err := manager.Stop(); err != nil {
		log.Error("Workers shutdown error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
