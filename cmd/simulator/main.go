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
	"github.com/fleet-simulator/internal/domain"
	"github.com/fleet-simulator/internal/domain/repository"
	"github.com/fleet-simulator/internal/infrastructure/osrm"
	"github.com/fleet-simulator/internal/pkg/logger"
	"github.com/fleet-simulator/internal/repository/cache"
	redisrepo "github.com/fleet-simulator/internal/repository/redis"
	"github.com/fleet-simulator/internal/usecase"
	"github.com/fleet-simulator/internal/worker"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Депо по умолчанию: Мангалуру, Индия
var defaultDepot = domain.Coordinate{Lat: 12.85, Lon: 74.92}

const (
	defaultCustomers      = 5
	defaultDrones         = 3
	defaultElectricTrucks = 2
	defaultFuelTrucks     = 2
)

// Headless-запуск: аллоцирует демонстрационную волну и крутит цикл
// движения до сигнала завершения. HTTP API не поднимается.
func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New("fleet-simulator", cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Fleet Simulator (headless)")

	// 3. Connect to Redis (optional telemetry stream)
	var telemetryRepo repository.TelemetryRepository
	if cfg.Redis.Enabled {
		redisClient, err := redisrepo.New(&cfg.Redis, log)
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
	}

	// 4. Initialize repositories and use cases
	routeCache := cache.NewRouteCache(cfg.Routing.CacheSize, log)
	routingRepo := osrm.NewClient(&cfg.Routing, log)

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

	// 5. Allocate the demo wave
	points, err := deliveryUC.Generate(defaultDepot, defaultCustomers)
	if err != nil {
		log.Fatal("Failed to generate delivery points", zap.Error(err))
	}

	allocCtx, allocCancel := context.WithTimeout(context.Background(), cfg.Routing.BatchTimeout)
	vehicles, report, err := fleetUC.Allocate(allocCtx, defaultDepot, points, usecase.FleetCounts{
		Drones:         defaultDrones,
		ElectricTrucks: defaultElectricTrucks,
		FuelTrucks:     defaultFuelTrucks,
	})
	allocCancel()
	if err != nil {
		log.Fatal("Failed to allocate fleet", zap.Error(err))
	}

	waveID := uuid.NewString()
	simUC.SetFleet(waveID, defaultDepot, vehicles, len(points), report.CoveragePercent)

	log.Info("Demo wave allocated",
		zap.String("wave_id", waveID),
		zap.Int("vehicles", len(vehicles)),
		zap.Int("delivery_points", len(points)),
		zap.Float64("coverage_percent", report.CoveragePercent))

	// 6. Run the simulation worker until a shutdown signal
	manager := worker.NewManager(log)
	manager.Register(worker.NewSimulationWorker(
		simUC,
		telemetryRepo,
		nil,
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down simulator...")

	cancel()

	if err := manager.Stop(); err != nil {
		log.Error("Workers shutdown error", zap.Error(err))
	}

	log.Info("Simulator stopped")
}
