package http

import (
	"context"
	"time"

	"github.com/fleet-simulator/internal/config"
	"github.com/fleet-simulator/internal/delivery/http/handler"
	"github.com/fleet-simulator/internal/delivery/http/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"go.uber.org/zap"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	fleetHandler      *handler.FleetHandler
	deliveryHandler   *handler.DeliveryHandler
	simulationHandler *handler.SimulationHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	fleetHandler *handler.FleetHandler,
	deliveryHandler *handler.DeliveryHandler,
	simulationHandler *handler.SimulationHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Fleet Simulator",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:               app,
		config:            cfg,
		logger:            logger,
		fleetHandler:      fleetHandler,
		deliveryHandler:   deliveryHandler,
		simulationHandler: simulationHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Fleet routes
	api.Post("/fleet/allocate", s.fleetHandler.Allocate)
	api.Get("/fleet/history", s.fleetHandler.History)

	// Delivery point routes
	api.Post("/delivery-points/generate", s.deliveryHandler.Generate)

	// Simulation routes
	sim := api.Group("/simulation")
	sim.Get("/status", s.simulationHandler.Status)
	sim.Get("/vehicles", s.simulationHandler.Vehicles)
	sim.Post("/pause", s.simulationHandler.Pause)
	sim.Post("/resume", s.simulationHandler.Resume)
	sim.Post("/restart", s.simulationHandler.Restart)
	sim.Post("/stop", s.simulationHandler.Stop)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
