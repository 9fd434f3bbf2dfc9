package handler

import (
	"github.com/fleet-simulator/internal/config"
	"github.com/fleet-simulator/internal/domain"
	"github.com/fleet-simulator/internal/domain/repository"
	apperrors "github.com/fleet-simulator/internal/pkg/errors"
	"github.com/fleet-simulator/internal/pkg/utils"
	"github.com/fleet-simulator/internal/pkg/validator"
	"github.com/fleet-simulator/internal/usecase"
	"github.com/fleet-simulator/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FleetHandler - обработчик запросов аллокации флота
type FleetHandler struct {
	deliveryUC *usecase.DeliveryUseCase
	fleetUC    *usecase.FleetUseCase
	simUC      *usecase.SimulationUseCase
	waveRepo   repository.WaveRepository
	cfg        *config.FleetConfig
	logger     *zap.Logger
}

// NewFleetHandler - создание нового FleetHandler.
// waveRepo может быть nil, если хранилище истории отключено.
func NewFleetHandler(
	deliveryUC *usecase.DeliveryUseCase,
	fleetUC *usecase.FleetUseCase,
	simUC *usecase.SimulationUseCase,
	waveRepo repository.WaveRepository,
	cfg *config.FleetConfig,
	logger *zap.Logger,
) *FleetHandler {
	return &FleetHandler{
		deliveryUC: deliveryUC,
		fleetUC:    fleetUC,
		simUC:      simUC,
		waveRepo:   waveRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// Allocate - генерация точек доставки вокруг депо и аллокация флота
// с построением маршрутов. Созданный флот становится текущим циклом
// симуляции.
func (h *FleetHandler) Allocate(c *fiber.Ctx) error {
	var req dto.AllocateFleetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(
			map[string]interface{}{"validation": err.Error()},
		))
	}

	if req.Counts.Total() == 0 {
		return utils.SendError(c, apperrors.ErrNoVehiclesConfigured)
	}
	if req.Counts.Total() > h.cfg.MaxTotal {
		return utils.SendError(c, apperrors.ErrFleetTooLarge)
	}

	depot := domain.Coordinate{Lat: req.Depot.Lat, Lon: req.Depot.Lon}

	points, err := h.deliveryUC.Generate(depot, req.CustomerCount)
	if err != nil {
		return utils.SendError(c, err)
	}

	vehicles, report, err := h.fleetUC.Allocate(c.Context(), depot, points, usecase.FleetCounts{
		Drones:         req.Counts.Drones,
		ElectricTrucks: req.Counts.ElectricTrucks,
		FuelTrucks:     req.Counts.FuelTrucks,
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	waveID := uuid.NewString()
	h.simUC.SetFleet(waveID, depot, vehicles, len(points), report.CoveragePercent)

	return utils.SendSuccess(c, dto.AllocateFleetResponse{
		WaveID:   waveID,
		Vehicles: vehicles,
		Report:   *report,
	}, &utils.Meta{
		Total: len(vehicles),
	})
}

// History - последние завершенные волны из хранилища
func (h *FleetHandler) History(c *fiber.Ctx) error {
	if h.waveRepo == nil {
		return utils.SendError(c, apperrors.ErrDatabaseError.WithDetails(
			map[string]interface{}{"reason": "wave history storage is disabled"},
		))
	}

	limit := c.QueryInt("limit", 20)
	req := dto.WaveHistoryRequest{Limit: limit}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(
			map[string]interface{}{"validation": err.Error()},
		))
	}

	waves, err := h.waveRepo.ListRecent(c.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to load wave history", zap.Error(err))
		return utils.SendError(c, apperrors.ErrDatabaseError)
	}

	return utils.SendSuccess(c, waves, &utils.Meta{Total: len(waves)})
}
