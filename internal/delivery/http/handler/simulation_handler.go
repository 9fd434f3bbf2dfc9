package handler

import (
	"github.com/fleet-simulator/internal/pkg/utils"
	"github.com/fleet-simulator/internal/usecase"
	"github.com/fleet-simulator/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SimulationHandler - обработчик управления циклом симуляции
type SimulationHandler struct {
	simUC  *usecase.SimulationUseCase
	logger *zap.Logger
}

// NewSimulationHandler - создание нового SimulationHandler
func NewSimulationHandler(simUC *usecase.SimulationUseCase, logger *zap.Logger) *SimulationHandler {
	return &SimulationHandler{
		simUC:  simUC,
		logger: logger,
	}
}

// Status - текущее состояние цикла
func (h *SimulationHandler) Status(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.simUC.Status(), nil)
}

// Vehicles - позиции и статусы транспорта на последнем тике
func (h *SimulationHandler) Vehicles(c *fiber.Ctx) error {
	statuses := h.simUC.Statuses()
	return utils.SendSuccess(c, dto.VehiclePositionsResponse{
		Vehicles: statuses,
	}, &utils.Meta{
		Total: len(statuses),
	})
}

// Pause - приостановка движения без потери прогресса
func (h *SimulationHandler) Pause(c *fiber.Ctx) error {
	if err := h.simUC.Pause(); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, h.simUC.Status(), nil)
}

// Resume - возобновление движения после паузы
func (h *SimulationHandler) Resume(c *fiber.Ctx) error {
	if err := h.simUC.Resume(); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, h.simUC.Status(), nil)
}

// Restart - возврат всего флота в депо и запуск волны заново
func (h *SimulationHandler) Restart(c *fiber.Ctx) error {
	if err := h.simUC.Restart(); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, h.simUC.Status(), nil)
}

// Stop - остановка симуляции и сброс флота
func (h *SimulationHandler) Stop(c *fiber.Ctx) error {
	h.simUC.Clear()
	return utils.SendSuccess(c, h.simUC.Status(), nil)
}
