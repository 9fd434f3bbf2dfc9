package handler

import (
	"github.com/fleet-simulator/internal/domain"
	apperrors "github.com/fleet-simulator/internal/pkg/errors"
	"github.com/fleet-simulator/internal/pkg/utils"
	"github.com/fleet-simulator/internal/pkg/validator"
	"github.com/fleet-simulator/internal/usecase"
	"github.com/fleet-simulator/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DeliveryHandler - обработчик генерации точек доставки
type DeliveryHandler struct {
	deliveryUC *usecase.DeliveryUseCase
	logger     *zap.Logger
}

// NewDeliveryHandler - создание нового DeliveryHandler
func NewDeliveryHandler(deliveryUC *usecase.DeliveryUseCase, logger *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		deliveryUC: deliveryUC,
		logger:     logger,
	}
}

// Generate - генерация кольца точек доставки вокруг депо без аллокации
// флота. Удобно для предпросмотра плотности клиентов.
func (h *DeliveryHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateDeliveryPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(
			map[string]interface{}{"validation": err.Error()},
		))
	}

	depot := domain.Coordinate{Lat: req.Depot.Lat, Lon: req.Depot.Lon}

	points, err := h.deliveryUC.Generate(depot, req.Count)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.GenerateDeliveryPointsResponse{
		Points:  points,
		Summary: h.deliveryUC.Summarize(points),
	}, &utils.Meta{
		Total: len(points),
	})
}
