package repository

import (
	"context"

	"github.com/fleet-simulator/internal/domain"
)

// TelemetryRepository публикует состояние транспорта для внешних
// подписчиков (рендерер карты, мониторинг)
type TelemetryRepository interface {
	// PublishPositions публикует позиции транспорта очередного тика
	PublishPositions(ctx context.Context, waveID string, statuses []domain.VehicleStatus) error
}
