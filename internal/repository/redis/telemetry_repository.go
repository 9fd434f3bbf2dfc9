package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleet-simulator/internal/domain"
	"github.com/fleet-simulator/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// maxStreamLength - приблизительный предел длины стрима телеметрии;
// старые тики обрезаются самим Redis (XADD MAXLEN ~)
const maxStreamLength = 10000

type telemetryRepository struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// telemetryFrame - один тик телеметрии в стриме
type telemetryFrame struct {
	WaveID    string                 `json:"wave_id"`
	Timestamp time.Time              `json:"ts"`
	Vehicles  []domain.VehicleStatus `json:"vehicles"`
}

// NewTelemetryRepository создает публикатор телеметрии в Redis Stream
func NewTelemetryRepository(client *redis.Client, stream string, logger *zap.Logger) repository.TelemetryRepository {
	return &telemetryRepository{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// PublishPositions публикует позиции транспорта очередного тика.
// Ошибка публикации не фатальна для симуляции и только логируется
// вызывающей стороной.
func (r *telemetryRepository) PublishPositions(ctx context.Context, waveID string, statuses []domain.VehicleStatus) error {
	frame := telemetryFrame{
		WaveID:    waveID,
		Timestamp: time.Now().UTC(),
		Vehicles:  statuses,
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal telemetry frame: %w", err)
	}

	id, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: maxStreamLength,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(payload),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish telemetry: %w", err)
	}

	r.logger.Debug("Telemetry frame published",
		zap.String("stream", r.stream),
		zap.String("message_id", id),
		zap.Int("vehicles", len(statuses)))

	return nil
}
