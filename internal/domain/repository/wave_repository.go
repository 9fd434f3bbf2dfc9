package repository

import (
	"context"

	"github.com/fleet-simulator/internal/domain"
)

// WaveRepository хранит сводки завершенных волн доставки.
// Геометрия маршрутов не сохраняется.
type WaveRepository interface {
	// SaveSummary сохраняет итог завершенной волны
	SaveSummary(ctx context.Context, summary *domain.WaveSummary) error

	// ListRecent возвращает последние завершенные волны
	ListRecent(ctx context.Context, limit int) ([]*domain.WaveSummary, error)
}
