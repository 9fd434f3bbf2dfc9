package postgres

import (
	"context"
	"fmt"

	"github.com/fleet-simulator/internal/domain"
	"github.com/fleet-simulator/internal/domain/repository"
	"go.uber.org/zap"
)

type waveRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewWaveRepository создает репозиторий сводок завершенных волн
func NewWaveRepository(db *DB, logger *zap.Logger) repository.WaveRepository {
	return &waveRepository{
		db:     db,
		logger: logger,
	}
}

// SaveSummary сохраняет итог завершенной волны. Геометрия маршрутов
// не сохраняется.
func (r *waveRepository) SaveSummary(ctx context.Context, summary *domain.WaveSummary) error {
	summary.DepotLat = summary.Depot.Lat
	summary.DepotLon = summary.Depot.Lon

	query := `
		INSERT INTO wave_history (
			wave_id, depot_lat, depot_lon,
			vehicle_count, delivery_count, coverage_percent,
			started_at, completed_at
		) VALUES (
			:wave_id, :depot_lat, :depot_lon,
			:vehicle_count, :delivery_count, :coverage_percent,
			:started_at, :completed_at
		)
		ON CONFLICT (wave_id) DO NOTHING`

	if _, err := r.db.NamedExecContext(ctx, query, summary); err != nil {
		return fmt.Errorf("failed to insert wave summary: %w", err)
	}

	r.logger.Debug("Wave summary saved",
		zap.String("wave_id", summary.WaveID),
		zap.Int("vehicle_count", summary.VehicleCount),
		zap.Float64("coverage_percent", summary.CoveragePercent))

	return nil
}

// ListRecent возвращает последние завершенные волны
func (r *waveRepository) ListRecent(ctx context.Context, limit int) ([]*domain.WaveSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT wave_id, depot_lat, depot_lon,
		       vehicle_count, delivery_count, coverage_percent,
		       started_at, completed_at
		FROM wave_history
		ORDER BY completed_at DESC
		LIMIT $1`

	var summaries []*domain.WaveSummary
	if err := r.db.SelectContext(ctx, &summaries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to select wave history: %w", err)
	}

	for _, s := range summaries {
		s.Depot = domain.Coordinate{Lat: s.DepotLat, Lon: s.DepotLon}
	}

	return summaries, nil
}
