package usecase

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/fleet-simulator/internal/config"
	"github.com/fleet-simulator/internal/domain"
	"github.com/fleet-simulator/internal/pkg/errors"
	"github.com/fleet-simulator/internal/pkg/utils"
	"go.uber.org/zap"
)

const (
	// bearingJitterDeg - случайное отклонение азимута от равномерной
	// раскладки по кольцу
	bearingJitterDeg = 20.0

	minParcelWeightKg = 1.0
	maxParcelWeightKg = 5.0
)

// DeliveryUseCase генерирует синтетическое кольцо точек доставки
// вокруг депо. Источник случайности внедряется явно, чтобы тесты были
// воспроизводимыми; продакшн сеется из системной энтропии.
type DeliveryUseCase struct {
	cfg    *config.DeliveryConfig
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewDeliveryUseCase(cfg *config.DeliveryConfig, logger *zap.Logger, rng *rand.Rand) *DeliveryUseCase {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &DeliveryUseCase{
		cfg:    cfg,
		logger: logger,
		rng:    rng,
	}
}

// Generate создает count точек доставки, разложенных по примерному
// кольцу вокруг депо и отсортированных по расстоянию. count == 0 -
// валидный вход, возвращается пустой список.
func (uc *DeliveryUseCase) Generate(depot domain.Coordinate, count int) ([]*domain.DeliveryPoint, error) {
	if !utils.ValidateCoordinates(depot.Lat, depot.Lon) {
		return nil, errors.ErrInvalidCoordinates
	}
	if count <= 0 {
		return []*domain.DeliveryPoint{}, nil
	}
	if count > uc.cfg.MaxCustomers {
		count = uc.cfg.MaxCustomers
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	spacing := 360.0 / float64(count)
	points := make([]*domain.DeliveryPoint, 0, count)

	for i := 0; i < count; i++ {
		bearing := float64(i)*spacing + uc.uniform(-bearingJitterDeg, bearingJitterDeg)
		distanceKm := uc.uniform(uc.cfg.MinDistanceKm, uc.cfg.MaxDistanceKm)

		location := utils.OffsetCoordinate(depot, bearing, distanceKm)

		points = append(points, &domain.DeliveryPoint{
			Name:       fmt.Sprintf("Customer %d", i+1),
			Address:    fmt.Sprintf("Delivery Location %d - %.1fkm from depot", i+1, distanceKm),
			Location:   location,
			WeightKg:   uc.uniform(minParcelWeightKg, maxParcelWeightKg),
			DistanceKm: distanceKm,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].DistanceKm < points[j].DistanceKm
	})

	uc.logger.Info("Delivery points generated",
		zap.Int("count", len(points)),
		zap.Float64("depot_lat", depot.Lat),
		zap.Float64("depot_lon", depot.Lon))

	return points, nil
}

// Summarize возвращает сводку по набору точек для инфо-панели
func (uc *DeliveryUseCase) Summarize(points []*domain.DeliveryPoint) domain.DeliverySummary {
	summary := domain.DeliverySummary{TotalPoints: len(points)}
	for _, p := range points {
		summary.TotalWeightKg += p.WeightKg
		summary.TotalDistanceKm += p.DistanceKm
	}
	return summary
}

// uniform возвращает равномерное значение из [min, max). Вызывается
// под uc.mu.
func (uc *DeliveryUseCase) uniform(min, max float64) float64 {
	return min + uc.rng.Float64()*(max-min)
}
