package usecase

import (
	"context"
	"fmt"

	"github.com/fleet-simulator/internal/domain"
	"github.com/fleet-simulator/internal/domain/repository"
	"github.com/fleet-simulator/internal/pkg/utils"
	"go.uber.org/zap"
)

const (
	// aerialKmPerPoint - примерно одна путевая точка на 5 км полета
	aerialKmPerPoint = 5.0
	minAerialPoints  = 2
	maxAerialPoints  = 8
)

// RouteUseCase строит круговые маршруты депо -> точка доставки -> депо.
// Ошибки внешнего сервиса маршрутизации не выходят наружу: любой сбой
// разрешается детерминированным интерполированным фолбэком, вызывающая
// сторона видит только (возможно, огрубленный) маршрут.
type RouteUseCase struct {
	routingRepo    repository.RoutingRepository
	cache          repository.RouteCacheRepository
	logger         *zap.Logger
	maxRoutePoints int
}

func NewRouteUseCase(
	routingRepo repository.RoutingRepository,
	cache repository.RouteCacheRepository,
	logger *zap.Logger,
	maxRoutePoints int,
) *RouteUseCase {
	if maxRoutePoints <= 0 {
		maxRoutePoints = 10
	}
	return &RouteUseCase{
		routingRepo:    routingRepo,
		cache:          cache,
		logger:         logger,
		maxRoutePoints: maxRoutePoints,
	}
}

// BuildRoundTrip строит круговой маршрут. Гарантии: маршрут начинается
// и заканчивается точно в депо, точка доставки встречается ровно один
// раз на стыке плеч, длина не меньше 3 точек даже при полном отказе
// внешнего сервиса.
func (uc *RouteUseCase) BuildRoundTrip(ctx context.Context, depot, delivery domain.Coordinate, aerial bool) domain.Route {
	outbound := uc.outboundLeg(ctx, depot, delivery, aerial)
	if len(outbound) < 2 {
		return domain.Route{depot, delivery, depot}
	}

	// Обратное плечо - развернутое исходящее без точки доставки,
	// чтобы она была посещена ровно один раз
	round := make(domain.Route, 0, 2*len(outbound)-1)
	round = append(round, outbound...)
	for i := len(outbound) - 2; i >= 0; i-- {
		round = append(round, outbound[i])
	}

	round[0] = depot
	round[len(round)-1] = depot

	return round
}

// ValidateRoundTrip проверяет инварианты кругового маршрута. Используется
// тестами и диагностикой аллокатора; построение и так их обеспечивает.
func (uc *RouteUseCase) ValidateRoundTrip(route domain.Route, depot, delivery domain.Coordinate) (bool, string) {
	if len(route) < 3 {
		return false, fmt.Sprintf("route too short: %d points", len(route))
	}
	if !route[0].Equals(depot) {
		return false, "route does not start at depot"
	}
	if !route[len(route)-1].Equals(depot) {
		return false, "route does not end at depot"
	}

	deliveryVisits := 0
	for _, p := range route {
		if p.Equals(delivery) {
			deliveryVisits++
		}
	}
	if deliveryVisits != 1 {
		return false, fmt.Sprintf("delivery point visited %d times, expected 1", deliveryVisits)
	}

	return true, ""
}

// outboundLeg возвращает исходящее плечо депо -> точка доставки,
// мемоизированное в кэше по квантованному ключу
func (uc *RouteUseCase) outboundLeg(ctx context.Context, depot, delivery domain.Coordinate, aerial bool) domain.Route {
	key := domain.NewRouteKey(depot, delivery, aerial)

	return uc.cache.GetOrCompute(key, func() domain.Route {
		if aerial {
			return uc.aerialLeg(depot, delivery)
		}
		return uc.groundLeg(ctx, depot, delivery)
	})
}

// aerialLeg - прямая линия полета: линейная интерполяция, число точек
// растет с расстоянием и ограничено небольшим диапазоном
func (uc *RouteUseCase) aerialLeg(depot, delivery domain.Coordinate) domain.Route {
	distanceKm := utils.HaversineDistance(depot, delivery)

	points := int(distanceKm / aerialKmPerPoint)
	if points < minAerialPoints {
		points = minAerialPoints
	}
	if points > maxAerialPoints {
		points = maxAerialPoints
	}

	leg := make(domain.Route, 0, points)
	for i := 0; i < points; i++ {
		t := float64(i) / float64(points-1)
		leg = append(leg, utils.InterpolateCoordinate(depot, delivery, t))
	}

	leg[0] = depot
	leg[len(leg)-1] = delivery

	return leg
}

// groundLeg запрашивает дорожную геометрию у внешнего сервиса; любой
// сбой разрешается фолбэком
func (uc *RouteUseCase) groundLeg(ctx context.Context, depot, delivery domain.Coordinate) domain.Route {
	points, err := uc.routingRepo.GetRoute(ctx, depot, delivery)
	if err != nil {
		uc.logger.Warn("Routing service failed, using fallback route",
			zap.Float64("depot_lat", depot.Lat),
			zap.Float64("depot_lon", depot.Lon),
			zap.Float64("delivery_lat", delivery.Lat),
			zap.Float64("delivery_lon", delivery.Lon),
			zap.Error(err))
		return uc.fallbackLeg(depot, delivery)
	}
	if len(points) < 2 {
		uc.logger.Warn("Routing service returned degenerate geometry, using fallback route",
			zap.Int("points", len(points)))
		return uc.fallbackLeg(depot, delivery)
	}

	return uc.downsample(points, depot, delivery)
}

// downsample прореживает дорожную геометрию до ограниченного числа
// точек, чтобы движение и отрисовка на каждом тике оставались дешевыми.
// Первая и последняя точки принудительно совпадают с запрошенными.
func (uc *RouteUseCase) downsample(points []domain.Coordinate, depot, delivery domain.Coordinate) domain.Route {
	// Деление с округлением вверх, иначе плечо превышает лимит точек
	step := (len(points) + uc.maxRoutePoints - 1) / uc.maxRoutePoints
	if step < 1 {
		step = 1
	}

	leg := make(domain.Route, 0, uc.maxRoutePoints+2)
	for i := 0; i < len(points); i += step {
		leg = append(leg, points[i])
	}
	// Конечная точка не должна дублироваться, иначе точка доставки
	// будет посещена дважды
	if (len(points)-1)%step != 0 {
		leg = append(leg, points[len(points)-1])
	}

	leg[0] = depot
	leg[len(leg)-1] = delivery

	return leg
}

// fallbackLeg - детерминированный интерполированный маршрут на случай
// отказа внешнего сервиса: число промежуточных точек растет с
// расстоянием. Повторные вызовы с теми же входами дают тот же маршрут.
func (uc *RouteUseCase) fallbackLeg(depot, delivery domain.Coordinate) domain.Route {
	distanceKm := utils.HaversineDistance(depot, delivery)

	var segments int
	switch {
	case distanceKm < 10:
		segments = 2
	case distanceKm < 50:
		segments = 3
	default:
		segments = 5
	}

	leg := make(domain.Route, 0, segments+1)
	leg = append(leg, depot)
	for i := 1; i < segments; i++ {
		t := float64(i) / float64(segments)
		leg = append(leg, utils.InterpolateCoordinate(depot, delivery, t))
	}
	leg = append(leg, delivery)

	return leg
}
