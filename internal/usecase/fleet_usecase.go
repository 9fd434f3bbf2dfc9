package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/fleet-simulator/internal/domain"
	"github.com/fleet-simulator/internal/pkg/errors"
	"github.com/fleet-simulator/internal/pkg/utils"
	"github.com/fleet-simulator/internal/usecase/dto"
	"go.uber.org/zap"
)

// FleetCounts - запрошенное количество транспорта каждого типа
type FleetCounts struct {
	Drones         int
	ElectricTrucks int
	FuelTrucks     int
}

// Total возвращает суммарный размер флота
func (c FleetCounts) Total() int {
	return c.Drones + c.ElectricTrucks + c.FuelTrucks
}

// vehicleSlot - один слот флота до построения маршрута
type vehicleSlot struct {
	name     string
	vtype    domain.VehicleType
	delivery *domain.DeliveryPoint
}

// FleetUseCase распределяет флот по точкам доставки и материализует
// транспортные средства с построенными маршрутами. Построение наземных
// маршрутов распараллеливается ограниченным пулом воркеров, чтобы не
// упираться в лимиты внешнего сервиса.
type FleetUseCase struct {
	routeUC      *RouteUseCase
	logger       *zap.Logger
	specs        map[domain.VehicleType]domain.VehicleSpec
	workers      int
	routeTimeout time.Duration
	batchTimeout time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewFleetUseCase(
	routeUC *RouteUseCase,
	logger *zap.Logger,
	workers int,
	routeTimeout time.Duration,
	batchTimeout time.Duration,
	rng *rand.Rand,
) *FleetUseCase {
	if workers <= 0 {
		workers = 3
	}
	if routeTimeout <= 0 {
		routeTimeout = 10 * time.Second
	}
	if batchTimeout <= 0 {
		batchTimeout = 30 * time.Second
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &FleetUseCase{
		routeUC:      routeUC,
		logger:       logger,
		specs:        domain.DefaultVehicleSpecs(),
		workers:      workers,
		routeTimeout: routeTimeout,
		batchTimeout: batchTimeout,
		rng:          rng,
	}
}

// Allocate распределяет флот по точкам доставки и строит маршруты.
// Возвращает реестр транспорта по имени и отчет о покрытии. Отказ
// построения маршрута для одного слота не прерывает пакет: слот
// получает прямой аварийный маршрут депо -> доставка -> депо.
func (uc *FleetUseCase) Allocate(
	ctx context.Context,
	depot domain.Coordinate,
	points []*domain.DeliveryPoint,
	counts FleetCounts,
) (map[string]*domain.Vehicle, *dto.AllocationReport, error) {
	if !utils.ValidateCoordinates(depot.Lat, depot.Lon) {
		return nil, nil, errors.ErrInvalidCoordinates
	}

	total := counts.Total()
	if total == 0 {
		return nil, nil, errors.ErrNoVehiclesConfigured
	}
	if len(points) == 0 {
		return nil, nil, errors.ErrNoDeliveryPoints
	}

	uc.logger.Info("Starting fleet allocation",
		zap.Float64("depot_lat", depot.Lat),
		zap.Float64("depot_lon", depot.Lon),
		zap.Int("delivery_points", len(points)),
		zap.Int("drones", counts.Drones),
		zap.Int("electric_trucks", counts.ElectricTrucks),
		zap.Int("fuel_trucks", counts.FuelTrucks))

	assigned := uc.assignDeliveries(depot, points, total)
	slots := uc.buildSlots(counts, assigned)

	routes := uc.buildRoutes(ctx, depot, slots)

	report := &dto.AllocationReport{
		RequestedVehicles: total,
		TotalPoints:       len(points),
	}

	vehicles := make(map[string]*domain.Vehicle, len(slots))
	covered := make(map[string]struct{})

	for i, slot := range slots {
		route := routes[i]
		if len(route) < 3 {
			// Аварийный прямой маршрут сохраняет размер флота
			route = domain.Route{depot, slot.delivery.Location, depot}
			report.FallbackRoutes++
			uc.logger.Warn("Route build failed, using emergency direct route",
				zap.String("vehicle", slot.name))
		}

		spec := uc.specs[slot.vtype]
		vehicles[slot.name] = &domain.Vehicle{
			Name:             slot.name,
			Type:             slot.vtype,
			Position:         route[0],
			Route:            route,
			RouteIndex:       0,
			Progress:         0.0,
			SpeedKmh:         spec.SpeedKmh,
			WeightKg:         uc.sampleWeight(spec),
			AssignedDelivery: slot.delivery,
		}
		covered[slot.delivery.Name] = struct{}{}
	}

	report.CreatedVehicles = len(vehicles)
	report.CoveredPoints = len(covered)
	report.CoveragePercent = float64(len(covered)) / float64(len(points)) * 100

	uc.logger.Info("Fleet allocation completed",
		zap.Int("requested_vehicles", report.RequestedVehicles),
		zap.Int("created_vehicles", report.CreatedVehicles),
		zap.Int("covered_points", report.CoveredPoints),
		zap.Int("total_points", report.TotalPoints),
		zap.Float64("coverage_percent", report.CoveragePercent),
		zap.Int("fallback_routes", report.FallbackRoutes))

	if report.CoveredPoints < report.TotalPoints {
		uc.logger.Warn("Fleet smaller than delivery point set, some points uncovered",
			zap.Int("uncovered", report.TotalPoints-report.CoveredPoints))
	}

	return vehicles, report, nil
}

// assignDeliveries строит список назначений длиной total: по одной
// точке доставки на слот флота
func (uc *FleetUseCase) assignDeliveries(
	depot domain.Coordinate,
	points []*domain.DeliveryPoint,
	total int,
) []*domain.DeliveryPoint {
	if total >= len(points) {
		// Флот не меньше числа точек: каждая точка получает минимум
		// одно транспортное средство, избыток распределяется по кругу.
		// Порядок перемешивается, чтобы распределение типов не было
		// смещено к первым точкам списка.
		base := make([]*domain.DeliveryPoint, len(points))
		copy(base, points)

		uc.mu.Lock()
		uc.rng.Shuffle(len(base), func(i, j int) {
			base[i], base[j] = base[j], base[i]
		})
		uc.mu.Unlock()

		assigned := make([]*domain.DeliveryPoint, 0, total)
		assigned = append(assigned, base...)
		for i := 0; i < total-len(base); i++ {
			assigned = append(assigned, base[i%len(base)])
		}
		return assigned
	}

	// Точек больше, чем транспорта: обслуживаем ближайшие к депо,
	// предпочитая достижимость покрытию
	ranked := make([]*domain.DeliveryPoint, len(points))
	copy(ranked, points)
	sort.SliceStable(ranked, func(i, j int) bool {
		return utils.HaversineDistance(depot, ranked[i].Location) <
			utils.HaversineDistance(depot, ranked[j].Location)
	})

	return ranked[:total]
}

// buildSlots раздает слоты флота в фиксированном порядке приоритета
// типов: сначала дроны, затем электрические, затем топливные грузовики
func (uc *FleetUseCase) buildSlots(counts FleetCounts, assigned []*domain.DeliveryPoint) []vehicleSlot {
	slots := make([]vehicleSlot, 0, len(assigned))
	idx := 0

	add := func(n int, vtype domain.VehicleType) {
		for i := 0; i < n; i++ {
			// Защитный выход: список назначений исчерпан
			if idx >= len(assigned) {
				return
			}
			slots = append(slots, vehicleSlot{
				name:     fmt.Sprintf("%s %d", vtype, i+1),
				vtype:    vtype,
				delivery: assigned[idx],
			})
			idx++
		}
	}

	add(counts.Drones, domain.VehicleDrone)
	add(counts.ElectricTrucks, domain.VehicleElectricTruck)
	add(counts.FuelTrucks, domain.VehicleFuelTruck)

	return slots
}

// buildRoutes строит маршруты для всех слотов. Дроновые маршруты -
// чистое вычисление и строятся последовательно; наземные, связанные с
// сетевым вводом-выводом, - ограниченным пулом воркеров с общим
// таймаутом пакета. Слоты, не успевшие к таймауту, остаются без
// маршрута и получают аварийный фолбэк выше по стеку.
func (uc *FleetUseCase) buildRoutes(ctx context.Context, depot domain.Coordinate, slots []vehicleSlot) []domain.Route {
	routes := make([]domain.Route, len(slots))

	groundIdx := make([]int, 0, len(slots))
	for i, slot := range slots {
		if slot.vtype.IsAerial() {
			routes[i] = uc.routeUC.BuildRoundTrip(ctx, depot, slot.delivery.Location, true)
		} else {
			groundIdx = append(groundIdx, i)
		}
	}

	if len(groundIdx) == 0 {
		return routes
	}

	batchCtx, cancel := context.WithTimeout(ctx, uc.batchTimeout)
	defer cancel()

	workers := uc.workers
	if workers > len(groundIdx) {
		workers = len(groundIdx)
	}

	tasks := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				reqCtx, cancelReq := context.WithTimeout(batchCtx, uc.routeTimeout)
				routes[i] = uc.routeUC.BuildRoundTrip(reqCtx, depot, slots[i].delivery.Location, false)
				cancelReq()
			}
		}()
	}

	abandoned := 0
dispatch:
	for n, i := range groundIdx {
		select {
		case tasks <- i:
		case <-batchCtx.Done():
			abandoned = len(groundIdx) - n
			break dispatch
		}
	}
	close(tasks)
	wg.Wait()

	if abandoned > 0 {
		uc.logger.Warn("Route build batch timed out, remaining slots fall back to direct routes",
			zap.Duration("batch_timeout", uc.batchTimeout))
	}

	return routes
}

// sampleWeight выбирает полезную нагрузку равномерно из диапазона типа
func (uc *FleetUseCase) sampleWeight(spec domain.VehicleSpec) float64 {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return spec.MinWeightKg + uc.rng.Float64()*(spec.MaxWeightKg-spec.MinWeightKg)
}
