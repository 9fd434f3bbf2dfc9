package usecase

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/fleet-simulator/internal/domain"
	apperrors "github.com/fleet-simulator/internal/pkg/errors"
	"github.com/fleet-simulator/internal/pkg/utils"
	"github.com/fleet-simulator/internal/repository/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFleetUC(repo *mockRoutingRepo, seed int64) *FleetUseCase {
	logger := zap.NewNop()
	routeUC := NewRouteUseCase(repo, cache.NewRouteCache(100, logger), logger, 10)
	return NewFleetUseCase(routeUC, logger, 3, 0, 0, rand.New(rand.NewSource(seed)))
}

func testDeliveryRing(depot domain.Coordinate, count int) []*domain.DeliveryPoint {
	uc := newTestDeliveryUC(99)
	points, _ := uc.Generate(depot, count)
	return points
}

func TestFleetUseCase_Allocate(t *testing.T) {
	depot := domain.Coordinate{Lat: 12.85, Lon: 74.92}

	t.Run("validates inputs", func(t *testing.T) {
		uc := newTestFleetUC(&mockRoutingRepo{}, 1)
		points := testDeliveryRing(depot, 3)

		_, _, err := uc.Allocate(context.Background(), domain.Coordinate{Lat: 99, Lon: 0}, points, FleetCounts{Drones: 1})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCoordinates)

		_, _, err = uc.Allocate(context.Background(), depot, points, FleetCounts{})
		assert.ErrorIs(t, err, apperrors.ErrNoVehiclesConfigured)

		_, _, err = uc.Allocate(context.Background(), depot, nil, FleetCounts{Drones: 1})
		assert.ErrorIs(t, err, apperrors.ErrNoDeliveryPoints)
	})

	t.Run("creates vehicle per slot with full coverage", func(t *testing.T) {
		uc := newTestFleetUC(&mockRoutingRepo{}, 1)
		points := testDeliveryRing(depot, 5)

		vehicles, report, err := uc.Allocate(context.Background(), depot, points, FleetCounts{
			Drones:         2,
			ElectricTrucks: 2,
			FuelTrucks:     1,
		})
		require.NoError(t, err)

		assert.Len(t, vehicles, 5)
		assert.Equal(t, 5, report.RequestedVehicles)
		assert.Equal(t, 5, report.CreatedVehicles)
		assert.Equal(t, 5, report.CoveredPoints)
		assert.Equal(t, 100.0, report.CoveragePercent)
	})

	t.Run("vehicle names follow type numbering", func(t *testing.T) {
		uc := newTestFleetUC(&mockRoutingRepo{}, 1)
		points := testDeliveryRing(depot, 4)

		vehicles, _, err := uc.Allocate(context.Background(), depot, points, FleetCounts{
			Drones:     2,
			FuelTrucks: 2,
		})
		require.NoError(t, err)

		assert.Contains(t, vehicles, "Drone 1")
		assert.Contains(t, vehicles, "Drone 2")
		assert.Contains(t, vehicles, "Fuel Truck 1")
		assert.Contains(t, vehicles, "Fuel Truck 2")
	})

	t.Run("undersized fleet serves nearest points", func(t *testing.T) {
		uc := newTestFleetUC(&mockRoutingRepo{}, 1)
		points := testDeliveryRing(depot, 10)

		vehicles, report, err := uc.Allocate(context.Background(), depot, points, FleetCounts{
			Drones: 4,
		})
		require.NoError(t, err)
		require.Len(t, vehicles, 4)

		assert.Equal(t, 4, report.CoveredPoints)
		assert.Equal(t, 10, report.TotalPoints)
		assert.InDelta(t, 40.0, report.CoveragePercent, 1e-9)

		// Обслуживаются ровно четыре ближайшие точки
		maxServed := 0.0
		for _, v := range vehicles {
			d := utils.HaversineDistance(depot, v.AssignedDelivery.Location)
			if d > maxServed {
				maxServed = d
			}
		}
		served := make(map[string]bool)
		for _, v := range vehicles {
			served[v.AssignedDelivery.Name] = true
		}
		for _, p := range points {
			if !served[p.Name] {
				assert.GreaterOrEqual(t, utils.HaversineDistance(depot, p.Location), maxServed-1e-9)
			}
		}
	})

	t.Run("oversized fleet shares points round robin", func(t *testing.T) {
		uc := newTestFleetUC(&mockRoutingRepo{}, 1)
		points := testDeliveryRing(depot, 3)

		vehicles, report, err := uc.Allocate(context.Background(), depot, points, FleetCounts{
			Drones:         3,
			ElectricTrucks: 2,
			FuelTrucks:     2,
		})
		require.NoError(t, err)
		require.Len(t, vehicles, 7)

		assert.Equal(t, 3, report.CoveredPoints)
		assert.Equal(t, 100.0, report.CoveragePercent)

		// 7 слотов на 3 точки: каждая точка получает 2 или 3 машины
		perPoint := make(map[string]int)
		for _, v := range vehicles {
			perPoint[v.AssignedDelivery.Name]++
		}
		require.Len(t, perPoint, 3)
		for name, n := range perPoint {
			assert.GreaterOrEqual(t, n, 2, "point %s", name)
			assert.LessOrEqual(t, n, 3, "point %s", name)
		}
	})

	t.Run("speeds and weights match type specs", func(t *testing.T) {
		uc := newTestFleetUC(&mockRoutingRepo{}, 1)
		points := testDeliveryRing(depot, 6)

		vehicles, _, err := uc.Allocate(context.Background(), depot, points, FleetCounts{
			Drones:         2,
			ElectricTrucks: 2,
			FuelTrucks:     2,
		})
		require.NoError(t, err)

		specs := domain.DefaultVehicleSpecs()
		for _, v := range vehicles {
			spec := specs[v.Type]
			assert.Equal(t, spec.SpeedKmh, v.SpeedKmh, v.Name)
			assert.GreaterOrEqual(t, v.WeightKg, spec.MinWeightKg, v.Name)
			assert.LessOrEqual(t, v.WeightKg, spec.MaxWeightKg, v.Name)
		}
	})

	t.Run("vehicles start at depot with valid round trips", func(t *testing.T) {
		uc := newTestFleetUC(&mockRoutingRepo{}, 1)
		points := testDeliveryRing(depot, 4)

		vehicles, _, err := uc.Allocate(context.Background(), depot, points, FleetCounts{
			Drones:     2,
			FuelTrucks: 2,
		})
		require.NoError(t, err)

		for _, v := range vehicles {
			assert.Equal(t, depot, v.Position, v.Name)
			assert.Equal(t, 0, v.RouteIndex)
			assert.Equal(t, 0.0, v.Progress)

			ok, reason := uc.routeUC.ValidateRoundTrip(v.Route, depot, v.AssignedDelivery.Location)
			assert.True(t, ok, "%s: %s", v.Name, reason)
		}
	})

	// Генератор точек и аллокатор работают из разных HTTP-запросов
	// одновременно; у каждого use case свой экземпляр rand.Rand, как в
	// проводке main, и общих источников случайности быть не должно
	t.Run("concurrent generation and allocation", func(t *testing.T) {
		deliveryUC := newTestDeliveryUC(11)
		fleetUC := newTestFleetUC(&mockRoutingRepo{}, 12)
		points := testDeliveryRing(depot, 6)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := deliveryUC.Generate(depot, 10)
				assert.NoError(t, err)
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := fleetUC.Allocate(context.Background(), depot, points, FleetCounts{
					Drones:     2,
					FuelTrucks: 2,
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
	})

	t.Run("routing outage never shrinks the fleet", func(t *testing.T) {
		uc := newTestFleetUC(&mockRoutingRepo{err: errors.New("osrm down")}, 1)
		points := testDeliveryRing(depot, 4)

		vehicles, report, err := uc.Allocate(context.Background(), depot, points, FleetCounts{
			ElectricTrucks: 2,
			FuelTrucks:     2,
		})
		require.NoError(t, err)

		assert.Len(t, vehicles, 4)
		assert.Equal(t, 4, report.CreatedVehicles)
		for _, v := range vehicles {
			assert.GreaterOrEqual(t, len(v.Route), 3, v.Name)
		}
	})
}
