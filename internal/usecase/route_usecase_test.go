package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fleet-simulator/internal/domain"
	"github.com/fleet-simulator/internal/pkg/utils"
	"github.com/fleet-simulator/internal/repository/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockRoutingRepo считает обращения к внешнему сервису маршрутизации
type mockRoutingRepo struct {
	mu     sync.Mutex
	calls  int
	points []domain.Coordinate
	err    error
}

func (m *mockRoutingRepo) GetRoute(_ context.Context, start, end domain.Coordinate) ([]domain.Coordinate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.points != nil {
		return m.points, nil
	}
	// Геометрия по умолчанию: прямая из 25 точек
	points := make([]domain.Coordinate, 25)
	for i := range points {
		t := float64(i) / 24.0
		points[i] = utils.InterpolateCoordinate(start, end, t)
	}
	return points, nil
}

func (m *mockRoutingRepo) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestRouteUC(repo *mockRoutingRepo) *RouteUseCase {
	logger := zap.NewNop()
	return NewRouteUseCase(repo, cache.NewRouteCache(100, logger), logger, 10)
}

func TestRouteUseCase_BuildRoundTrip(t *testing.T) {
	depot := domain.Coordinate{Lat: 12.85, Lon: 74.92}
	delivery := domain.Coordinate{Lat: 13.00, Lon: 75.10}

	t.Run("ground route uses road geometry", func(t *testing.T) {
		repo := &mockRoutingRepo{}
		uc := newTestRouteUC(repo)

		route := uc.BuildRoundTrip(context.Background(), depot, delivery, false)

		ok, reason := uc.ValidateRoundTrip(route, depot, delivery)
		assert.True(t, ok, reason)
		assert.Equal(t, depot, route[0])
		assert.Equal(t, depot, route[len(route)-1])
		assert.Equal(t, 1, repo.callCount())
	})

	t.Run("downsample caps route size", func(t *testing.T) {
		repo := &mockRoutingRepo{}
		uc := newTestRouteUC(repo)

		route := uc.BuildRoundTrip(context.Background(), depot, delivery, false)

		// 25 исходных точек с шагом 3 дают 9 на плечо, круговой
		// маршрут вдвое длиннее без дублирования точки доставки
		assert.Equal(t, 17, len(route))
	})

	t.Run("downsample holds the cap on dense geometry", func(t *testing.T) {
		dense := make([]domain.Coordinate, 450)
		for i := range dense {
			dense[i] = utils.InterpolateCoordinate(depot, delivery, float64(i)/449.0)
		}
		repo := &mockRoutingRepo{points: dense}
		uc := newTestRouteUC(repo)

		route := uc.BuildRoundTrip(context.Background(), depot, delivery, false)

		// Плечо не длиннее лимита плюс добавленная конечная точка
		assert.LessOrEqual(t, len(route), 2*(10+1)-1)
		ok, reason := uc.ValidateRoundTrip(route, depot, delivery)
		assert.True(t, ok, reason)
	})

	t.Run("aerial route is interpolated line", func(t *testing.T) {
		repo := &mockRoutingRepo{}
		uc := newTestRouteUC(repo)

		route := uc.BuildRoundTrip(context.Background(), depot, delivery, true)

		ok, reason := uc.ValidateRoundTrip(route, depot, delivery)
		assert.True(t, ok, reason)
		// Полет не обращается к дорожному сервису
		assert.Equal(t, 0, repo.callCount())

		// Все точки лежат на отрезке депо-доставка
		for _, p := range route {
			assert.GreaterOrEqual(t, p.Lat, depot.Lat-1e-9)
			assert.LessOrEqual(t, p.Lat, delivery.Lat+1e-9)
		}
	})

	t.Run("aerial point count scales with distance", func(t *testing.T) {
		repo := &mockRoutingRepo{}
		uc := newTestRouteUC(repo)

		near := domain.Coordinate{Lat: 12.86, Lon: 74.93}
		far := domain.Coordinate{Lat: 13.30, Lon: 75.40}

		nearRoute := uc.BuildRoundTrip(context.Background(), depot, near, true)
		farRoute := uc.BuildRoundTrip(context.Background(), depot, far, true)

		assert.Less(t, len(nearRoute), len(farRoute))
		// Нижняя и верхняя границы плеча: 2 и 8 точек
		assert.GreaterOrEqual(t, len(nearRoute), 2*2-1)
		assert.LessOrEqual(t, len(farRoute), 2*8-1)
	})

	t.Run("routing failure falls back to interpolation", func(t *testing.T) {
		repo := &mockRoutingRepo{err: errors.New("connection refused")}
		uc := newTestRouteUC(repo)

		route := uc.BuildRoundTrip(context.Background(), depot, delivery, false)

		ok, reason := uc.ValidateRoundTrip(route, depot, delivery)
		assert.True(t, ok, reason)
		// Дистанция ~26 км: 3 сегмента, 4 точки на плечо, 7 в круге
		assert.Equal(t, 7, len(route))
	})

	t.Run("degenerate geometry falls back to interpolation", func(t *testing.T) {
		repo := &mockRoutingRepo{points: []domain.Coordinate{depot}}
		uc := newTestRouteUC(repo)

		route := uc.BuildRoundTrip(context.Background(), depot, delivery, false)

		ok, reason := uc.ValidateRoundTrip(route, depot, delivery)
		assert.True(t, ok, reason)
	})

	t.Run("fallback segment count by distance", func(t *testing.T) {
		repo := &mockRoutingRepo{err: errors.New("down")}
		uc := newTestRouteUC(repo)

		cases := []struct {
			name     string
			delivery domain.Coordinate
			points   int
		}{
			{"short hop", domain.Coordinate{Lat: 12.90, Lon: 74.92}, 2*3 - 1},
			{"medium hop", domain.Coordinate{Lat: 13.00, Lon: 75.10}, 2*4 - 1},
			{"long hop", domain.Coordinate{Lat: 13.60, Lon: 75.60}, 2*6 - 1},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				route := uc.BuildRoundTrip(context.Background(), depot, tc.delivery, false)
				assert.Equal(t, tc.points, len(route))
			})
		}
	})

	t.Run("repeated builds hit the cache", func(t *testing.T) {
		repo := &mockRoutingRepo{}
		uc := newTestRouteUC(repo)

		first := uc.BuildRoundTrip(context.Background(), depot, delivery, false)
		second := uc.BuildRoundTrip(context.Background(), depot, delivery, false)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, repo.callCount())
	})

	t.Run("nearby coordinates share a cache entry", func(t *testing.T) {
		repo := &mockRoutingRepo{}
		uc := newTestRouteUC(repo)

		// Отличие в пятом знаке схлопывается квантованием ключа
		uc.BuildRoundTrip(context.Background(), depot, delivery, false)
		uc.BuildRoundTrip(context.Background(), depot, domain.Coordinate{
			Lat: delivery.Lat + 0.00001,
			Lon: delivery.Lon,
		}, false)

		assert.Equal(t, 1, repo.callCount())
	})

	t.Run("aerial and ground routes cached separately", func(t *testing.T) {
		repo := &mockRoutingRepo{}
		uc := newTestRouteUC(repo)

		ground := uc.BuildRoundTrip(context.Background(), depot, delivery, false)
		air := uc.BuildRoundTrip(context.Background(), depot, delivery, true)

		assert.NotEqual(t, ground, air)
		assert.Equal(t, 1, repo.callCount())
	})
}

func TestRouteUseCase_ValidateRoundTrip(t *testing.T) {
	depot := domain.Coordinate{Lat: 12.85, Lon: 74.92}
	delivery := domain.Coordinate{Lat: 13.00, Lon: 75.10}
	uc := newTestRouteUC(&mockRoutingRepo{})

	t.Run("valid route", func(t *testing.T) {
		route := domain.Route{depot, delivery, depot}
		ok, reason := uc.ValidateRoundTrip(route, depot, delivery)
		assert.True(t, ok)
		assert.Empty(t, reason)
	})

	t.Run("too short", func(t *testing.T) {
		ok, reason := uc.ValidateRoundTrip(domain.Route{depot, depot}, depot, delivery)
		assert.False(t, ok)
		assert.Contains(t, reason, "too short")
	})

	t.Run("wrong endpoints", func(t *testing.T) {
		route := domain.Route{delivery, depot, delivery}
		ok, _ := uc.ValidateRoundTrip(route, depot, delivery)
		assert.False(t, ok)
	})

	t.Run("delivery visited twice", func(t *testing.T) {
		route := domain.Route{depot, delivery, delivery, depot}
		ok, reason := uc.ValidateRoundTrip(route, depot, delivery)
		require.False(t, ok)
		assert.Contains(t, reason, "visited 2 times")
	})
}
