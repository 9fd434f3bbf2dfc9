package cache

import (
	"sync"

	"github.com/fleet-simulator/internal/domain"
	"github.com/fleet-simulator/internal/domain/repository"
	"go.uber.org/zap"
)

// routeCache - процессный кэш исходящих плеч маршрутов с вытеснением
// самых старых записей. Явно внедряется в построитель маршрутов, чтобы
// тесты могли изолировать состояние кэша между запусками.
type routeCache struct {
	mu         sync.Mutex
	entries    map[domain.RouteKey]domain.Route
	order      []domain.RouteKey
	inflight   map[domain.RouteKey]chan struct{}
	maxEntries int
	logger     *zap.Logger
}

// NewRouteCache создает кэш маршрутов с ограничением maxEntries записей
func NewRouteCache(maxEntries int, logger *zap.Logger) repository.RouteCacheRepository {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &routeCache{
		entries:    make(map[domain.RouteKey]domain.Route),
		inflight:   make(map[domain.RouteKey]chan struct{}),
		maxEntries: maxEntries,
		logger:     logger,
	}
}

// GetOrCompute возвращает закэшированное плечо либо вычисляет его.
// Конкурентные запросы одного ключа ждут первое вычисление вместо
// повторного обращения к внешнему сервису.
func (c *routeCache) GetOrCompute(key domain.RouteKey, compute func() domain.Route) domain.Route {
	for {
		c.mu.Lock()
		if leg, ok := c.entries[key]; ok {
			c.mu.Unlock()
			return leg
		}

		if done, ok := c.inflight[key]; ok {
			c.mu.Unlock()
			<-done
			// Запись могла быть вытеснена между close и повторной
			// проверкой; в этом случае пересчитываем заново.
			continue
		}

		done := make(chan struct{})
		c.inflight[key] = done
		c.mu.Unlock()

		leg := compute()

		c.mu.Lock()
		c.store(key, leg)
		delete(c.inflight, key)
		close(done)
		c.mu.Unlock()

		return leg
	}
}

func (c *routeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// store добавляет запись, вытесняя самую старую при переполнении.
// Вызывается под c.mu.
func (c *routeCache) store(key domain.RouteKey, leg domain.Route) {
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = leg

	for len(c.entries) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.logger.Debug("Route cache entry evicted",
			zap.Float64("start_lat", oldest.StartLat),
			zap.Float64("start_lon", oldest.StartLon),
			zap.Bool("aerial", oldest.Aerial))
	}
}
