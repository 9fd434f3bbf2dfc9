package repository

import "github.com/fleet-simulator/internal/domain"

// RouteCacheRepository - процессный кэш исходящих плеч маршрутов.
// Должен быть безопасен для конкурентного доступа из воркеров аллокации:
// проверка и вычисление по одному ключу не должны дублировать обращение
// к внешнему сервису.
type RouteCacheRepository interface {
	// GetOrCompute возвращает закэшированное плечо либо вычисляет и
	// сохраняет его. Для одного ключа compute выполняется не более
	// одного раза одновременно.
	GetOrCompute(key domain.RouteKey, compute func() domain.Route) domain.Route

	// Len возвращает текущее число записей
	Len() int
}
