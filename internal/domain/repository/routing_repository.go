package repository

import (
	"context"

	"github.com/fleet-simulator/internal/domain"
)

// RoutingRepository - внешний сервис дорожной маршрутизации.
// Возвращает упорядоченную последовательность координат вдоль дорожной
// сети между двумя точками либо ошибку; вызывающая сторона обязана
// обрабатывать ошибку детерминированным фолбэком.
type RoutingRepository interface {
	GetRoute(ctx context.Context, start, end domain.Coordinate) ([]domain.Coordinate, error)
}
