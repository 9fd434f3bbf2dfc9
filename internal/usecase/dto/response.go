package dto

import "github.com/fleet-simulator/internal/domain"

// AllocationReport - итог распределения флота по точкам доставки
type AllocationReport struct {
	RequestedVehicles int     `json:"requested_vehicles"`
	CreatedVehicles   int     `json:"created_vehicles"`
	CoveredPoints     int     `json:"covered_points"`
	TotalPoints       int     `json:"total_points"`
	CoveragePercent   float64 `json:"coverage_percent"`
	FallbackRoutes    int     `json:"fallback_routes"`
}

// AllocateFleetResponse - созданный флот с полными маршрутами.
// Маршруты отдаются один раз при аллокации для отрисовки пути;
// дальнейшие обновления позиций идут через статусы.
type AllocateFleetResponse struct {
	WaveID   string                     `json:"wave_id"`
	Vehicles map[string]*domain.Vehicle `json:"vehicles"`
	Report   AllocationReport           `json:"report"`
}

// GenerateDeliveryPointsResponse - сгенерированные точки со сводкой
type GenerateDeliveryPointsResponse struct {
	Points  []*domain.DeliveryPoint `json:"points"`
	Summary domain.DeliverySummary  `json:"summary"`
}

// SimulationStatusResponse - состояние цикла симуляции
type SimulationStatusResponse struct {
	WaveID         string `json:"wave_id"`
	Running        bool   `json:"running"`
	Paused         bool   `json:"paused"`
	TotalVehicles  int    `json:"total_vehicles"`
	ActiveVehicles int    `json:"active_vehicles"`
	CycleComplete  bool   `json:"cycle_complete"`
}

// VehiclePositionsResponse - позиции транспорта на текущем тике
type VehiclePositionsResponse struct {
	Vehicles []domain.VehicleStatus `json:"vehicles"`
}
