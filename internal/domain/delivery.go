package domain

import "time"

// DeliveryPoint - сгенерированная точка доставки вокруг депо.
// Неизменяема после генерации; пересоздается при смене депо или
// количества клиентов.
type DeliveryPoint struct {
	Name       string     `json:"name"`
	Address    string     `json:"address"`
	Location   Coordinate `json:"location"`
	WeightKg   float64    `json:"weight"`
	DistanceKm float64    `json:"distance"`
}

// DeliverySummary - сводка по набору точек доставки для инфо-панели
type DeliverySummary struct {
	TotalPoints     int     `json:"total_points"`
	TotalWeightKg   float64 `json:"total_weight"`
	TotalDistanceKm float64 `json:"total_distance"`
}

// WaveSummary - итог завершенного цикла доставки (волны)
type WaveSummary struct {
	WaveID          string     `json:"wave_id" db:"wave_id"`
	Depot           Coordinate `json:"depot" db:"-"`
	DepotLat        float64    `json:"-" db:"depot_lat"`
	DepotLon        float64    `json:"-" db:"depot_lon"`
	VehicleCount    int        `json:"vehicle_count" db:"vehicle_count"`
	DeliveryCount   int        `json:"delivery_count" db:"delivery_count"`
	CoveragePercent float64    `json:"coverage_percent" db:"coverage_percent"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	CompletedAt     time.Time  `json:"completed_at" db:"completed_at"`
}
