package dto

// Point - координаты точки
type Point struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

// FleetCountsRequest - количество транспорта каждого типа
type FleetCountsRequest struct {
	Drones         int `json:"drones" validate:"min=0,max=100"`
	ElectricTrucks int `json:"electric_trucks" validate:"min=0,max=50"`
	FuelTrucks     int `json:"fuel_trucks" validate:"min=0,max=50"`
}

// Total возвращает суммарный размер флота
func (r FleetCountsRequest) Total() int {
	return r.Drones + r.ElectricTrucks + r.FuelTrucks
}

// AllocateFleetRequest - запрос на создание флота и построение маршрутов.
// Точки доставки генерируются вокруг депо по customer_count.
type AllocateFleetRequest struct {
	Depot         Point              `json:"depot" validate:"required"`
	CustomerCount int                `json:"customer_count" validate:"required,min=1,max=999"`
	Counts        FleetCountsRequest `json:"counts" validate:"required"`
}

// GenerateDeliveryPointsRequest - запрос на генерацию точек доставки
type GenerateDeliveryPointsRequest struct {
	Depot Point `json:"depot" validate:"required"`
	Count int   `json:"count" validate:"min=0,max=999"`
}

// WaveHistoryRequest - запрос истории завершенных волн
type WaveHistoryRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=100"`
}
