package domain

// VehicleType - тип транспортного средства
type VehicleType string

const (
	VehicleDrone         VehicleType = "Drone"
	VehicleElectricTruck VehicleType = "Electric Truck"
	VehicleFuelTruck     VehicleType = "Fuel Truck"
)

// IsAerial сообщает, строится ли маршрут по прямой, минуя дорожную сеть
func (t VehicleType) IsAerial() bool {
	return t == VehicleDrone
}

// VehicleSpec - номинальная скорость и диапазон полезной нагрузки типа
type VehicleSpec struct {
	SpeedKmh    float64
	MinWeightKg float64
	MaxWeightKg float64
}

// DefaultVehicleSpecs - характеристики флота по умолчанию
func DefaultVehicleSpecs() map[VehicleType]VehicleSpec {
	return map[VehicleType]VehicleSpec{
		VehicleDrone:         {SpeedKmh: 60, MinWeightKg: 1, MaxWeightKg: 5},
		VehicleElectricTruck: {SpeedKmh: 40, MinWeightKg: 200, MaxWeightKg: 500},
		VehicleFuelTruck:     {SpeedKmh: 35, MinWeightKg: 300, MaxWeightKg: 700},
	}
}

// Статусы транспортного средства, отдаваемые наружному рендереру
const (
	StatusMoving    = "Moving"
	StatusStopped   = "Stopped"
	StatusDelivered = "Delivered"
)

// Vehicle - симулируемое транспортное средство одного цикла доставки.
// Позиция и прогресс мутируются симулятором на каждом тике.
type Vehicle struct {
	Name             string         `json:"name"`
	Type             VehicleType    `json:"type"`
	Position         Coordinate     `json:"pos"`
	Route            Route          `json:"route"`
	RouteIndex       int            `json:"route_index"`
	Progress         float64        `json:"progress"`
	SpeedKmh         float64        `json:"speed"`
	WeightKg         float64        `json:"weight"`
	AssignedDelivery *DeliveryPoint `json:"assigned_delivery"`
}

// Completed сообщает, вернулось ли транспортное средство в депо.
// Инвариант: RouteIndex всегда в пределах [0, len(Route)-1].
func (v *Vehicle) Completed() bool {
	return v.RouteIndex >= len(v.Route)-1
}

// VehicleStatus - наблюдаемое состояние для внешнего слоя отображения
type VehicleStatus struct {
	Name     string      `json:"name"`
	Type     VehicleType `json:"type"`
	Position Coordinate  `json:"pos"`
	Status   string      `json:"status"`
	SpeedKmh float64     `json:"speed"`
	WeightKg float64     `json:"weight"`
}
