package domain

import "math"

// EndpointTolerance - допуск совпадения координат конечных точек маршрута (~11 см)
const EndpointTolerance = 0.0001

// Coordinate - географическая точка (WGS84, десятичные градусы)
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Equals проверяет совпадение координат в пределах допуска
func (c Coordinate) Equals(other Coordinate) bool {
	return math.Abs(c.Lat-other.Lat) <= EndpointTolerance &&
		math.Abs(c.Lon-other.Lon) <= EndpointTolerance
}

// Route - упорядоченная последовательность путевых точек кругового рейса:
// депо -> (точки) -> точка доставки -> (точки) -> депо
type Route []Coordinate

// RouteKey - квантованный ключ кэша маршрутов. Координаты округляются
// до 4 знаков (~11 м), чтобы близкие запросы попадали в одну запись.
type RouteKey struct {
	StartLat float64
	StartLon float64
	EndLat   float64
	EndLon   float64
	Aerial   bool
}

// NewRouteKey создает ключ кэша для пары координат и класса транспорта
func NewRouteKey(start, end Coordinate, aerial bool) RouteKey {
	return RouteKey{
		StartLat: roundCoord(start.Lat),
		StartLon: roundCoord(start.Lon),
		EndLat:   roundCoord(end.Lat),
		EndLon:   roundCoord(end.Lon),
		Aerial:   aerial,
	}
}

func roundCoord(v float64) float64 {
	return math.Round(v*10000) / 10000
}
