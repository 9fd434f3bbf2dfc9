package utils

import (
	"math"

	"github.com/fleet-simulator/internal/domain"
)

const (
	earthRadiusKm = 6371.0

	// kmPerDegree - длина одного градуса широты в километрах
	kmPerDegree = 111.32
)

// HaversineDistance вычисляет расстояние по дуге большого круга между
// двумя точками в километрах. Для совпадающих точек возвращает 0.
func HaversineDistance(a, b domain.Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLon := (b.Lon - a.Lon) * math.Pi / 180.0

	lat1Rad := a.Lat * math.Pi / 180.0
	lat2Rad := b.Lat * math.Pi / 180.0

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// OffsetCoordinate смещает точку на distanceKm в направлении bearingDeg
// (по часовой стрелке от севера) в эквидистантном приближении. Для
// масштабов в десятки километров приближение достаточно; геодезическая
// точность здесь не требуется.
func OffsetCoordinate(origin domain.Coordinate, bearingDeg, distanceKm float64) domain.Coordinate {
	bearingRad := bearingDeg * math.Pi / 180.0

	latOffset := (distanceKm / kmPerDegree) * math.Cos(bearingRad)
	lonOffset := (distanceKm / (kmPerDegree * math.Cos(origin.Lat*math.Pi/180.0))) * math.Sin(bearingRad)

	return domain.Coordinate{
		Lat: origin.Lat + latOffset,
		Lon: origin.Lon + lonOffset,
	}
}

// InterpolateCoordinate возвращает точку на доле t отрезка [a, b]
func InterpolateCoordinate(a, b domain.Coordinate, t float64) domain.Coordinate {
	return domain.Coordinate{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lon: a.Lon + (b.Lon-a.Lon)*t,
	}
}
