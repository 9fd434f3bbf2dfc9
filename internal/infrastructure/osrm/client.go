package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fleet-simulator/internal/config"
	"github.com/fleet-simulator/internal/domain"
	"github.com/fleet-simulator/internal/domain/repository"
	"go.uber.org/zap"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	profile    string
	logger     *zap.Logger
}

// routeResponse - ответ OSRM route API в формате geojson
type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			// Координаты в порядке [lon, lat]
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// NewClient создает новый клиент для OSRM route API
func NewClient(cfg *config.RoutingConfig, logger *zap.Logger) repository.RoutingRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.BaseURL,
		profile: cfg.Profile,
		logger:  logger,
	}
}

// GetRoute возвращает дорожную геометрию между двумя точками.
// Любая ошибка (таймаут, не-200 ответ, пустой или битый payload)
// возвращается вызывающей стороне; та обязана уйти в фолбэк.
func (c *client) GetRoute(ctx context.Context, start, end domain.Coordinate) ([]domain.Coordinate, error) {
	url := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=simplified&geometries=geojson&steps=false",
		c.baseURL,
		c.profile,
		start.Lon, start.Lat,
		end.Lon, end.Lat,
	)

	c.logger.Debug("Calling OSRM route API",
		zap.Float64("start_lat", start.Lat),
		zap.Float64("start_lon", start.Lon),
		zap.Float64("end_lat", end.Lat),
		zap.Float64("end_lon", end.Lon))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("OSRM API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("osrm API error: status %d", resp.StatusCode)
	}

	var routeResp routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&routeResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if routeResp.Code != "Ok" {
		return nil, fmt.Errorf("osrm API returned code: %s", routeResp.Code)
	}

	if len(routeResp.Routes) == 0 || len(routeResp.Routes[0].Geometry.Coordinates) == 0 {
		return nil, fmt.Errorf("osrm API returned empty route")
	}

	coords := routeResp.Routes[0].Geometry.Coordinates
	points := make([]domain.Coordinate, 0, len(coords))
	for _, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("osrm API returned malformed coordinate")
		}
		points = append(points, domain.Coordinate{Lat: coord[1], Lon: coord[0]})
	}

	c.logger.Debug("OSRM route API call successful",
		zap.Int("points", len(points)))

	return points, nil
}
