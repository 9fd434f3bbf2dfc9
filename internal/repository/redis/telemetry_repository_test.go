package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleet-simulator/internal/domain"
	redisRepo "github.com/fleet-simulator/internal/repository/redis"
)

const testStream = "test:fleet:telemetry"

// getTestRedisClient creates a Redis client for testing
func getTestRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     "localhost:6379",
		Password: "",
		DB:       1, // Use DB 1 for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	client.Del(ctx, testStream)

	return client
}

func TestTelemetryRepository_PublishPositions(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	defer client.Del(ctx, testStream)

	repo := redisRepo.NewTelemetryRepository(client, testStream, zap.NewNop())

	statuses := []domain.VehicleStatus{
		{
			Name:     "Drone 1",
			Type:     domain.VehicleDrone,
			Position: domain.Coordinate{Lat: 12.85, Lon: 74.92},
			Status:   domain.StatusMoving,
			SpeedKmh: 60,
			WeightKg: 3.2,
		},
		{
			Name:     "Fuel Truck 1",
			Type:     domain.VehicleFuelTruck,
			Position: domain.Coordinate{Lat: 12.90, Lon: 74.95},
			Status:   domain.StatusDelivered,
			SpeedKmh: 0,
			WeightKg: 450,
		},
	}

	err := repo.PublishPositions(ctx, "wave-redis-test", statuses)
	require.NoError(t, err)

	// Кадр читается обратно из стрима и декодируется
	messages, err := client.XRange(ctx, testStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)

	payload, ok := messages[0].Values["data"].(string)
	require.True(t, ok)

	var frame struct {
		WaveID   string                 `json:"wave_id"`
		Vehicles []domain.VehicleStatus `json:"vehicles"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload), &frame))

	assert.Equal(t, "wave-redis-test", frame.WaveID)
	require.Len(t, frame.Vehicles, 2)
	assert.Equal(t, "Drone 1", frame.Vehicles[0].Name)
	assert.Equal(t, domain.StatusDelivered, frame.Vehicles[1].Status)
}

func TestTelemetryRepository_SequentialFrames(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	defer client.Del(ctx, testStream)

	repo := redisRepo.NewTelemetryRepository(client, testStream, zap.NewNop())

	for i := 0; i < 5; i++ {
		err := repo.PublishPositions(ctx, "wave-redis-test", []domain.VehicleStatus{
			{Name: "Drone 1", Type: domain.VehicleDrone, Status: domain.StatusMoving},
		})
		require.NoError(t, err)
	}

	length, err := client.XLen(ctx, testStream).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(5), length)
}
