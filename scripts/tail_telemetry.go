//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type vehicleStatus struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Status   string  `json:"status"`
	SpeedKmh float64 `json:"speed"`
	Position struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"pos"`
}

type telemetryFrame struct {
	WaveID    string          `json:"wave_id"`
	Timestamp time.Time       `json:"ts"`
	Vehicles  []vehicleStatus `json:"vehicles"`
}

// Утилита для отладки: хвостом читает стрим телеметрии и печатает
// позиции флота. go run scripts/tail_telemetry.go -redis localhost:6379
func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	stream := flag.String("stream", "fleet:telemetry", "Telemetry stream name")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	fmt.Printf("Tailing %s on %s...\n", *stream, *redisAddr)

	lastID := "$"
	for {
		streams, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{*stream, lastID},
			Count:   10,
			Block:   5 * time.Second,
		}).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			log.Fatalf("Failed to read stream: %v", err)
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				lastID = msg.ID

				payload, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}

				var frame telemetryFrame
				if err := json.Unmarshal([]byte(payload), &frame); err != nil {
					log.Printf("Skipping malformed frame %s: %v", msg.ID, err)
					continue
				}

				fmt.Printf("[%s] wave=%s vehicles=%d\n",
					frame.Timestamp.Format(time.TimeOnly), frame.WaveID, len(frame.Vehicles))
				for _, v := range frame.Vehicles {
					fmt.Printf("  %-16s %-9s %5.1f km/h  (%.5f, %.5f)\n",
						v.Name, v.Status, v.SpeedKmh, v.Position.Lat, v.Position.Lon)
				}
			}
		}
	}
}
