package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fleet-simulator/internal/domain"
	"github.com/fleet-simulator/internal/usecase"
	"github.com/fleet-simulator/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingTelemetryRepo собирает опубликованные кадры телеметрии
type recordingTelemetryRepo struct {
	mu     sync.Mutex
	waves  []string
	frames [][]domain.VehicleStatus
}

func (r *recordingTelemetryRepo) PublishPositions(_ context.Context, waveID string, statuses []domain.VehicleStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waves = append(r.waves, waveID)
	r.frames = append(r.frames, statuses)
	return nil
}

func (r *recordingTelemetryRepo) frameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// recordingWaveRepo собирает сохраненные сводки волн
type recordingWaveRepo struct {
	mu        sync.Mutex
	summaries []*domain.WaveSummary
}

func (r *recordingWaveRepo) SaveSummary(_ context.Context, summary *domain.WaveSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, summary)
	return nil
}

func (r *recordingWaveRepo) ListRecent(_ context.Context, _ int) ([]*domain.WaveSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaries, nil
}

func (r *recordingWaveRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.summaries)
}

// newSimUCWithShortRoute готовит симуляцию с маршрутом из совпадающих
// точек: каждая тик-итерация схлопывает один вырожденный сегмент, и
// цикл завершается за два тика
func newSimUCWithShortRoute() *usecase.SimulationUseCase {
	depot := domain.Coordinate{Lat: 12.85, Lon: 74.92}
	v := &domain.Vehicle{
		Name:     "Drone 1",
		Type:     domain.VehicleDrone,
		Position: depot,
		Route:    domain.Route{depot, depot, depot},
		SpeedKmh: 60,
	}

	uc := usecase.NewSimulationUseCase(zap.NewNop())
	uc.SetFleet("wave-worker-test", depot, map[string]*domain.Vehicle{v.Name: v}, 1, 100)
	return uc
}

func TestSimulationWorker_Name(t *testing.T) {
	w := worker.NewSimulationWorker(
		usecase.NewSimulationUseCase(zap.NewNop()),
		nil, nil, time.Millisecond, time.Second, false, zap.NewNop(),
	)
	assert.Equal(t, "simulation", w.Name())
}

func TestSimulationWorker_PublishesTelemetry(t *testing.T) {
	simUC := newSimUCWithShortRoute()
	telemetry := &recordingTelemetryRepo{}

	w := worker.NewSimulationWorker(
		simUC, telemetry, nil,
		5*time.Millisecond, time.Second, false, zap.NewNop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return telemetry.frameCount() >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Stop())
	<-done

	telemetry.mu.Lock()
	defer telemetry.mu.Unlock()
	assert.Equal(t, "wave-worker-test", telemetry.waves[0])
	require.NotEmpty(t, telemetry.frames[0])
	assert.Equal(t, "Drone 1", telemetry.frames[0][0].Name)
}

func TestSimulationWorker_SavesWaveSummaryOnce(t *testing.T) {
	simUC := newSimUCWithShortRoute()
	waves := &recordingWaveRepo{}

	w := worker.NewSimulationWorker(
		simUC, nil, waves,
		5*time.Millisecond, time.Hour, false, zap.NewNop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return waves.count() == 1
	}, time.Second, 5*time.Millisecond)

	// Дополнительные тики не генерируют повторных сводок
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, waves.count())

	require.NoError(t, w.Stop())
	<-done

	waves.mu.Lock()
	defer waves.mu.Unlock()
	assert.Equal(t, "wave-worker-test", waves.summaries[0].WaveID)
	assert.Equal(t, 1, waves.summaries[0].VehicleCount)
}

func TestSimulationWorker_AutoRestart(t *testing.T) {
	simUC := newSimUCWithShortRoute()

	w := worker.NewSimulationWorker(
		simUC, nil, nil,
		5*time.Millisecond, 10*time.Millisecond, true, zap.NewNop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Start(ctx)
	}()

	// Цикл завершается, а затем перезапускается после паузы
	require.Eventually(t, func() bool {
		return simUC.Status().CycleComplete
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return !simUC.Status().CycleComplete
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Stop())
	<-done
}

func TestSimulationWorker_StopsOnContextCancel(t *testing.T) {
	w := worker.NewSimulationWorker(
		usecase.NewSimulationUseCase(zap.NewNop()),
		nil, nil, 5*time.Millisecond, time.Second, false, zap.NewNop(),
	)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}
