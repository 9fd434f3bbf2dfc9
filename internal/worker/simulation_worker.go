package worker

import (
	"context"
	"sync"
	"time"

	"github.com/fleet-simulator/internal/domain/repository"
	"github.com/fleet-simulator/internal/usecase"
	"go.uber.org/zap"
)

// SimulationWorker гонит цикл движения флота на фиксированном
// интервале. Сам тик - чистое вычисление; публикация телеметрии и
// запись истории волн выполняются здесь, за пределами тика.
type SimulationWorker struct {
	*BaseWorker
	simUC         *usecase.SimulationUseCase
	telemetryRepo repository.TelemetryRepository
	waveRepo      repository.WaveRepository
	interval      time.Duration
	wavePause     time.Duration
	autoRestart   bool

	mu             sync.Mutex
	restartPending *time.Timer
}

// NewSimulationWorker создает воркер цикла движения. telemetryRepo и
// waveRepo опциональны: nil отключает публикацию и историю.
func NewSimulationWorker(
	simUC *usecase.SimulationUseCase,
	telemetryRepo repository.TelemetryRepository,
	waveRepo repository.WaveRepository,
	interval time.Duration,
	wavePause time.Duration,
	autoRestart bool,
	logger *zap.Logger,
) *SimulationWorker {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &SimulationWorker{
		BaseWorker:    NewBaseWorker("simulation", logger),
		simUC:         simUC,
		telemetryRepo: telemetryRepo,
		waveRepo:      waveRepo,
		interval:      interval,
		wavePause:     wavePause,
		autoRestart:   autoRestart,
	}
}

// Start запускает цикл тиков до остановки воркера или отмены контекста
func (w *SimulationWorker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Logger().Info("Simulation worker started",
		zap.Duration("tick_interval", w.interval),
		zap.Bool("auto_restart", w.autoRestart))

	for {
		select {
		case <-ctx.Done():
			w.cancelPendingRestart()
			return nil
		case <-w.StopChan():
			w.cancelPendingRestart()
			return nil
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// tick продвигает симуляцию на один шаг и разносит побочные эффекты
func (w *SimulationWorker) tick(ctx context.Context) {
	statuses, cycleCompleted := w.simUC.Tick(w.interval)

	if len(statuses) > 0 && w.telemetryRepo != nil {
		if err := w.telemetryRepo.PublishPositions(ctx, w.simUC.WaveID(), statuses); err != nil {
			w.Logger().Warn("Failed to publish telemetry", zap.Error(err))
		}
	}

	if !cycleCompleted {
		return
	}

	if w.waveRepo != nil {
		summary := w.simUC.BuildWaveSummary()
		if err := w.waveRepo.SaveSummary(ctx, summary); err != nil {
			w.Logger().Error("Failed to save wave summary",
				zap.String("wave_id", summary.WaveID),
				zap.Error(err))
		}
	}

	if w.autoRestart {
		w.scheduleRestart()
	}
}

// scheduleRestart перезапускает волну с начала маршрутов после паузы,
// без перестроения маршрутов и переаллокации
func (w *SimulationWorker) scheduleRestart() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.restartPending != nil {
		return
	}

	w.Logger().Info("Scheduling wave restart",
		zap.Duration("pause", w.wavePause))

	w.restartPending = time.AfterFunc(w.wavePause, func() {
		w.mu.Lock()
		w.restartPending = nil
		w.mu.Unlock()

		if err := w.simUC.Restart(); err != nil {
			w.Logger().Warn("Wave restart skipped", zap.Error(err))
		}
	})
}

func (w *SimulationWorker) cancelPendingRestart() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.restartPending != nil {
		w.restartPending.Stop()
		w.restartPending = nil
	}
}
