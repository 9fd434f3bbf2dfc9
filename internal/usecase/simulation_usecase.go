package usecase

import (
	"sort"
	"sync"
	"time"

	"github.com/fleet-simulator/internal/domain"
	"github.com/fleet-simulator/internal/pkg/errors"
	"github.com/fleet-simulator/internal/pkg/utils"
	"github.com/fleet-simulator/internal/usecase/dto"
	"go.uber.org/zap"
)

// SimulationUseCase - дискретный симулятор движения флота. Продвигает
// позицию каждого транспортного средства вдоль построенного маршрута с
// посегментной интерполяцией. Не выполняет блокирующий ввод-вывод:
// каждый тик завершается за ограниченное малое время.
type SimulationUseCase struct {
	logger *zap.Logger

	mu               sync.RWMutex
	vehicles         map[string]*domain.Vehicle
	waveID           string
	depot            domain.Coordinate
	deliveryCount    int
	coveragePercent  float64
	startedAt        time.Time
	paused           bool
	completeReported bool
}

func NewSimulationUseCase(logger *zap.Logger) *SimulationUseCase {
	return &SimulationUseCase{
		logger:   logger,
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// SetFleet устанавливает флот нового цикла, замещая предыдущий реестр
func (uc *SimulationUseCase) SetFleet(
	waveID string,
	depot domain.Coordinate,
	vehicles map[string]*domain.Vehicle,
	deliveryCount int,
	coveragePercent float64,
) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.waveID = waveID
	uc.depot = depot
	uc.vehicles = vehicles
	uc.deliveryCount = deliveryCount
	uc.coveragePercent = coveragePercent
	uc.startedAt = time.Now().UTC()
	uc.paused = false
	uc.completeReported = false

	uc.logger.Info("Simulation fleet set",
		zap.String("wave_id", waveID),
		zap.Int("vehicles", len(vehicles)))
}

// Clear сбрасывает симуляцию и уничтожает реестр транспорта
func (uc *SimulationUseCase) Clear() {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.waveID = ""
	uc.vehicles = make(map[string]*domain.Vehicle)
	uc.paused = false
	uc.completeReported = false

	uc.logger.Info("Simulation cleared")
}

// Tick продвигает все незавершенные транспортные средства на один шаг
// времени dt. Возвращает статусы флота и признак завершения цикла;
// признак взводится ровно один раз на первом тике, когда весь флот
// вернулся в депо.
func (uc *SimulationUseCase) Tick(dt time.Duration) ([]domain.VehicleStatus, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if len(uc.vehicles) == 0 || uc.paused {
		return uc.statusesLocked(), false
	}

	dtHours := dt.Hours()

	for _, v := range uc.vehicles {
		if v.Completed() {
			continue
		}

		from := v.Route[v.RouteIndex]
		to := v.Route[v.RouteIndex+1]

		segmentKm := utils.HaversineDistance(from, to)
		if segmentKm == 0 {
			// Вырожденный сегмент из дублированной точки: переходим
			// сразу к следующему, избегая деления на ноль
			uc.advanceSegment(v)
			continue
		}

		stepKm := v.SpeedKmh * dtHours
		v.Progress += stepKm / segmentKm

		if v.Progress >= 1.0 {
			// Перелет сегмента отбрасывается вместе с остатком
			// прогресса; небольшой накопленный дрейф на
			// многосегментных маршрутах принят осознанно
			uc.advanceSegment(v)
		} else {
			v.Position = utils.InterpolateCoordinate(from, to, v.Progress)
		}
	}

	justCompleted := false
	if !uc.completeReported && uc.allCompletedLocked() {
		uc.completeReported = true
		justCompleted = true
		uc.logger.Info("Delivery cycle completed",
			zap.String("wave_id", uc.waveID),
			zap.Int("vehicles", len(uc.vehicles)))
	}

	return uc.statusesLocked(), justCompleted
}

// Pause замораживает тики без потери позиций и маршрутов
func (uc *SimulationUseCase) Pause() error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if len(uc.vehicles) == 0 {
		return errors.ErrSimulationNotRunning
	}

	uc.paused = true
	uc.logger.Info("Simulation paused", zap.String("wave_id", uc.waveID))
	return nil
}

// Resume продолжает интерполяцию ровно с места остановки
func (uc *SimulationUseCase) Resume() error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if len(uc.vehicles) == 0 {
		return errors.ErrSimulationNotRunning
	}

	uc.paused = false
	uc.logger.Info("Simulation resumed", zap.String("wave_id", uc.waveID))
	return nil
}

// Restart возвращает каждое транспортное средство к началу его
// маршрута без перестроения маршрутов и переаллокации флота
func (uc *SimulationUseCase) Restart() error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if len(uc.vehicles) == 0 {
		return errors.ErrSimulationNotRunning
	}

	for _, v := range uc.vehicles {
		v.RouteIndex = 0
		v.Progress = 0.0
		v.Position = v.Route[0]
	}
	uc.paused = false
	uc.completeReported = false
	uc.startedAt = time.Now().UTC()

	uc.logger.Info("Simulation restarted", zap.String("wave_id", uc.waveID))
	return nil
}

// WaveID возвращает идентификатор текущего цикла
func (uc *SimulationUseCase) WaveID() string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.waveID
}

// Statuses возвращает наблюдаемые состояния всего флота
func (uc *SimulationUseCase) Statuses() []domain.VehicleStatus {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.statusesLocked()
}

// Status возвращает состояние цикла симуляции
func (uc *SimulationUseCase) Status() dto.SimulationStatusResponse {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	active := 0
	for _, v := range uc.vehicles {
		if !v.Completed() {
			active++
		}
	}

	return dto.SimulationStatusResponse{
		WaveID:         uc.waveID,
		Running:        len(uc.vehicles) > 0 && !uc.paused,
		Paused:         uc.paused,
		TotalVehicles:  len(uc.vehicles),
		ActiveVehicles: active,
		CycleComplete:  uc.completeReported,
	}
}

// BuildWaveSummary собирает итог завершенного цикла для истории волн
func (uc *SimulationUseCase) BuildWaveSummary() *domain.WaveSummary {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	return &domain.WaveSummary{
		WaveID:          uc.waveID,
		Depot:           uc.depot,
		VehicleCount:    len(uc.vehicles),
		DeliveryCount:   uc.deliveryCount,
		CoveragePercent: uc.coveragePercent,
		StartedAt:       uc.startedAt,
		CompletedAt:     time.Now().UTC(),
	}
}

// advanceSegment переводит транспортное средство на следующий сегмент.
// Вызывается под uc.mu.
func (uc *SimulationUseCase) advanceSegment(v *domain.Vehicle) {
	v.RouteIndex++
	v.Progress = 0.0
	if v.RouteIndex < len(v.Route) {
		v.Position = v.Route[v.RouteIndex]
	}
}

// statusesLocked строит статусы в детерминированном порядке имен.
// Вызывается под uc.mu.
func (uc *SimulationUseCase) statusesLocked() []domain.VehicleStatus {
	statuses := make([]domain.VehicleStatus, 0, len(uc.vehicles))
	for _, v := range uc.vehicles {
		status := domain.StatusMoving
		speed := v.SpeedKmh

		switch {
		case v.Completed():
			status = domain.StatusDelivered
			speed = 0
		case uc.paused:
			status = domain.StatusStopped
			speed = 0
		}

		statuses = append(statuses, domain.VehicleStatus{
			Name:     v.Name,
			Type:     v.Type,
			Position: v.Position,
			Status:   status,
			SpeedKmh: speed,
			WeightKg: v.WeightKg,
		})
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})

	return statuses
}

// allCompletedLocked проверяет, вернулся ли весь флот в депо.
// Вызывается под uc.mu.
func (uc *SimulationUseCase) allCompletedLocked() bool {
	for _, v := range uc.vehicles {
		if !v.Completed() {
			return false
		}
	}
	return len(uc.vehicles) > 0
}
