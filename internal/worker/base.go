package worker

import (
	"sync"

	"go.uber.org/zap"
)

// BaseWorker содержит общую логику остановки для всех воркеров
type BaseWorker struct {
	name     string
	logger   *zap.Logger
	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewBaseWorker создает новый BaseWorker
func NewBaseWorker(name string, logger *zap.Logger) *BaseWorker {
	return &BaseWorker{
		name:     name,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Name возвращает имя воркера
func (w *BaseWorker) Name() string {
	return w.name
}

// Stop останавливает воркер; повторные вызовы безопасны
func (w *BaseWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	w.logger.Info("Stopping worker", zap.String("name", w.name))
	close(w.stopChan)
	w.stopped = true

	return nil
}

// StopChan возвращает канал остановки
func (w *BaseWorker) StopChan() <-chan struct{} {
	return w.stopChan
}

// Logger возвращает логгер
func (w *BaseWorker) Logger() *zap.Logger {
	return w.logger
}
