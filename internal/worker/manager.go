package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Worker is a long-running background component
type Worker interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}

// Manager owns the registered workers and their lifecycle
type Manager struct {
	workers []Worker
	logger  *zap.Logger
}

// NewManager creates a new worker manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Register adds a worker to the manager
func (m *Manager) Register(w Worker) {
	m.workers = append(m.workers, w)
}

// StartAll starts every registered worker; the first failure stops the rest
// from starting and tears down the ones already running.
func (m *Manager) StartAll(ctx context.Context) error {
	for i, w := range m.workers {
		m.logger.Info("Starting worker", zap.String("worker", w.Name()))
		if err := w.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				if stopErr := m.workers[j].Stop(); stopErr != nil {
					m.logger.Error("Failed to stop worker during rollback",
						zap.String("worker", m.workers[j].Name()),
						zap.Error(stopErr))
				}
			}
			return fmt.Errorf("failed to start worker %s: %w", w.Name(), err)
		}
	}
	return nil
}

// StopAll stops workers in reverse registration order
func (m *Manager) StopAll() {
	for i := len(m.workers) - 1; i >= 0; i-- {
		w := m.workers[i]
		m.logger.Info("Stopping worker", zap.String("worker", w.Name()))
		if err := w.Stop(); err != nil {
			m.logger.Error("Failed to stop worker", zap.String("worker", w.Name()), zap.Error(err))
		}
	}
}
