package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Func represents the work a daemon does. It returns when ctx is cancelled
// or on crash.
type Func func(ctx context.Context, name string) error

// Manager supervises background daemons, restarting any that crash.
type Manager struct {
	logger  *slog.Logger
	daemons map[string]Func
	wg      sync.WaitGroup
}

func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:  logger,
		daemons: make(map[string]Func),
	}
}

// Add registers a daemon by name.
func (m *Manager) Add(name string, fn Func) {
	m.daemons[name] = fn
}

// Start runs all registered daemons.
func (m *Manager) Start(ctx context.Context) {
	for name, fn := range m.daemons {
		m.wg.Add(1)
		go m.run(ctx, name, fn)
	}
}

// Wait blocks until all daemons have stopped.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context, name string, fn Func) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Daemon received shutdown signal", "daemon", name)
			return
		default:
			if err := fn(ctx, name); err != nil {
				m.logger.Error("Daemon crashed, restarting in 2s", "daemon", name, "error", err)
				time.Sleep(2 * time.Second)
				continue
			}
			m.logger.Info("Daemon exited cleanly", "daemon", name)
			return
		}
	}
}
