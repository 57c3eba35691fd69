package health

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sozercan/review-sentiment/apimodels"
)

// Status is the tri-state availability indicator, plus Checking before the
// startup check resolves.
type Status string

const (
	Checking       Status = "checking"
	Connected      Status = "connected"
	ModelNotLoaded Status = "model-not-loaded"
	Disconnected   Status = "disconnected"
)

const modelLoaded = "loaded"

// Checker is the slice of the gateway the monitor needs.
type Checker interface {
	CheckHealth(ctx context.Context) (*apimodels.HealthResponse, error)
}

// Monitor resolves backend availability once. There is no polling and no
// manual refresh: the first Check decides the status for the Monitor's lifetime.
type Monitor struct {
	checker Checker

	once   sync.Once
	mu     sync.RWMutex
	status Status
}

func NewMonitor(checker Checker) *Monitor {
	return &Monitor{
		checker: checker,
		status:  Checking,
	}
}

// Check runs the health check on its first call and returns the resolved
// status. Later and concurrent calls wait for and return the same result.
func (m *Monitor) Check(ctx context.Context) Status {
	m.once.Do(func() {
		status := Resolve(m.checker.CheckHealth(ctx))
		slog.Info("Backend health resolved", "status", status)

		m.mu.Lock()
		m.status = status
		m.mu.Unlock()
	})
	return m.Status()
}

func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Resolve maps a health call outcome to a Status.
func Resolve(resp *apimodels.HealthResponse, err error) Status {
	if err != nil {
		slog.Error("API health check failed", "error", err)
		return Disconnected
	}
	if resp != nil && resp.ModelStatus == modelLoaded {
		return Connected
	}
	return ModelNotLoaded
}

// Badge is the text shown in the status indicator.
func Badge(s Status) string {
	switch s {
	case Connected:
		return "API Connected"
	case ModelNotLoaded:
		return "Model Not Loaded"
	case Disconnected:
		return "API Disconnected"
	default:
		return "Checking..."
	}
}
