package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/samruddhi/pipecut/internal/db"
	"github.com/samruddhi/pipecut/internal/logger"
	"github.com/samruddhi/pipecut/internal/metrics"
)

// DefaultCheckTimeout bounds a single check
const DefaultCheckTimeout = 5 * time.Second

// Status is the outcome of the last check
type Status struct {
	Backend   db.Kind       `json:"backend"`
	Target    string        `json:"target"`
	Healthy   bool          `json:"healthy"`
	Error     string        `json:"error,omitempty"`
	Latency   time.Duration `json:"latency_ns"`
	CheckedAt time.Time     `json:"checked_at"`
}

// Monitor pings the selected database on a cron schedule
type Monitor struct {
	db      db.Database
	cron    *cron.Cron
	timeout time.Duration

	mu      sync.RWMutex
	status  Status
	running bool
}

// NewMonitor creates a monitor for database
func NewMonitor(database db.Database) *Monitor {
	return &Monitor{
		db:      database,
		cron:    cron.New(),
		timeout: DefaultCheckTimeout,
		status: Status{
			Backend: database.Target().Kind,
			Target:  database.Target().String(),
		},
	}
}

// Check runs one check and records the result
func (m *Monitor) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	target := m.db.Target()
	start := time.Now()
	err := m.db.Ping(ctx)
	latency := time.Since(start)

	st := Status{
		Backend:   target.Kind,
		Target:    target.String(),
		Healthy:   err == nil,
		Latency:   latency,
		CheckedAt: time.Now(),
	}
	label := string(target.Kind)
	metrics.CheckLatency.WithLabelValues(label).Observe(latency.Seconds())
	if err != nil {
		st.Error = err.Error()
		metrics.BackendUp.WithLabelValues(label).Set(0)
		logger.Warning("Database check failed for %s: %v", target, err)
	} else {
		metrics.BackendUp.WithLabelValues(label).Set(1)
		logger.Debug("Database check ok for %s in %s", target, latency)
	}

	m.mu.Lock()
	m.status = st
	m.mu.Unlock()
	return st
}

// Status returns the last recorded check
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Start checks once, then on every tick of schedule
func (m *Monitor) Start(ctx context.Context, schedule string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("health monitor already running")
	}

	if _, err := m.cron.AddFunc(schedule, func() {
		m.Check(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	m.cron.Start()
	m.running = true
	logger.Info("Health monitor started with schedule: %s", schedule)

	go m.Check(ctx)
	return nil
}

// Stop stops the monitor
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	// Wait outside the lock: an in-flight check records its status under it.
	<-m.cron.Stop().Done()
	logger.Info("Health monitor stopped")
}
