// Package fdmonitor watches the process's open file descriptor count so
// leaked directory handles and watches show up in the log early.
package fdmonitor

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

const (
	// DefaultWarningThreshold is the FD count that triggers a warning.
	DefaultWarningThreshold = 200
	// DefaultCriticalThreshold is the FD count that triggers a critical warning.
	DefaultCriticalThreshold = 500
	// MinCheckInterval prevents checking too frequently.
	MinCheckInterval = 10 * time.Second
)

// Count returns the number of open file descriptors of this process, or
// -1 where the platform does not report it.
func Count() int {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return -1
	}
	n, err := p.NumFDs()
	if err != nil {
		return -1
	}
	return int(n)
}

// Monitor rate-limits FD checks and logs when a threshold is crossed.
type Monitor struct {
	Warning  int
	Critical int
	Interval time.Duration

	mu        sync.Mutex
	lastCheck time.Time
	lastCount int
	count     func() int
	now       func() time.Time
}

// New returns a Monitor with the default thresholds.
func New() *Monitor {
	return &Monitor{
		Warning:  DefaultWarningThreshold,
		Critical: DefaultCriticalThreshold,
		Interval: MinCheckInterval,
		count:    Count,
		now:      time.Now,
	}
}

// Check samples the FD count unless the last sample is younger than
// Interval, in which case the cached count is returned. watched is the
// number of folders under file watch, logged alongside the count.
func (m *Monitor) Check(logger *slog.Logger, watched int) (count int, warned bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !m.lastCheck.IsZero() && now.Sub(m.lastCheck) < m.Interval {
		return m.lastCount, false
	}

	count = m.count()
	if count < 0 {
		return count, false
	}
	m.lastCheck = now
	m.lastCount = count

	switch {
	case count >= m.Critical:
		if logger != nil {
			logger.Warn("critical FD count", "count", count, "threshold", m.Critical, "watched", watched)
		}
		return count, true
	case count >= m.Warning:
		if logger != nil {
			logger.Warn("high FD count", "count", count, "threshold", m.Warning, "watched", watched)
		}
		return count, true
	}
	return count, false
}
