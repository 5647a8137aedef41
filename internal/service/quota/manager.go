// Package quota tracks YouTube Data API quota consumption for the current day.
package quota

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bjjvault/video-gateway/internal/metrics"
	"github.com/bjjvault/video-gateway/pkg/logger"
)

// Unit costs of the YouTube Data API v3 methods the gateway calls.
const (
	CostSearchList   = 100
	CostVideosList   = 1
	CostCaptionsList = 50
)

// Info is a snapshot of today's usage.
type Info struct {
	Date      string
	Used      int
	Limit     int
	Remaining int
}

// Manager accounts quota in memory. The day rolls over at midnight Pacific
// time, which is when YouTube resets quotas.
type Manager struct {
	mu               sync.Mutex
	dailyLimit       int
	thresholdPercent int
	day              string
	used             int
	warned           bool
	metrics          *metrics.Metrics
	now              func() time.Time
}

// NewManager creates a quota manager.
func NewManager(dailyLimit int, thresholdPercent int, m *metrics.Metrics) *Manager {
	if dailyLimit <= 0 {
		dailyLimit = 10000 // YouTube API v3 default
	}
	if thresholdPercent <= 0 || thresholdPercent > 100 {
		thresholdPercent = 90
	}

	return &Manager{
		dailyLimit:       dailyLimit,
		thresholdPercent: thresholdPercent,
		metrics:          m,
		now:              time.Now,
	}
}

var pacific = loadPacific()

func loadPacific() *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		return time.FixedZone("PT", -8*60*60)
	}
	return loc
}

// Record adds cost units for operation. A nil manager records nothing.
func (m *Manager) Record(cost int, operation string) {
	if m == nil {
		return
	}

	m.mu.Lock()
	m.rollover()
	m.used += cost
	used := m.used
	crossed := !m.warned && used*100 >= m.dailyLimit*m.thresholdPercent
	if crossed {
		m.warned = true
	}
	m.mu.Unlock()

	m.metrics.SetQuotaUsed(used)

	logger.Log.Debug("YouTube quota recorded",
		zap.String("operation", operation),
		zap.Int("cost", cost),
		zap.Int("used", used),
		zap.Int("limit", m.dailyLimit),
	)
	if crossed {
		logger.Log.Warn("YouTube quota threshold reached",
			zap.Int("used", used),
			zap.Int("limit", m.dailyLimit),
			zap.Int("thresholdPercent", m.thresholdPercent),
		)
	}
}

// Info returns today's usage. A nil manager reports an empty snapshot.
func (m *Manager) Info() Info {
	if m == nil {
		return Info{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()

	remaining := m.dailyLimit - m.used
	if remaining < 0 {
		remaining = 0
	}
	return Info{Date: m.day, Used: m.used, Limit: m.dailyLimit, Remaining: remaining}
}

// IsExhausted reports whether today's remaining units no longer cover one
// search (search.list plus the statistics lookup).
func (m *Manager) IsExhausted() bool {
	if m == nil {
		return false
	}
	return m.Info().Remaining < CostSearchList+CostVideosList
}

func (m *Manager) rollover() {
	today := m.now().In(pacific).Format("2006-01-02")
	if today != m.day {
		m.day = today
		m.used = 0
		m.warned = false
	}
}
