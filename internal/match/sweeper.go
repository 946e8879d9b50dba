package match

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is the cadence of the background expiration sweep.
const DefaultSweepInterval = 60 * time.Second

// Sweeper periodically evicts stale waiting requests and expired channels.
// It shares the engine's mutex through SweepOnce, so sweeps never observe or
// produce partial state relative to live pairing.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex
}

// NewSweeper creates a sweeper for the engine. A non-positive interval falls
// back to DefaultSweepInterval.
func NewSweeper(engine *Engine, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{engine: engine, interval: interval}
}

// Start begins the sweep loop.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.stopChan = make(chan struct{})
	s.running = true
	go s.runLoop(s.stopChan)

	slog.Info("expiration sweeper started", "interval", s.interval)
}

// Stop halts the sweep loop.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stopChan)
	s.running = false
	slog.Info("expiration sweeper stopped")
}

func (s *Sweeper) runLoop(stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			requests, channels := s.engine.SweepOnce(time.Now())
			if requests > 0 || channels > 0 {
				slog.Info("sweep evicted stale state", "requests", requests, "channels", channels)
			}
		}
	}
}
