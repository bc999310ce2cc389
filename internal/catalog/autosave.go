package catalog

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/heimdex/heimdex-studio/internal/logging"
)

// Autosaver periodically writes dirty sessions back to disk.
type Autosaver struct {
	service  *Service
	logger   *slog.Logger
	interval time.Duration
	running  atomic.Bool
	paused   atomic.Bool
}

func NewAutosaver(service *Service, interval time.Duration, logger *slog.Logger) *Autosaver {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Autosaver{
		service:  service,
		logger:   logging.WithComponent(logging.OrDiscard(logger), "autosave"),
		interval: interval,
	}
}

// Start blocks until ctx is cancelled. A second concurrent Start returns
// immediately.
func (a *Autosaver) Start(ctx context.Context) {
	if a.running.Swap(true) {
		return
	}
	defer a.running.Store(false)

	a.logger.Info("autosave started", "interval", a.interval.String())

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("autosave stopping")
			return
		case <-ticker.C:
			if !a.paused.Load() {
				a.service.SaveAll(ctx)
			}
		}
	}
}

func (a *Autosaver) Pause() {
	a.paused.Store(true)
}

func (a *Autosaver) Resume() {
	a.paused.Store(false)
}

func (a *Autosaver) IsPaused() bool {
	return a.paused.Load()
}

func (a *Autosaver) IsRunning() bool {
	return a.running.Load()
}
