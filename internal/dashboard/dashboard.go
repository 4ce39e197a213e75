// Package dashboard serves a browser chat page over the /ws/chat socket and
// a small stats endpoint backed by the question log.
package dashboard

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/shopdesk/internal/audit"
)

// StatusSource reports the backend status line. *assistant.Assistant
// satisfies it.
type StatusSource interface {
	BackendStatus() string
}

// StatsSource summarizes answered questions. *audit.Store satisfies it.
type StatsSource interface {
	Stats(ctx context.Context) (audit.Stats, error)
}

// Dashboard provides the chat page and its stats panel.
type Dashboard struct {
	status StatusSource
	stats  StatsSource
}

// New creates a new Dashboard. stats may be nil when the question log is off.
func New(status StatusSource, stats StatsSource) *Dashboard {
	return &Dashboard{status: status, stats: stats}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Get("/api/dashboard/stats", d.handleStats)
}
