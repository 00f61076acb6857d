package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cobrax/tenauth/internal/auth/domain"
	"github.com/cobrax/tenauth/internal/auth/store"
	"github.com/cobrax/tenauth/pkg/idx"
)

// Recorder captures security events. It is append-only and writes through
// the store layer so tests can swap sinks easily.
type Recorder struct {
	events store.SecurityEvents
	queue  chan domain.SecurityEvent
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
}

// RecorderOption configures the Recorder.
type RecorderOption func(*Recorder)

// WithAsyncBuffer enables async persistence with the specified buffer size.
// Events are queued and written in a background goroutine so the hot path
// never waits on the database.
func WithAsyncBuffer(size int) RecorderOption {
	return func(r *Recorder) {
		if size > 0 {
			r.queue = make(chan domain.SecurityEvent, size)
			r.async = true
		}
	}
}

// WithLogger sets a logger for async error reporting.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

func NewRecorder(events store.SecurityEvents, opts ...RecorderOption) *Recorder {
	r := &Recorder{events: events}
	for _, opt := range opts {
		opt(r)
	}
	if r.async {
		r.wg.Add(1)
		go r.processEvents()
	}
	return r
}

// processEvents runs in a goroutine and persists events from the queue.
func (r *Recorder) processEvents() {
	defer r.wg.Done()
	for ev := range r.queue {
		if err := r.events.AppendSecurityEvent(context.Background(), ev); err != nil {
			if r.logger != nil {
				r.logger.Error("failed to persist security event",
					"error", err,
					"kind", string(ev.Kind),
					"tenant_id", ev.TenantID,
				)
			}
		}
	}
}

// Close shuts down the async recorder and waits for pending events to drain.
func (r *Recorder) Close() {
	if r.async && r.queue != nil {
		close(r.queue)
		r.wg.Wait()
	}
}

// Record persists one security event. In async mode the send is
// non-blocking; if the buffer is full the event is dropped with a warning
// rather than stalling the request path.
func (r *Recorder) Record(ctx context.Context, ev domain.SecurityEvent) {
	if ev.ID == "" {
		ev.ID = idx.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	if r.async {
		select {
		case r.queue <- ev:
		default:
			if r.logger != nil {
				r.logger.Warn("security event buffer full, event dropped",
					"kind", string(ev.Kind),
					"tenant_id", ev.TenantID,
				)
			}
		}
		return
	}

	if err := r.events.AppendSecurityEvent(ctx, ev); err != nil && r.logger != nil {
		r.logger.Error("failed to persist security event",
			"error", err,
			"kind", string(ev.Kind),
		)
	}
}

// List returns the newest events for a tenant.
func (r *Recorder) List(ctx context.Context, tenantID string, limit int) ([]domain.SecurityEvent, error) {
	return r.events.ListSecurityEventsByTenant(ctx, tenantID, limit)
}
