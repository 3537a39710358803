package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/core/ports"
)

const (
	DefaultBuffer  = 256
	deliverTimeout = 5 * time.Second
)

// Async hands events to a single background sender. Notify never blocks: when
// the buffer is full the event is dropped and a warning is logged.
type Async struct {
	next   ports.Notifier
	logger *slog.Logger
	events chan domain.NotificationEvent
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

var _ ports.Notifier = (*Async)(nil)

func NewAsync(next ports.Notifier, buffer int, logger *slog.Logger) *Async {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Async{
		next:   next,
		logger: logger,
		events: make(chan domain.NotificationEvent, buffer),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) Notify(_ context.Context, event domain.NotificationEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.logger.Warn("Notification dropped after shutdown", slog.String("request_id", event.RequestID))
		return nil
	}
	select {
	case a.events <- event:
	default:
		a.logger.Warn("Notification buffer full, dropping event",
			slog.String("event_type", string(event.EventType)),
			slog.String("request_id", event.RequestID))
	}
	return nil
}

func (a *Async) run() {
	defer close(a.done)
	for event := range a.events {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		if err := a.next.Notify(ctx, event); err != nil {
			a.logger.Warn("Notification delivery failed",
				slog.String("event_type", string(event.EventType)),
				slog.String("request_id", event.RequestID),
				slog.String("error", err.Error()))
		}
		cancel()
	}
}

// Close stops accepting events and waits for the queued ones to be sent, or
// for ctx to end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
