package notification

import (
	"context"
	"log/slog"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/core/ports"
)

// LogNotifier writes events to a logger. Used when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

var _ ports.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event domain.NotificationEvent) error {
	n.logger.Info("Workflow event",
		slog.String("event_type", string(event.EventType)),
		slog.String("request_id", event.RequestID),
		slog.String("new_status", event.NewStatus.String()),
		slog.String("actor_id", event.ActorID),
		slog.Time("occurred_at", event.OccurredAt))
	return nil
}
