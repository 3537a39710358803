package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/core/ports"
	"github.com/SscSPs/approval_engine/internal/middleware"
	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is used when no prefix is configured.
// Subjects look like notifications.approvals.request_submitted.
const DefaultSubjectPrefix = "notifications.approvals"

// Publisher is the part of *nats.Conn the notifier needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes workflow events as JSON on a per event type subject.
type NATSNotifier struct {
	conn   Publisher
	prefix string
}

var _ ports.Notifier = (*NATSNotifier)(nil)

func NewNATSNotifier(conn Publisher, prefix string) *NATSNotifier {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSNotifier{conn: conn, prefix: prefix}
}

// Connect dials NATS with reconnects enabled for the lifetime of the process.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("approvals-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// Subject returns the subject an event type is published on.
func (n *NATSNotifier) Subject(eventType domain.EventType) string {
	return fmt.Sprintf("%s.%s", n.prefix, eventType)
}

func (n *NATSNotifier) Notify(ctx context.Context, event domain.NotificationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}
	subject := n.Subject(event.EventType)
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	middleware.GetLoggerFromCtx(ctx).Debug("Notification published",
		slog.String("subject", subject),
		slog.String("request_id", event.RequestID))
	return nil
}
