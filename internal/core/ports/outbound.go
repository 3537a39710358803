package ports

import (
	"context"

	"github.com/SscSPs/approval_engine/internal/core/domain"
)

// Notifier delivers workflow events to an external collaborator. Delivery is
// best-effort; callers never retry on error.
type Notifier interface {
	Notify(ctx context.Context, event domain.NotificationEvent) error
}

// PermissionCache stores resolved permission sets per user. Entries must
// expire after a bounded time so a revoked role cannot grant access forever.
type PermissionCache interface {
	Get(ctx context.Context, userID string) (domain.PermissionSet, bool)
	Set(ctx context.Context, userID string, set domain.PermissionSet)
	Invalidate(ctx context.Context, userID string)
}
