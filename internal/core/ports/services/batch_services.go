package services

import (
	"context"

	"github.com/SscSPs/approval_engine/internal/core/domain"
)

// BatchProcessorSvc applies one decision to many requests. Per-item failures
// are reported in the result rather than returned as an error.
type BatchProcessorSvc interface {
	BatchApprove(ctx context.Context, requestIDs []string, actorID string, comment *string) (*domain.BatchResult, error)
	BatchReject(ctx context.Context, requestIDs []string, actorID, reason string) (*domain.BatchResult, error)
}
