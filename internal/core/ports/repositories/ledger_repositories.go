package repositories

import (
	"context"

	"github.com/SscSPs/approval_engine/internal/core/domain"
)

// LedgerReader defines ordered range reads over the approval ledger.
// There is no writer: records are only appended through UnitOfWork.
type LedgerReader interface {
	// ListRecords returns up to limit records of requestID with a sequence number
	// greater than afterSequence, ordered by sequence number.
	ListRecords(ctx context.Context, requestID string, afterSequence int64, limit int) ([]domain.ApprovalRecord, error)

	// FindLatestRecord returns the record with the highest sequence number, or nil when
	// the request has no records.
	FindLatestRecord(ctx context.Context, requestID string) (*domain.ApprovalRecord, error)
}

// Transition is one unit of work: an optional ledger append plus a
// compare-and-swap status change.
type Transition struct {
	Change domain.StatusChange
	// Record is appended before the status change. The store assigns its
	// SequenceNumber. Nil for submit and cancel.
	Record *domain.ApprovalRecord
}

// UnitOfWork applies a Transition atomically. Both effects are committed
// together or not at all.
type UnitOfWork interface {
	// ApplyTransition returns the updated request. It returns a StaleState error if the
	// stored status no longer equals Change.From and a LedgerWrite error if the record
	// could not be appended; in both cases nothing is persisted.
	ApplyTransition(ctx context.Context, t Transition) (*domain.Request, error)
}
