package services

import (
	"context"
	"iter"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/dto"
)

// ApprovalLedgerSvc reads the append-only approval history
type ApprovalLedgerSvc interface {
	// History yields the request's records ordered by sequence number. The sequence is
	// lazy and may be ranged over again to restart from the first record.
	History(ctx context.Context, requestID string) iter.Seq2[domain.ApprovalRecord, error]

	// ListHistory returns one page of history behind an opaque cursor.
	ListHistory(ctx context.Context, requestID string, params dto.ListHistoryParams) (*dto.ListHistoryResponse, error)
}

// LedgerReconcilerSvc repairs requests whose ledger ran ahead of their status
type LedgerReconcilerSvc interface {
	Reconcile(ctx context.Context, requestID string) (*domain.ReconcileOutcome, error)
	ReconcileAll(ctx context.Context) (*domain.ReconcileReport, error)
}
