package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/approval_engine/internal/core/ports/services"
	"github.com/SscSPs/approval_engine/internal/core/workflow"
)

// reconcileService repairs requests whose latest ledger record has no
// matching status transition.
type reconcileService struct {
	BaseService
	registry    *workflow.Registry
	requestRepo portsrepo.RequestReader
	ledgerRepo  portsrepo.LedgerReader
	uow         portsrepo.UnitOfWork
}

// NewReconcileService creates the LedgerReconciler.
func NewReconcileService(registry *workflow.Registry, repos portsrepo.RepositoryProvider, opts ...ServiceOption) portssvc.LedgerReconcilerSvc {
	return &reconcileService{
		BaseService: newBaseService(buildOptions(opts)),
		registry:    registry,
		requestRepo: repos.RequestRepo,
		ledgerRepo:  repos.LedgerRepo,
		uow:         repos.TransitionRepo,
	}
}

var _ portssvc.LedgerReconcilerSvc = (*reconcileService)(nil)

func (s *reconcileService) Reconcile(ctx context.Context, requestID string) (*domain.ReconcileOutcome, error) {
	sctx, cancel := s.storeCtx(ctx)
	request, err := s.requestRepo.FindRequestByID(sctx, requestID)
	cancel()
	if err != nil {
		return nil, s.storeError(ctx, err, "failed to load request", "request_id", requestID)
	}
	return s.reconcile(ctx, *request)
}

func (s *reconcileService) reconcile(ctx context.Context, request domain.Request) (*domain.ReconcileOutcome, error) {
	sctx, cancel := s.storeCtx(ctx)
	latest, err := s.ledgerRepo.FindLatestRecord(sctx, request.RequestID)
	cancel()
	if err != nil {
		return nil, s.storeError(ctx, err, "failed to read latest ledger record", "request_id", request.RequestID)
	}

	outcome := &domain.ReconcileOutcome{
		RequestID:    request.RequestID,
		Action:       domain.ReconcileConsistent,
		StatusBefore: request.Status,
		StatusAfter:  request.Status,
	}

	if latest == nil {
		if request.Status == domain.StatusApproved || request.Status == domain.StatusRejected {
			outcome.Action = domain.ReconcileUnrepairable
			outcome.Detail = "terminal decision has no ledger record"
		}
		return s.report(ctx, outcome), nil
	}
	outcome.LatestSequence = latest.SequenceNumber

	switch request.Status {
	case latest.ResultingStatus:
		return outcome, nil
	case domain.RequestStatus(latest.StageKey):
		// The decision was recorded but the status update never landed.
	default:
		outcome.Action = domain.ReconcileUnrepairable
		outcome.Detail = fmt.Sprintf("status %q matches neither stage %q nor result %q of record %d",
			request.Status, latest.StageKey, latest.ResultingStatus, latest.SequenceNumber)
		return s.report(ctx, outcome), nil
	}

	now := s.now()
	change := domain.StatusChange{
		RequestID: request.RequestID,
		From:      request.Status,
		To:        latest.ResultingStatus,
		At:        now,
	}
	if change.To.IsTerminal() {
		change.CompletedAt = &latest.Timestamp
	}

	sctx, cancel = s.storeCtx(ctx)
	updated, err := s.uow.ApplyTransition(sctx, portsrepo.Transition{Change: change})
	cancel()
	if err != nil {
		return nil, s.storeError(ctx, err, "failed to roll status forward", "request_id", request.RequestID)
	}

	outcome.Action = domain.ReconcileRolledForward
	outcome.StatusAfter = updated.Status
	s.LogInfo(ctx, "Rolled request status forward to match ledger",
		slog.String("request_id", request.RequestID),
		slog.String("from", request.Status.String()),
		slog.String("to", updated.Status.String()),
		slog.Int64("sequence_number", latest.SequenceNumber))
	return outcome, nil
}

func (s *reconcileService) ReconcileAll(ctx context.Context) (*domain.ReconcileReport, error) {
	// Only pending requests can trail their ledger.
	statuses := s.registry.PendingStatuses()

	sctx, cancel := s.storeCtx(ctx)
	requests, err := s.requestRepo.ListRequestsByStatuses(sctx, statuses, 0)
	cancel()
	if err != nil {
		return nil, s.storeError(ctx, err, "failed to list requests for reconciliation")
	}

	report := &domain.ReconcileReport{Unrepairable: []domain.ReconcileOutcome{}}
	for _, r := range requests {
		outcome, err := s.reconcile(ctx, r)
		if err != nil {
			// A concurrent writer moved the request on; it is consistent by construction.
			if apperrors.Kind(err) == apperrors.KindStaleState {
				report.Checked++
				continue
			}
			return report, err
		}
		report.Checked++
		switch outcome.Action {
		case domain.ReconcileRolledForward:
			report.RolledForward++
		case domain.ReconcileUnrepairable:
			report.Unrepairable = append(report.Unrepairable, *outcome)
		}
	}

	s.LogInfo(ctx, "Reconciliation finished",
		slog.Int("checked", report.Checked),
		slog.Int("rolled_forward", report.RolledForward),
		slog.Int("unrepairable", len(report.Unrepairable)))
	return report, nil
}

func (s *reconcileService) report(ctx context.Context, outcome *domain.ReconcileOutcome) *domain.ReconcileOutcome {
	if outcome.Action == domain.ReconcileUnrepairable {
		s.LogWarn(ctx, "Ledger and status disagree",
			slog.String("request_id", outcome.RequestID),
			slog.String("status", outcome.StatusBefore.String()),
			slog.String("detail", outcome.Detail))
	}
	return outcome
}
