package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/approval_engine/internal/core/ports/services"
	"golang.org/x/sync/errgroup"
)

const maxBatchSize = 200

// batchService is the BatchProcessor. It is deliberately not one transaction:
// every item is its own compare-and-swap against the snapshot it was read in.
type batchService struct {
	BaseService
	requestRepo portsrepo.RequestReader
	engine      portssvc.WorkflowEngineSvc
	permissions portssvc.PermissionResolverSvc
	concurrency int
}

// NewBatchService creates the BatchProcessor on top of the engine.
func NewBatchService(
	requestRepo portsrepo.RequestReader,
	engine portssvc.WorkflowEngineSvc,
	permissions portssvc.PermissionResolverSvc,
	opts ...ServiceOption,
) portssvc.BatchProcessorSvc {
	o := buildOptions(opts)
	return &batchService{
		BaseService: newBaseService(o),
		requestRepo: requestRepo,
		engine:      engine,
		permissions: permissions,
		concurrency: o.batchConcurrency,
	}
}

var _ portssvc.BatchProcessorSvc = (*batchService)(nil)

func (s *batchService) BatchApprove(ctx context.Context, requestIDs []string, actorID string, comment *string) (*domain.BatchResult, error) {
	return s.run(ctx, requestIDs, portssvc.DecisionInput{
		Decision: domain.DecisionApproved,
		ActorID:  actorID,
		Note:     comment,
	})
}

func (s *batchService) BatchReject(ctx context.Context, requestIDs []string, actorID, reason string) (*domain.BatchResult, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationFailedError("a rejection reason is required")
	}
	return s.run(ctx, requestIDs, portssvc.DecisionInput{
		Decision: domain.DecisionRejected,
		ActorID:  actorID,
		Note:     &reason,
	})
}

func (s *batchService) run(ctx context.Context, requestIDs []string, in portssvc.DecisionInput) (*domain.BatchResult, error) {
	ctx = context.WithoutCancel(ctx)

	ids, err := normalizeIDs(requestIDs)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ActorID) == "" {
		return nil, apperrors.NewValidationFailedError("actor id is required")
	}

	perms, err := s.permissions.ResolvePermissions(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}
	in.Permissions = perms

	// One consistent read decides homogeneity before anything is mutated.
	sctx, cancel := s.storeCtx(ctx)
	snapshot, err := s.requestRepo.FindRequestsByIDs(sctx, ids)
	cancel()
	if err != nil {
		return nil, s.storeError(ctx, err, "failed to load batch")
	}

	byID := make(map[string]domain.Request, len(snapshot))
	statuses := make(map[domain.RequestStatus]bool)
	for _, r := range snapshot {
		byID[r.RequestID] = r
		statuses[r.Status] = true
	}

	if len(statuses) > 1 {
		s.LogWarn(ctx, "Batch rejected: mixed statuses",
			slog.String("actor_id", in.ActorID),
			slog.Int("distinct_statuses", len(statuses)))
		return &domain.BatchResult{
			Applied: []string{},
			Errors: []domain.BatchItemError{{
				ErrorKind: apperrors.KindHeterogeneousStatus,
				Message:   "batch spans more than one current status; nothing was changed",
			}},
		}, nil
	}

	result := &domain.BatchResult{Applied: []string{}, Errors: []domain.BatchItemError{}}
	if len(snapshot) == 0 {
		for _, id := range ids {
			result.Errors = append(result.Errors, itemError(id, apperrors.NewNotFoundError("request not found", "request_id", id)))
		}
		return result, nil
	}

	// Every item shares one status and stage keys are unique, so a single
	// permission check covers the whole batch.
	first := snapshot[0]
	if first.Status.IsPending() {
		stage, err := s.engine.StageFor(first)
		if err != nil {
			return nil, err
		}
		if !perms.Has(stage.RequiredPermission) {
			s.LogWarn(ctx, "Batch denied",
				slog.String("actor_id", in.ActorID),
				slog.String("stage_key", stage.Key))
			return nil, apperrors.NewPermissionDeniedError("actor lacks the permission required by the current stage",
				"stage_key", stage.Key,
				"required_permission", stage.RequiredPermission)
		}
	}

	outcomes := make([]error, len(ids))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		req, ok := byID[id]
		if !ok {
			outcomes[i] = apperrors.NewNotFoundError("request not found", "request_id", id)
			continue
		}
		g.Go(func() error {
			_, err := s.engine.ApplyDecision(ctx, req, in)
			outcomes[i] = err
			return nil
		})
	}
	_ = g.Wait()

	for i, id := range ids {
		if outcomes[i] != nil {
			result.Errors = append(result.Errors, itemError(id, outcomes[i]))
			continue
		}
		result.Applied = append(result.Applied, id)
	}

	s.LogInfo(ctx, "Batch processed",
		slog.String("actor_id", in.ActorID),
		slog.String("decision", string(in.Decision)),
		slog.String("status", first.Status.String()),
		slog.Int("applied", len(result.Applied)),
		slog.Int("failed", len(result.Errors)))
	return result, nil
}

// normalizeIDs trims and de-duplicates ids, keeping first-seen order.
func normalizeIDs(requestIDs []string) ([]string, error) {
	if len(requestIDs) == 0 {
		return nil, apperrors.NewValidationFailedError("at least one request id is required")
	}
	seen := make(map[string]bool, len(requestIDs))
	ids := make([]string, 0, len(requestIDs))
	for _, raw := range requestIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			return nil, apperrors.NewValidationFailedError("request ids must not be empty")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) > maxBatchSize {
		return nil, apperrors.NewValidationFailedError("too many request ids in one batch")
	}
	return ids, nil
}

func itemError(requestID string, err error) domain.BatchItemError {
	msg := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	return domain.BatchItemError{
		RequestID: requestID,
		ErrorKind: apperrors.Kind(err),
		Message:   msg,
	}
}
