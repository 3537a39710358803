package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/core/ports"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/approval_engine/internal/core/ports/services"
	"github.com/SscSPs/approval_engine/internal/core/workflow"
	"github.com/SscSPs/approval_engine/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPendingLimit = 50
	maxPendingLimit     = 200

	// maxAmountScale matches the NUMERIC(20, 4) amount column.
	maxAmountScale = 4
)

// workflowService is the WorkflowEngine: it validates and applies single
// request transitions. Every status write is a compare-and-swap on the status
// that was read, and decisions are appended to the ledger in the same unit of work.
type workflowService struct {
	BaseService
	registry    *workflow.Registry
	requestRepo portsrepo.RequestRepositoryFacade
	uow         portsrepo.UnitOfWork
	orgUnits    portsrepo.OrgUnitReader
	users       portsrepo.RBACRepositoryFacade
	permissions portssvc.PermissionResolverSvc
	notifier    ports.Notifier
}

// NewWorkflowService creates the engine.
func NewWorkflowService(
	registry *workflow.Registry,
	repos portsrepo.RepositoryProvider,
	permissions portssvc.PermissionResolverSvc,
	opts ...ServiceOption,
) portssvc.WorkflowSvcFacade {
	o := buildOptions(opts)
	return &workflowService{
		BaseService: newBaseService(o),
		registry:    registry,
		requestRepo: repos.RequestRepo,
		uow:         repos.TransitionRepo,
		orgUnits:    repos.OrgUnitRepo,
		users:       repos.RBACRepo,
		permissions: permissions,
		notifier:    o.notifier,
	}
}

var _ portssvc.WorkflowSvcFacade = (*workflowService)(nil)

// ---------------------------------------------------------------------------
// drafting
// ---------------------------------------------------------------------------

func (s *workflowService) CreateDraft(ctx context.Context, applicantID string, req dto.CreateRequestRequest) (*domain.Request, error) {
	if strings.TrimSpace(applicantID) == "" {
		return nil, apperrors.NewValidationFailedError("applicant id is required")
	}
	if _, err := s.registry.Definition(req.RequestType); err != nil {
		return nil, err
	}
	if err := checkDraftAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := s.checkOrgUnit(ctx, req.OrgUnitID); err != nil {
		return nil, err
	}
	if err := s.checkApplicant(ctx, applicantID); err != nil {
		return nil, err
	}

	now := s.now()
	request := domain.Request{
		RequestID:     uuid.NewString(),
		RequestType:   req.RequestType,
		Amount:        req.Amount,
		ApplicantID:   applicantID,
		OrgUnitID:     req.OrgUnitID,
		Status:        domain.StatusDraft,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.requestRepo.SaveRequest(sctx, request); err != nil {
		return nil, s.storeError(ctx, err, "failed to save request", "request_id", request.RequestID)
	}

	s.LogInfo(ctx, "Draft request created",
		slog.String("request_id", request.RequestID),
		slog.String("request_type", request.RequestType),
		slog.String("applicant_id", applicantID))
	return &request, nil
}

func (s *workflowService) UpdateDraft(ctx context.Context, requestID, applicantID string, req dto.UpdateRequestRequest) (*domain.Request, error) {
	request, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ApplicantID != applicantID {
		return nil, apperrors.NewPermissionDeniedError("only the applicant may edit a draft", "request_id", requestID)
	}
	if request.Status != domain.StatusDraft {
		return nil, apperrors.NewInvalidStateError("only draft requests can be edited",
			"request_id", requestID, "current_status", request.Status.String())
	}

	if req.Amount != nil {
		if err := checkDraftAmount(*req.Amount); err != nil {
			return nil, err
		}
		request.Amount = *req.Amount
	}
	if req.OrgUnitID != nil {
		if err := s.checkOrgUnit(ctx, *req.OrgUnitID); err != nil {
			return nil, err
		}
		request.OrgUnitID = *req.OrgUnitID
	}
	request.LastUpdatedAt = s.now()

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.requestRepo.UpdateDraft(sctx, *request); err != nil {
		return nil, s.storeError(ctx, err, "failed to update draft", "request_id", requestID)
	}
	return request, nil
}

func (s *workflowService) GetRequest(ctx context.Context, requestID string) (*domain.Request, error) {
	return s.load(ctx, requestID)
}

// ---------------------------------------------------------------------------
// transitions
// ---------------------------------------------------------------------------

func (s *workflowService) Submit(ctx context.Context, requestID, actorID string) (*domain.Request, error) {
	ctx = context.WithoutCancel(ctx)

	request, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ApplicantID != actorID {
		return nil, apperrors.NewPermissionDeniedError("only the applicant may submit a request", "request_id", requestID)
	}
	if request.Status != domain.StatusDraft {
		return nil, apperrors.NewInvalidStateError("only draft requests can be submitted",
			"request_id", requestID, "current_status", request.Status.String())
	}
	def, err := s.registry.Definition(request.RequestType)
	if err != nil {
		return nil, err
	}
	if !request.Amount.IsPositive() {
		return nil, apperrors.NewValidationFailedError("amount must be greater than zero",
			"request_id", requestID, "amount", request.Amount.String())
	}
	if err := s.checkOrgUnit(ctx, request.OrgUnitID); err != nil {
		return nil, err
	}

	branch := def.SelectBranch(request.Amount)
	first := def.FirstStage(branch)
	now := s.now()

	updated, err := s.apply(ctx, portsrepo.Transition{
		Change: domain.StatusChange{
			RequestID:   requestID,
			From:        domain.StatusDraft,
			To:          domain.RequestStatus(first.Key),
			Branch:      branch,
			SubmittedAt: &now,
			At:          now,
			Amount:      &request.Amount,
		},
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Request submitted",
		slog.String("request_id", requestID),
		slog.String("branch", string(branch)),
		slog.String("status", first.Key))
	s.notify(ctx, domain.EventSubmitted, updated, actorID)
	return updated, nil
}

func (s *workflowService) Approve(ctx context.Context, requestID, actorID string, comment *string) (*domain.Request, error) {
	return s.decide(ctx, requestID, actorID, domain.DecisionApproved, comment)
}

func (s *workflowService) Reject(ctx context.Context, requestID, actorID, reason string) (*domain.Request, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationFailedError("a rejection reason is required", "request_id", requestID)
	}
	return s.decide(ctx, requestID, actorID, domain.DecisionRejected, &reason)
}

func (s *workflowService) decide(ctx context.Context, requestID, actorID string, decision domain.Decision, note *string) (*domain.Request, error) {
	// Once dispatched a decision runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	if strings.TrimSpace(actorID) == "" {
		return nil, apperrors.NewValidationFailedError("actor id is required")
	}
	request, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	perms, err := s.permissions.ResolvePermissions(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.ApplyDecision(ctx, *request, portssvc.DecisionInput{
		Decision:    decision,
		ActorID:     actorID,
		Note:        note,
		Permissions: perms,
	})
}

func (s *workflowService) ApplyDecision(ctx context.Context, snapshot domain.Request, in portssvc.DecisionInput) (*domain.Request, error) {
	ctx = context.WithoutCancel(ctx)

	if !in.Decision.IsValid() {
		return nil, apperrors.NewValidationFailedError("unknown decision", "decision", string(in.Decision))
	}
	if in.Decision == domain.DecisionRejected && (in.Note == nil || strings.TrimSpace(*in.Note) == "") {
		return nil, apperrors.NewValidationFailedError("a rejection reason is required", "request_id", snapshot.RequestID)
	}
	if !snapshot.Status.IsPending() {
		return nil, apperrors.NewInvalidStateError("request is not awaiting a decision",
			"request_id", snapshot.RequestID, "current_status", snapshot.Status.String())
	}

	stage, err := s.StageFor(snapshot)
	if err != nil {
		return nil, err
	}
	if !in.Permissions.Has(stage.RequiredPermission) {
		s.LogWarn(ctx, "Decision denied",
			slog.String("request_id", snapshot.RequestID),
			slog.String("actor_id", in.ActorID),
			slog.String("stage_key", stage.Key),
			slog.String("required_permission", stage.RequiredPermission))
		return nil, apperrors.NewPermissionDeniedError("actor lacks the permission required by the current stage",
			"request_id", snapshot.RequestID,
			"stage_key", stage.Key,
			"required_permission", stage.RequiredPermission)
	}

	next := domain.StatusRejected
	if in.Decision == domain.DecisionApproved {
		next = domain.RequestStatus(stage.NextKey)
	}

	now := s.now()
	change := domain.StatusChange{
		RequestID: snapshot.RequestID,
		From:      snapshot.Status,
		To:        next,
		At:        now,
	}
	if next.IsTerminal() {
		change.CompletedAt = &now
	}
	record := &domain.ApprovalRecord{
		RecordID:        uuid.NewString(),
		RequestID:       snapshot.RequestID,
		ActorID:         in.ActorID,
		StageKey:        stage.Key,
		Decision:        in.Decision,
		Comment:         in.Note,
		ResultingStatus: next,
		Timestamp:       now,
	}

	updated, err := s.apply(ctx, portsrepo.Transition{Change: change, Record: record})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Decision recorded",
		slog.String("request_id", snapshot.RequestID),
		slog.String("actor_id", in.ActorID),
		slog.String("decision", string(in.Decision)),
		slog.String("from", snapshot.Status.String()),
		slog.String("to", next.String()),
		slog.Int64("sequence_number", record.SequenceNumber))

	switch {
	case in.Decision == domain.DecisionRejected:
		s.notify(ctx, domain.EventRejected, updated, in.ActorID)
	case next.IsTerminal():
		s.notify(ctx, domain.EventCompleted, updated, in.ActorID)
	default:
		s.notify(ctx, domain.EventAdvanced, updated, in.ActorID)
	}
	return updated, nil
}

func (s *workflowService) Cancel(ctx context.Context, requestID, actorID string) (*domain.Request, error) {
	ctx = context.WithoutCancel(ctx)

	request, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ApplicantID != actorID {
		return nil, apperrors.NewPermissionDeniedError("only the applicant may cancel a request", "request_id", requestID)
	}
	if request.Status != domain.StatusDraft {
		return nil, apperrors.NewInvalidStateError("only draft requests can be cancelled",
			"request_id", requestID, "current_status", request.Status.String())
	}

	now := s.now()
	updated, err := s.apply(ctx, portsrepo.Transition{
		Change: domain.StatusChange{
			RequestID:   requestID,
			From:        domain.StatusDraft,
			To:          domain.StatusCancelled,
			CompletedAt: &now,
			At:          now,
		},
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Request cancelled", slog.String("request_id", requestID))
	return updated, nil
}

func (s *workflowService) StageFor(request domain.Request) (domain.Stage, error) {
	def, err := s.registry.Definition(request.RequestType)
	if err != nil {
		return domain.Stage{}, err
	}
	stage, ok := def.StageFor(request.Branch, request.Status)
	if !ok {
		return domain.Stage{}, apperrors.NewInvalidStateError("status is not a stage of the request's workflow",
			"request_id", request.RequestID,
			"current_status", request.Status.String(),
			"request_type", request.RequestType)
	}
	return stage, nil
}

// ---------------------------------------------------------------------------
// pending queue
// ---------------------------------------------------------------------------

func (s *workflowService) ListPendingForActor(ctx context.Context, actorID string, limit int) ([]domain.Request, error) {
	if limit <= 0 {
		limit = defaultPendingLimit
	}
	if limit > maxPendingLimit {
		limit = maxPendingLimit
	}

	perms, err := s.permissions.ResolvePermissions(ctx, actorID)
	if err != nil {
		return nil, err
	}
	statuses := s.registry.StagesRequiring(perms)
	if len(statuses) == 0 {
		return []domain.Request{}, nil
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	requests, err := s.requestRepo.ListRequestsByStatuses(sctx, statuses, limit)
	if err != nil {
		return nil, s.storeError(ctx, err, "failed to list pending requests", "actor_id", actorID)
	}
	return requests, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (s *workflowService) load(ctx context.Context, requestID string) (*domain.Request, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, apperrors.NewValidationFailedError("request id is required")
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	request, err := s.requestRepo.FindRequestByID(sctx, requestID)
	if err != nil {
		return nil, s.storeError(ctx, err, "failed to load request", "request_id", requestID)
	}
	return request, nil
}

func (s *workflowService) checkOrgUnit(ctx context.Context, orgUnitID string) error {
	if strings.TrimSpace(orgUnitID) == "" {
		return apperrors.NewValidationFailedError("organizational unit is required")
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	ok, err := s.orgUnits.OrgUnitExists(sctx, orgUnitID)
	if err != nil {
		return s.storeError(ctx, err, "failed to look up organizational unit", "org_unit_id", orgUnitID)
	}
	if !ok {
		return apperrors.NewValidationFailedError("unknown organizational unit", "org_unit_id", orgUnitID)
	}
	return nil
}

func (s *workflowService) checkApplicant(ctx context.Context, applicantID string) error {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	ok, err := s.users.UserExists(sctx, applicantID)
	if err != nil {
		return s.storeError(ctx, err, "failed to look up applicant", "applicant_id", applicantID)
	}
	if !ok {
		return apperrors.NewNotFoundError("applicant identity not found", "applicant_id", applicantID)
	}
	return nil
}

// checkDraftAmount rejects amounts the store would round.
func checkDraftAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.NewValidationFailedError("amount must not be negative", "amount", amount.String())
	}
	if -amount.Exponent() > maxAmountScale && !amount.Equal(amount.Truncate(maxAmountScale)) {
		return apperrors.NewValidationFailedError("amount has more than 4 decimal places", "amount", amount.String())
	}
	return nil
}

func (s *workflowService) apply(ctx context.Context, t portsrepo.Transition) (*domain.Request, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	updated, err := s.uow.ApplyTransition(sctx, t)
	if err != nil {
		switch apperrors.Kind(err) {
		case apperrors.KindStaleState:
			s.LogWarn(ctx, "Lost status race",
				slog.String("request_id", t.Change.RequestID),
				slog.String("expected_status", t.Change.From.String()))
		case apperrors.KindLedgerWrite:
			s.LogError(ctx, err, "Ledger append failed, status left unchanged",
				slog.String("request_id", t.Change.RequestID))
		}
		return nil, s.storeError(ctx, err, "failed to apply transition", "request_id", t.Change.RequestID)
	}
	return updated, nil
}

// notify emits an event without blocking the caller on delivery failures.
func (s *workflowService) notify(ctx context.Context, eventType domain.EventType, request *domain.Request, actorID string) {
	if s.notifier == nil {
		return
	}
	event := domain.NotificationEvent{
		EventType:  eventType,
		RequestID:  request.RequestID,
		NewStatus:  request.Status,
		ActorID:    actorID,
		OccurredAt: s.now(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.LogWarn(ctx, "Notification failed",
			slog.String("request_id", request.RequestID),
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
	}
}
