package services

import (
	"context"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/dto"
)

// RequestDraftSvc defines the applicant-side operations on requests
type RequestDraftSvc interface {
	// CreateDraft persists a new request in draft owned by applicantID.
	CreateDraft(ctx context.Context, applicantID string, req dto.CreateRequestRequest) (*domain.Request, error)

	// UpdateDraft edits a draft. Only the applicant may edit, and only while draft.
	UpdateDraft(ctx context.Context, requestID, applicantID string, req dto.UpdateRequestRequest) (*domain.Request, error)

	// GetRequest retrieves a request by id.
	GetRequest(ctx context.Context, requestID string) (*domain.Request, error)
}

// DecisionInput is a single approve or reject decision against a request
// snapshot, with the actor's permissions already resolved.
type DecisionInput struct {
	Decision    domain.Decision
	ActorID     string
	Note        *string
	Permissions domain.PermissionSet
}

// WorkflowEngineSvc applies state machine transitions
type WorkflowEngineSvc interface {
	// Submit routes a draft to the first stage of the branch selected by its amount.
	Submit(ctx context.Context, requestID, actorID string) (*domain.Request, error)

	// Approve advances a pending request past its current stage.
	Approve(ctx context.Context, requestID, actorID string, comment *string) (*domain.Request, error)

	// Reject ends a pending request. reason must not be empty.
	Reject(ctx context.Context, requestID, actorID, reason string) (*domain.Request, error)

	// Cancel abandons a draft. Only the applicant may cancel.
	Cancel(ctx context.Context, requestID, actorID string) (*domain.Request, error)

	// ApplyDecision authorizes and applies in against snapshot, guarded by the
	// snapshot's status. Used by the batch processor.
	ApplyDecision(ctx context.Context, snapshot domain.Request, in DecisionInput) (*domain.Request, error)

	// StageFor returns the stage definition a pending request is currently in.
	StageFor(request domain.Request) (domain.Stage, error)
}

// PendingQueueSvc lists work waiting on an actor
type PendingQueueSvc interface {
	// ListPendingForActor returns pending requests whose current stage the actor may decide.
	ListPendingForActor(ctx context.Context, actorID string, limit int) ([]domain.Request, error)
}

// WorkflowSvcFacade combines all request-related service interfaces
type WorkflowSvcFacade interface {
	RequestDraftSvc
	WorkflowEngineSvc
	PendingQueueSvc
}
