package repositories

import (
	"context"

	"github.com/SscSPs/approval_engine/internal/core/domain"
)

// RequestReader defines read operations for approval requests
type RequestReader interface {
	// FindRequestByID retrieves a request by its identifier. Returns a NotFound error when absent.
	FindRequestByID(ctx context.Context, requestID string) (*domain.Request, error)

	// FindRequestsByIDs retrieves every request that exists among requestIDs in a single
	// consistent read. Unknown ids are omitted from the result.
	FindRequestsByIDs(ctx context.Context, requestIDs []string) ([]domain.Request, error)

	// ListRequestsByStatuses returns up to limit requests currently in one of statuses,
	// oldest submission first.
	ListRequestsByStatuses(ctx context.Context, statuses []domain.RequestStatus, limit int) ([]domain.Request, error)
}

// RequestWriter defines write operations that do not involve the ledger
type RequestWriter interface {
	// SaveRequest inserts a new draft request.
	SaveRequest(ctx context.Context, request domain.Request) error

	// UpdateDraft overwrites the editable fields of a request whose stored status is still
	// draft. Returns a StaleState error when the request has left draft.
	UpdateDraft(ctx context.Context, request domain.Request) error
}

// RequestRepositoryFacade combines all request-related repository interfaces
type RequestRepositoryFacade interface {
	RequestReader
	RequestWriter
}
