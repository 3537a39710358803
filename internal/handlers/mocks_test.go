package handlers_test

import (
	"context"
	"iter"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	portssvc "github.com/SscSPs/approval_engine/internal/core/ports/services"
	"github.com/SscSPs/approval_engine/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock WorkflowService ---
type MockWorkflowService struct {
	mock.Mock
}

var _ portssvc.WorkflowSvcFacade = (*MockWorkflowService)(nil)

func requestOrNil(args mock.Arguments) (*domain.Request, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Request), args.Error(1)
}

func (m *MockWorkflowService) CreateDraft(ctx context.Context, applicantID string, req dto.CreateRequestRequest) (*domain.Request, error) {
	return requestOrNil(m.Called(ctx, applicantID, req))
}

func (m *MockWorkflowService) UpdateDraft(ctx context.Context, requestID, applicantID string, req dto.UpdateRequestRequest) (*domain.Request, error) {
	return requestOrNil(m.Called(ctx, requestID, applicantID, req))
}

func (m *MockWorkflowService) GetRequest(ctx context.Context, requestID string) (*domain.Request, error) {
	return requestOrNil(m.Called(ctx, requestID))
}

func (m *MockWorkflowService) Submit(ctx context.Context, requestID, actorID string) (*domain.Request, error) {
	return requestOrNil(m.Called(ctx, requestID, actorID))
}

func (m *MockWorkflowService) Approve(ctx context.Context, requestID, actorID string, comment *string) (*domain.Request, error) {
	return requestOrNil(m.Called(ctx, requestID, actorID, comment))
}

func (m *MockWorkflowService) Reject(ctx context.Context, requestID, actorID, reason string) (*domain.Request, error) {
	return requestOrNil(m.Called(ctx, requestID, actorID, reason))
}

func (m *MockWorkflowService) Cancel(ctx context.Context, requestID, actorID string) (*domain.Request, error) {
	return requestOrNil(m.Called(ctx, requestID, actorID))
}

func (m *MockWorkflowService) ApplyDecision(ctx context.Context, snapshot domain.Request, in portssvc.DecisionInput) (*domain.Request, error) {
	return requestOrNil(m.Called(ctx, snapshot, in))
}

func (m *MockWorkflowService) StageFor(request domain.Request) (domain.Stage, error) {
	args := m.Called(request)
	return args.Get(0).(domain.Stage), args.Error(1)
}

func (m *MockWorkflowService) ListPendingForActor(ctx context.Context, actorID string, limit int) ([]domain.Request, error) {
	args := m.Called(ctx, actorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Request), args.Error(1)
}

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.ApprovalLedgerSvc = (*MockLedgerService)(nil)

func (m *MockLedgerService) History(ctx context.Context, requestID string) iter.Seq2[domain.ApprovalRecord, error] {
	args := m.Called(ctx, requestID)
	return args.Get(0).(iter.Seq2[domain.ApprovalRecord, error])
}

func (m *MockLedgerService) ListHistory(ctx context.Context, requestID string, params dto.ListHistoryParams) (*dto.ListHistoryResponse, error) {
	args := m.Called(ctx, requestID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListHistoryResponse), args.Error(1)
}

// --- Mock BatchService ---
type MockBatchService struct {
	mock.Mock
}

var _ portssvc.BatchProcessorSvc = (*MockBatchService)(nil)

func (m *MockBatchService) BatchApprove(ctx context.Context, requestIDs []string, actorID string, comment *string) (*domain.BatchResult, error) {
	args := m.Called(ctx, requestIDs, actorID, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchResult), args.Error(1)
}

func (m *MockBatchService) BatchReject(ctx context.Context, requestIDs []string, actorID, reason string) (*domain.BatchResult, error) {
	args := m.Called(ctx, requestIDs, actorID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchResult), args.Error(1)
}

// --- Mock PermissionService ---
type MockPermissionService struct {
	mock.Mock
}

var _ portssvc.PermissionSvcFacade = (*MockPermissionService)(nil)

func (m *MockPermissionService) ResolvePermissions(ctx context.Context, userID string) (domain.PermissionSet, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.PermissionSet), args.Error(1)
}

func (m *MockPermissionService) AssignRole(ctx context.Context, actorID, userID, roleCode string) error {
	return m.Called(ctx, actorID, userID, roleCode).Error(0)
}

func (m *MockPermissionService) RevokeRole(ctx context.Context, actorID, userID, roleCode string) error {
	return m.Called(ctx, actorID, userID, roleCode).Error(0)
}
