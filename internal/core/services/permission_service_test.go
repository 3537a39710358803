package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/core/ports"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/approval_engine/internal/core/ports/services"
	"github.com/SscSPs/approval_engine/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RBACRepository ---
type MockRBACRepository struct {
	mock.Mock
}

var _ portsrepo.RBACRepositoryFacade = (*MockRBACRepository)(nil)

func (m *MockRBACRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRBACRepository) FindPermissionCodesByUser(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRBACRepository) FindRoleByCode(ctx context.Context, roleCode string) (*domain.Role, error) {
	args := m.Called(ctx, roleCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockRBACRepository) SaveAssignment(ctx context.Context, assignment domain.Assignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockRBACRepository) DeactivateAssignment(ctx context.Context, userID, roleCode, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, userID, roleCode, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock PermissionCache ---
type MockPermissionCache struct {
	mock.Mock
}

var _ ports.PermissionCache = (*MockPermissionCache)(nil)

func (m *MockPermissionCache) Get(ctx context.Context, userID string) (domain.PermissionSet, bool) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.PermissionSet), args.Bool(1)
}

func (m *MockPermissionCache) Set(ctx context.Context, userID string, set domain.PermissionSet) {
	m.Called(ctx, userID, set)
}

func (m *MockPermissionCache) Invalidate(ctx context.Context, userID string) {
	m.Called(ctx, userID)
}

type PermissionServiceTestSuite struct {
	suite.Suite
	repo  *MockRBACRepository
	cache *MockPermissionCache
	svc   portssvc.PermissionSvcFacade
	ctx   context.Context
}

func (s *PermissionServiceTestSuite) SetupTest() {
	s.repo = new(MockRBACRepository)
	s.cache = new(MockPermissionCache)
	s.svc = services.NewPermissionService(s.repo, services.WithPermissionCache(s.cache))
	s.ctx = context.Background()
}

func TestPermissionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PermissionServiceTestSuite))
}

func (s *PermissionServiceTestSuite) TestResolve_CacheMiss() {
	s.cache.On("Get", s.ctx, "u1").Return(domain.PermissionSet{}, false).Once()
	s.repo.On("UserExists", mock.Anything, "u1").Return(true, nil).Once()
	s.repo.On("FindPermissionCodesByUser", mock.Anything, "u1").Return([]string{"a", "b"}, nil).Once()
	s.cache.On("Set", s.ctx, "u1", mock.AnythingOfType("domain.PermissionSet")).Return().Once()

	set, err := s.svc.ResolvePermissions(s.ctx, "u1")

	s.NoError(err)
	s.Equal([]string{"a", "b"}, set.Codes())
	s.repo.AssertExpectations(s.T())
	s.cache.AssertExpectations(s.T())
}

func (s *PermissionServiceTestSuite) TestResolve_CacheHitSkipsStore() {
	s.cache.On("Get", s.ctx, "u1").Return(domain.NewPermissionSet("cached"), true).Once()

	set, err := s.svc.ResolvePermissions(s.ctx, "u1")

	s.NoError(err)
	s.True(set.Has("cached"))
	s.repo.AssertNotCalled(s.T(), "UserExists", mock.Anything, mock.Anything)
}

func (s *PermissionServiceTestSuite) TestResolve_NoAssignmentsIsEmptyNotError() {
	s.cache.On("Get", s.ctx, "u2").Return(domain.PermissionSet{}, false)
	s.repo.On("UserExists", mock.Anything, "u2").Return(true, nil)
	s.repo.On("FindPermissionCodesByUser", mock.Anything, "u2").Return([]string{}, nil)
	s.cache.On("Set", s.ctx, "u2", mock.Anything).Return()

	set, err := s.svc.ResolvePermissions(s.ctx, "u2")

	s.NoError(err)
	s.True(set.IsEmpty())
}

func (s *PermissionServiceTestSuite) TestResolve_UnknownUserIsNotFound() {
	s.cache.On("Get", s.ctx, "ghost").Return(domain.PermissionSet{}, false)
	s.repo.On("UserExists", mock.Anything, "ghost").Return(false, nil)

	_, err := s.svc.ResolvePermissions(s.ctx, "ghost")

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.cache.AssertNotCalled(s.T(), "Set", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PermissionServiceTestSuite) TestResolve_StoreFailureIsHidden() {
	s.cache.On("Get", s.ctx, "u1").Return(domain.PermissionSet{}, false)
	s.repo.On("UserExists", mock.Anything, "u1").Return(false, errors.New("pq: connection refused"))

	_, err := s.svc.ResolvePermissions(s.ctx, "u1")

	s.ErrorIs(err, apperrors.ErrInternal)
	var appErr *apperrors.AppError
	s.Require().ErrorAs(err, &appErr)
	s.NotContains(appErr.Message, "connection refused")
}

func (s *PermissionServiceTestSuite) TestAssignRole_InvalidatesCache() {
	s.cache.On("Get", s.ctx, "admin").Return(domain.NewPermissionSet(domain.PermissionManageRoles), true)
	s.repo.On("UserExists", mock.Anything, "u1").Return(true, nil)
	s.repo.On("FindRoleByCode", mock.Anything, "approver").Return(&domain.Role{Code: "approver"}, nil)
	s.repo.On("SaveAssignment", mock.Anything, mock.MatchedBy(func(a domain.Assignment) bool {
		return a.UserID == "u1" && a.RoleCode == "approver" && a.IsActive && a.CreatedBy == "admin"
	})).Return(nil).Once()
	s.cache.On("Invalidate", s.ctx, "u1").Return().Once()

	err := s.svc.AssignRole(s.ctx, "admin", "u1", "approver")

	s.NoError(err)
	s.repo.AssertExpectations(s.T())
	s.cache.AssertExpectations(s.T())
}

func (s *PermissionServiceTestSuite) TestAssignRole_RequiresManagePermission() {
	s.cache.On("Get", s.ctx, "bob").Return(domain.NewPermissionSet("reimbursement:approve:low:1"), true)

	err := s.svc.AssignRole(s.ctx, "bob", "bob", "super_admin")

	s.ErrorIs(err, apperrors.ErrPermissionDenied)
	s.repo.AssertNotCalled(s.T(), "SaveAssignment", mock.Anything, mock.Anything)
}

func (s *PermissionServiceTestSuite) TestRevokeRole_UnknownAssignment() {
	s.cache.On("Get", s.ctx, "root").Return(domain.NewPermissionSet(domain.PermissionWildcard), true)
	s.repo.On("UserExists", mock.Anything, "u1").Return(true, nil)
	s.repo.On("FindRoleByCode", mock.Anything, "approver").Return(&domain.Role{Code: "approver"}, nil)
	s.repo.On("DeactivateAssignment", mock.Anything, "u1", "approver", "root", mock.AnythingOfType("time.Time")).
		Return(apperrors.NewNotFoundError("role assignment not found")).Once()

	err := s.svc.RevokeRole(s.ctx, "root", "u1", "approver")

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.cache.AssertNotCalled(s.T(), "Invalidate", mock.Anything, mock.Anything)
}

func TestRevokedRoleStopsGrantingAfterInvalidation(t *testing.T) {
	store := seedStore()
	svc := newContainer(store)
	ctx := context.Background()

	perms, err := svc.Permissions.ResolvePermissions(ctx, lowOne)
	assert.NoError(t, err)
	assert.True(t, perms.Has("reimbursement:approve:low:1"))

	assert.NoError(t, svc.Permissions.RevokeRole(ctx, superUser, lowOne, "reimb_low_1"))

	perms, err = svc.Permissions.ResolvePermissions(ctx, lowOne)
	assert.NoError(t, err)
	assert.False(t, perms.Has("reimbursement:approve:low:1"))

	assert.NoError(t, svc.Permissions.AssignRole(ctx, superUser, lowOne, "reimb_low_1"))
	perms, err = svc.Permissions.ResolvePermissions(ctx, lowOne)
	assert.NoError(t, err)
	assert.True(t, perms.Has("reimbursement:approve:low:1"))
}
