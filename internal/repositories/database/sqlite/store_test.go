package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	"github.com/SscSPs/approval_engine/internal/repositories/database/sqlite"
	"github.com/SscSPs/approval_engine/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SQLiteStoreTestSuite struct {
	suite.Suite
	store *sqlite.Store
	ctx   context.Context
	now   time.Time
}

func TestSQLiteStoreTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreTestSuite))
}

func (s *SQLiteStoreTestSuite) SetupTest() {
	db, err := database.OpenSQLite(":memory:")
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })

	s.ctx = context.Background()
	s.now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	s.store = sqlite.New(db)
	s.Require().NoError(s.store.Init(s.ctx))
	s.Require().NoError(s.store.AddUser(s.ctx, "alice", "Alice"))
	s.Require().NoError(s.store.AddUser(s.ctx, "bob", "Bob"))
	s.Require().NoError(s.store.AddOrgUnit(s.ctx, "ou-finance", "Finance"))
}

func (s *SQLiteStoreTestSuite) draft(id string, amount string) domain.Request {
	req := domain.Request{
		RequestID:     id,
		RequestType:   "reimbursement",
		Amount:        decimal.RequireFromString(amount),
		ApplicantID:   "alice",
		OrgUnitID:     "ou-finance",
		Status:        domain.StatusDraft,
		CreatedAt:     s.now,
		LastUpdatedAt: s.now,
	}
	s.Require().NoError(s.store.SaveRequest(s.ctx, req))
	return req
}

func (s *SQLiteStoreTestSuite) submit(id string) {
	at := s.now.Add(time.Minute)
	_, err := s.store.ApplyTransition(s.ctx, portsrepo.Transition{Change: domain.StatusChange{
		RequestID:   id,
		From:        domain.StatusDraft,
		To:          "low_amount_stage_1",
		Branch:      domain.BranchLow,
		SubmittedAt: &at,
		At:          at,
	}})
	s.Require().NoError(err)
}

func (s *SQLiteStoreTestSuite) approve(id string, from, to domain.RequestStatus) (*domain.Request, *domain.ApprovalRecord, error) {
	record := &domain.ApprovalRecord{
		RecordID:        id + "-" + string(from),
		RequestID:       id,
		ActorID:         "bob",
		StageKey:        string(from),
		Decision:        domain.DecisionApproved,
		ResultingStatus: to,
		Timestamp:       s.now.Add(2 * time.Minute),
	}
	updated, err := s.store.ApplyTransition(s.ctx, portsrepo.Transition{
		Change: domain.StatusChange{RequestID: id, From: from, To: to, At: s.now.Add(2 * time.Minute)},
		Record: record,
	})
	return updated, record, err
}

func (s *SQLiteStoreTestSuite) TestSaveAndFindRoundTrip() {
	s.draft("r-1", "120.50")

	got, err := s.store.FindRequestByID(s.ctx, "r-1")
	s.Require().NoError(err)
	s.Equal(domain.StatusDraft, got.Status)
	s.True(decimal.RequireFromString("120.50").Equal(got.Amount))
	s.Nil(got.SubmittedAt)
	s.Equal(domain.Branch(""), got.Branch)

	err = s.store.SaveRequest(s.ctx, domain.Request{RequestID: "r-1", ApplicantID: "alice", OrgUnitID: "ou-finance", CreatedAt: s.now, LastUpdatedAt: s.now})
	s.ErrorIs(err, apperrors.ErrConflict)

	_, err = s.store.FindRequestByID(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *SQLiteStoreTestSuite) TestUpdateDraftOnlyWhileDraft() {
	req := s.draft("r-1", "100")
	req.Amount = decimal.NewFromInt(250)
	s.Require().NoError(s.store.UpdateDraft(s.ctx, req))

	s.submit("r-1")
	req.Amount = decimal.NewFromInt(99999)
	s.ErrorIs(s.store.UpdateDraft(s.ctx, req), apperrors.ErrStaleState)

	got, err := s.store.FindRequestByID(s.ctx, "r-1")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(250).Equal(got.Amount))
	s.Equal(domain.BranchLow, got.Branch)
	s.NotNil(got.SubmittedAt)
}

func (s *SQLiteStoreTestSuite) TestApplyTransitionAppendsWithSequence() {
	s.draft("r-1", "100")
	s.submit("r-1")

	updated, record, err := s.approve("r-1", "low_amount_stage_1", "low_amount_stage_2")
	s.Require().NoError(err)
	s.Equal(domain.RequestStatus("low_amount_stage_2"), updated.Status)
	s.Equal(int64(1), record.SequenceNumber)

	_, record, err = s.approve("r-1", "low_amount_stage_2", domain.StatusApproved)
	s.Require().NoError(err)
	s.Equal(int64(2), record.SequenceNumber)

	records, err := s.store.ListRecords(s.ctx, "r-1", 0, 0)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("low_amount_stage_1", records[0].StageKey)
	s.Equal(domain.StatusApproved, records[1].ResultingStatus)

	page, err := s.store.ListRecords(s.ctx, "r-1", 1, 10)
	s.Require().NoError(err)
	s.Len(page, 1)

	latest, err := s.store.FindLatestRecord(s.ctx, "r-1")
	s.Require().NoError(err)
	s.Equal(int64(2), latest.SequenceNumber)
}

func (s *SQLiteStoreTestSuite) TestStaleTransitionWritesNothing() {
	s.draft("r-1", "100")
	s.submit("r-1")
	_, _, err := s.approve("r-1", "low_amount_stage_1", "low_amount_stage_2")
	s.Require().NoError(err)

	_, _, err = s.approve("r-1", "low_amount_stage_1", "low_amount_stage_2")
	s.ErrorIs(err, apperrors.ErrStaleState)

	records, err := s.store.ListRecords(s.ctx, "r-1", 0, 0)
	s.Require().NoError(err)
	s.Len(records, 1)

	_, _, err = s.approve("nope", "low_amount_stage_1", "low_amount_stage_2")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *SQLiteStoreTestSuite) TestListByStatusesAndIDs() {
	s.draft("r-1", "100")
	s.draft("r-2", "200")
	s.draft("r-3", "300")
	s.submit("r-2")

	pending, err := s.store.ListRequestsByStatuses(s.ctx, []domain.RequestStatus{"low_amount_stage_1"}, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal("r-2", pending[0].RequestID)

	drafts, err := s.store.ListRequestsByStatuses(s.ctx, []domain.RequestStatus{domain.StatusDraft}, 1)
	s.Require().NoError(err)
	s.Len(drafts, 1)

	found, err := s.store.FindRequestsByIDs(s.ctx, []string{"r-1", "ghost", "r-3"})
	s.Require().NoError(err)
	s.Len(found, 2)
}

func (s *SQLiteStoreTestSuite) TestRBAC() {
	s.Require().NoError(s.store.AddRole(s.ctx, domain.Role{Code: "approver", Permissions: []string{"b", "a"}}))
	s.Require().NoError(s.store.AddRole(s.ctx, domain.Role{Code: "other", Permissions: []string{"a", "c"}}))

	ok, err := s.store.UserExists(s.ctx, "bob")
	s.Require().NoError(err)
	s.True(ok)
	ok, err = s.store.OrgUnitExists(s.ctx, "ou-none")
	s.Require().NoError(err)
	s.False(ok)

	codes, err := s.store.FindPermissionCodesByUser(s.ctx, "bob")
	s.Require().NoError(err)
	s.Empty(codes)

	for _, role := range []string{"approver", "other"} {
		s.Require().NoError(s.store.SaveAssignment(s.ctx, domain.Assignment{
			UserID: "bob", RoleCode: role, IsActive: true,
			AuditFields: domain.AuditFields{CreatedAt: s.now, CreatedBy: "root", LastUpdatedAt: s.now, LastUpdatedBy: "root"},
		}))
	}
	codes, err = s.store.FindPermissionCodesByUser(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal([]string{"a", "b", "c"}, codes)

	s.Require().NoError(s.store.DeactivateAssignment(s.ctx, "bob", "other", "root", s.now))
	codes, err = s.store.FindPermissionCodesByUser(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal([]string{"a", "b"}, codes)

	s.ErrorIs(s.store.DeactivateAssignment(s.ctx, "bob", "other", "root", s.now), apperrors.ErrNotFound)

	role, err := s.store.FindRoleByCode(s.ctx, "approver")
	s.Require().NoError(err)
	s.Equal([]string{"a", "b"}, role.Permissions)
	_, err = s.store.FindRoleByCode(s.ctx, "ghost")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func TestPingOnClosedDatabaseFails(t *testing.T) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	store := sqlite.New(db)
	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, db.Close())
	assert.Error(t, store.Ping(context.Background()))
}

func (s *SQLiteStoreTestSuite) TestSubmitRollsBackWhenAmountMoved() {
	req := s.draft("r-1", "25000")
	req.Amount = decimal.NewFromInt(50000)
	s.Require().NoError(s.store.UpdateDraft(s.ctx, req))

	read := decimal.RequireFromString("25000.00")
	at := s.now.Add(time.Minute)
	_, err := s.store.ApplyTransition(s.ctx, portsrepo.Transition{Change: domain.StatusChange{
		RequestID:   "r-1",
		From:        domain.StatusDraft,
		To:          "low_amount_stage_1",
		Branch:      domain.BranchLow,
		SubmittedAt: &at,
		At:          at,
		Amount:      &read,
	}})
	s.ErrorIs(err, apperrors.ErrStaleState)

	got, err := s.store.FindRequestByID(s.ctx, "r-1")
	s.Require().NoError(err)
	s.Equal(domain.StatusDraft, got.Status)
	s.Equal(domain.Branch(""), got.Branch)
	s.Nil(got.SubmittedAt)
}

func (s *SQLiteStoreTestSuite) TestInitSeedsDefaultRoles() {
	s.Require().NoError(s.store.Init(s.ctx))

	for _, want := range domain.DefaultRoles() {
		role, err := s.store.FindRoleByCode(s.ctx, want.Code)
		s.Require().NoError(err, want.Code)
		s.Equal(want.Permissions, role.Permissions)
	}
}
