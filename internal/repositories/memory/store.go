// Package memory is an in-process implementation of every store port. A
// single mutex serializes writers, which makes ApplyTransition trivially
// atomic.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
)

// Store keeps requests, the ledger and RBAC data in maps. All API methods
// work with copies to eliminate data races between goroutines.
type Store struct {
	mux sync.RWMutex

	requests    map[string]domain.Request
	ledger      map[string][]domain.ApprovalRecord
	users       map[string]bool
	orgUnits    map[string]bool
	roles       map[string]domain.Role
	assignments map[string]map[string]domain.Assignment // userID -> roleCode

	ledgerFault func(domain.ApprovalRecord) error
}

var (
	_ portsrepo.RequestRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerReader            = (*Store)(nil)
	_ portsrepo.UnitOfWork              = (*Store)(nil)
	_ portsrepo.RBACRepositoryFacade    = (*Store)(nil)
	_ portsrepo.OrgUnitReader           = (*Store)(nil)
	_ portsrepo.HealthChecker           = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{
		requests:    map[string]domain.Request{},
		ledger:      map[string][]domain.ApprovalRecord{},
		users:       map[string]bool{},
		orgUnits:    map[string]bool{},
		roles:       map[string]domain.Role{},
		assignments: map[string]map[string]domain.Assignment{},
	}
}

// Provider exposes the store through every repository port.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RequestRepo:    s,
		LedgerRepo:     s,
		TransitionRepo: s,
		RBACRepo:       s,
		OrgUnitRepo:    s,
		Health:         s,
	}
}

func (s *Store) Ping(context.Context) error { return nil }

// SetLedgerFault makes every ledger append call fn first; a non-nil result
// fails the append. Pass nil to clear.
func (s *Store) SetLedgerFault(fn func(domain.ApprovalRecord) error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.ledgerFault = fn
}

// ---------------------------------------------------------------------------
// requests
// ---------------------------------------------------------------------------

func (s *Store) SaveRequest(_ context.Context, request domain.Request) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.requests[request.RequestID]; ok {
		return apperrors.NewConflictError("request already exists", "request_id", request.RequestID)
	}
	s.requests[request.RequestID] = request
	return nil
}

func (s *Store) UpdateDraft(_ context.Context, request domain.Request) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	current, ok := s.requests[request.RequestID]
	if !ok {
		return apperrors.NewNotFoundError("request not found", "request_id", request.RequestID)
	}
	if current.Status != domain.StatusDraft {
		return apperrors.NewStaleStateError("request is no longer a draft", "request_id", request.RequestID)
	}
	current.Amount = request.Amount
	current.OrgUnitID = request.OrgUnitID
	current.LastUpdatedAt = request.LastUpdatedAt
	s.requests[request.RequestID] = current
	return nil
}

func (s *Store) FindRequestByID(_ context.Context, requestID string) (*domain.Request, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, apperrors.NewNotFoundError("request not found", "request_id", requestID)
	}
	return &r, nil
}

func (s *Store) FindRequestsByIDs(_ context.Context, requestIDs []string) ([]domain.Request, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make([]domain.Request, 0, len(requestIDs))
	for _, id := range requestIDs {
		if r, ok := s.requests[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ListRequestsByStatuses(_ context.Context, statuses []domain.RequestStatus, limit int) ([]domain.Request, error) {
	want := make(map[domain.RequestStatus]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}

	s.mux.RLock()
	out := make([]domain.Request, 0)
	for _, r := range s.requests {
		if want[r.Status] {
			out = append(out, r)
		}
	}
	s.mux.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ti, tj := submittedOrCreated(out[i]), submittedOrCreated(out[j])
		if ti.Equal(tj) {
			return out[i].RequestID < out[j].RequestID
		}
		return ti.Before(tj)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func submittedOrCreated(r domain.Request) time.Time {
	if r.SubmittedAt != nil {
		return *r.SubmittedAt
	}
	return r.CreatedAt
}

// ---------------------------------------------------------------------------
// ledger
// ---------------------------------------------------------------------------

func (s *Store) ListRecords(_ context.Context, requestID string, afterSequence int64, limit int) ([]domain.ApprovalRecord, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	records := s.ledger[requestID]
	// Records are stored in sequence order, so the first match starts the page.
	start := sort.Search(len(records), func(i int) bool { return records[i].SequenceNumber > afterSequence })
	end := len(records)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	out := make([]domain.ApprovalRecord, end-start)
	copy(out, records[start:end])
	return out, nil
}

func (s *Store) FindLatestRecord(_ context.Context, requestID string) (*domain.ApprovalRecord, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	records := s.ledger[requestID]
	if len(records) == 0 {
		return nil, nil
	}
	latest := records[len(records)-1]
	return &latest, nil
}

// ApplyTransition appends the record and swaps the status under one lock.
func (s *Store) ApplyTransition(_ context.Context, t portsrepo.Transition) (*domain.Request, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	current, ok := s.requests[t.Change.RequestID]
	if !ok {
		return nil, apperrors.NewNotFoundError("request not found", "request_id", t.Change.RequestID)
	}
	if current.Status != t.Change.From {
		return nil, apperrors.NewStaleStateError("request status changed concurrently",
			"request_id", t.Change.RequestID,
			"expected_status", string(t.Change.From),
			"current_status", string(current.Status))
	}
	if !t.Change.AmountMatches(current.Amount) {
		return nil, apperrors.NewStaleStateError("request amount changed concurrently",
			"request_id", t.Change.RequestID,
			"expected_amount", t.Change.Amount.String(),
			"current_amount", current.Amount.String())
	}

	if t.Record != nil {
		if s.ledgerFault != nil {
			if err := s.ledgerFault(*t.Record); err != nil {
				return nil, apperrors.NewLedgerWriteError("failed to append approval record", err, "request_id", t.Change.RequestID)
			}
		}
		records := s.ledger[t.Change.RequestID]
		t.Record.SequenceNumber = int64(len(records)) + 1
		s.ledger[t.Change.RequestID] = append(records, *t.Record)
	}

	updated := t.Change.Apply(current)
	s.requests[t.Change.RequestID] = updated
	return &updated, nil
}

// ---------------------------------------------------------------------------
// RBAC
// ---------------------------------------------------------------------------

// AddUser registers an identity.
func (s *Store) AddUser(userID string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.users[userID] = true
}

// AddOrgUnit registers an organizational unit.
func (s *Store) AddOrgUnit(orgUnitID string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.orgUnits[orgUnitID] = true
}

// AddRole registers or replaces a role.
func (s *Store) AddRole(role domain.Role) {
	s.mux.Lock()
	defer s.mux.Unlock()
	role.Permissions = append([]string(nil), role.Permissions...)
	s.roles[role.Code] = role
}

// SeedDefaultRoles adds domain.DefaultRoles.
func (s *Store) SeedDefaultRoles() {
	for _, role := range domain.DefaultRoles() {
		s.AddRole(role)
	}
}

// Grant registers userID, a role holding permissions, and an active assignment in one step.
func (s *Store) Grant(userID, roleCode string, permissions ...string) {
	s.AddUser(userID)
	s.AddRole(domain.Role{Code: roleCode, Permissions: permissions})
	_ = s.SaveAssignment(context.Background(), domain.Assignment{
		UserID:   userID,
		RoleCode: roleCode,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     time.Now().UTC(),
			CreatedBy:     "seed",
			LastUpdatedAt: time.Now().UTC(),
			LastUpdatedBy: "seed",
		},
	})
}

func (s *Store) UserExists(_ context.Context, userID string) (bool, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.users[userID], nil
}

func (s *Store) FindPermissionCodesByUser(_ context.Context, userID string) ([]string, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	seen := map[string]bool{}
	codes := []string{}
	for roleCode, a := range s.assignments[userID] {
		if !a.IsActive {
			continue
		}
		for _, p := range s.roles[roleCode].Permissions {
			if !seen[p] {
				seen[p] = true
				codes = append(codes, p)
			}
		}
	}
	sort.Strings(codes)
	return codes, nil
}

func (s *Store) FindRoleByCode(_ context.Context, roleCode string) (*domain.Role, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	role, ok := s.roles[roleCode]
	if !ok {
		return nil, apperrors.NewNotFoundError("role not found", "role_code", roleCode)
	}
	role.Permissions = append([]string(nil), role.Permissions...)
	return &role, nil
}

func (s *Store) SaveAssignment(_ context.Context, assignment domain.Assignment) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	byRole, ok := s.assignments[assignment.UserID]
	if !ok {
		byRole = map[string]domain.Assignment{}
		s.assignments[assignment.UserID] = byRole
	}
	if existing, ok := byRole[assignment.RoleCode]; ok {
		assignment.CreatedAt = existing.CreatedAt
		assignment.CreatedBy = existing.CreatedBy
	}
	assignment.IsActive = true
	byRole[assignment.RoleCode] = assignment
	return nil
}

func (s *Store) DeactivateAssignment(_ context.Context, userID, roleCode, updatedBy string, updatedAt time.Time) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	a, ok := s.assignments[userID][roleCode]
	if !ok || !a.IsActive {
		return apperrors.NewNotFoundError("role assignment not found", "user_id", userID, "role_code", roleCode)
	}
	a.IsActive = false
	a.LastUpdatedBy = updatedBy
	a.LastUpdatedAt = updatedAt
	s.assignments[userID][roleCode] = a
	return nil
}

func (s *Store) OrgUnitExists(_ context.Context, orgUnitID string) (bool, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.orgUnits[orgUnitID], nil
}
