// Package sqlite stores requests, the approval ledger and RBAC data in a
// single SQLite database through database/sql.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed schema.sql
var schema string

// Store implements every repository port on one *sql.DB.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var (
	_ portsrepo.RequestRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerReader            = (*Store)(nil)
	_ portsrepo.UnitOfWork              = (*Store)(nil)
	_ portsrepo.RBACRepositoryFacade    = (*Store)(nil)
	_ portsrepo.OrgUnitReader           = (*Store)(nil)
	_ portsrepo.HealthChecker           = (*Store)(nil)
)

// Init creates the schema if it does not exist and seeds the default roles.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	for _, role := range domain.DefaultRoles() {
		if err := s.AddRole(ctx, role); err != nil {
			return err
		}
	}
	return nil
}

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

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isConstraint(err error, codes ...int) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	for _, c := range codes {
		if sqliteErr.Code() == c {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

func utc(t time.Time) time.Time { return t.UTC() }

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
