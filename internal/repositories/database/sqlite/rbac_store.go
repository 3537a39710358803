package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/models"
)

func (s *Store) UserExists(ctx context.Context, userID string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = ?)`, userID)
}

func (s *Store) OrgUnitExists(ctx context.Context, orgUnitID string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM org_units WHERE org_unit_id = ?)`, orgUnitID)
}

func (s *Store) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed existence check: %w", err)
	}
	return exists, nil
}

func (s *Store) FindPermissionCodesByUser(ctx context.Context, userID string) ([]string, error) {
	return s.strings(ctx, `
		SELECT DISTINCT rp.permission_code
		FROM role_assignments ra
		JOIN role_permissions rp ON rp.role_code = ra.role_code
		WHERE ra.user_id = ? AND ra.is_active = 1
		ORDER BY rp.permission_code`, userID)
}

func (s *Store) FindRoleByCode(ctx context.Context, roleCode string) (*domain.Role, error) {
	var code string
	err := s.db.QueryRowContext(ctx, `SELECT role_code FROM roles WHERE role_code = ?`, roleCode).Scan(&code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("role not found", "role_code", roleCode)
		}
		return nil, fmt.Errorf("failed to find role %s: %w", roleCode, err)
	}
	perms, err := s.strings(ctx,
		`SELECT permission_code FROM role_permissions WHERE role_code = ? ORDER BY permission_code`, roleCode)
	if err != nil {
		return nil, err
	}
	return &domain.Role{Code: code, Permissions: perms}, nil
}

func (s *Store) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query codes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan code: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) SaveAssignment(ctx context.Context, assignment domain.Assignment) error {
	m := models.ToModelRoleAssignment(assignment)
	query := `
		INSERT INTO role_assignments (user_id, role_code, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES (?, ?, 1, ?, ?, ?, ?)
		ON CONFLICT (user_id, role_code) DO UPDATE SET
			is_active = 1,
			last_updated_at = excluded.last_updated_at,
			last_updated_by = excluded.last_updated_by`
	_, err := s.db.ExecContext(ctx, query,
		m.UserID,
		m.RoleCode,
		utc(m.CreatedAt),
		m.CreatedBy,
		utc(m.LastUpdatedAt),
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save role assignment: %w", err)
	}
	return nil
}

func (s *Store) DeactivateAssignment(ctx context.Context, userID, roleCode, updatedBy string, updatedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE role_assignments
		SET is_active = 0, last_updated_at = ?, last_updated_by = ?
		WHERE user_id = ? AND role_code = ? AND is_active = 1`,
		utc(updatedAt), updatedBy, userID, roleCode)
	if err != nil {
		return fmt.Errorf("failed to deactivate role assignment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError("role assignment not found", "user_id", userID, "role_code", roleCode)
	}
	return nil
}

// AddUser registers an identity. Existing users are left untouched.
func (s *Store) AddUser(ctx context.Context, userID, name string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (user_id, name) VALUES (?, ?) ON CONFLICT (user_id) DO NOTHING`, userID, name)
	if err != nil {
		return fmt.Errorf("failed to add user %s: %w", userID, err)
	}
	return nil
}

func (s *Store) AddOrgUnit(ctx context.Context, orgUnitID, name string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO org_units (org_unit_id, name) VALUES (?, ?) ON CONFLICT (org_unit_id) DO NOTHING`, orgUnitID, name)
	if err != nil {
		return fmt.Errorf("failed to add org unit %s: %w", orgUnitID, err)
	}
	return nil
}

// AddRole creates a role and its permission codes in one transaction.
func (s *Store) AddRole(ctx context.Context, role domain.Role) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO roles (role_code) VALUES (?) ON CONFLICT (role_code) DO NOTHING`, role.Code); err != nil {
		return fmt.Errorf("failed to add role %s: %w", role.Code, err)
	}
	for _, p := range role.Permissions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO role_permissions (role_code, permission_code) VALUES (?, ?) ON CONFLICT DO NOTHING`, role.Code, p); err != nil {
			return fmt.Errorf("failed to add permission %s to role %s: %w", p, role.Code, err)
		}
	}
	return tx.Commit()
}
