package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	"github.com/SscSPs/approval_engine/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxRBACRepository struct {
	BaseRepository
}

func newPgxRBACRepository(pool *pgxpool.Pool) *PgxRBACRepository {
	return &PgxRBACRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.RBACRepositoryFacade = (*PgxRBACRepository)(nil)
	_ portsrepo.OrgUnitReader        = (*PgxRBACRepository)(nil)
)

func (r *PgxRBACRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1);`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user %s: %w", userID, err)
	}
	return exists, nil
}

func (r *PgxRBACRepository) OrgUnitExists(ctx context.Context, orgUnitID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM org_units WHERE org_unit_id = $1);`, orgUnitID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check org unit %s: %w", orgUnitID, err)
	}
	return exists, nil
}

// FindPermissionCodesByUser joins assignments to role permissions in a single read.
func (r *PgxRBACRepository) FindPermissionCodesByUser(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT DISTINCT rp.permission_code
		FROM role_assignments ra
		JOIN role_permissions rp ON rp.role_code = ra.role_code
		WHERE ra.user_id = $1 AND ra.is_active
		ORDER BY rp.permission_code;`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query permissions for %s: %w", userID, err)
	}
	codes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan permissions for %s: %w", userID, err)
	}
	if codes == nil {
		codes = []string{}
	}
	return codes, nil
}

func (r *PgxRBACRepository) FindRoleByCode(ctx context.Context, roleCode string) (*domain.Role, error) {
	var code string
	err := r.Pool.QueryRow(ctx, `SELECT role_code FROM roles WHERE role_code = $1;`, roleCode).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("role not found", "role_code", roleCode)
		}
		return nil, fmt.Errorf("failed to find role %s: %w", roleCode, err)
	}

	rows, err := r.Pool.Query(ctx,
		`SELECT permission_code FROM role_permissions WHERE role_code = $1 ORDER BY permission_code;`, roleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query permissions of role %s: %w", roleCode, err)
	}
	perms, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan permissions of role %s: %w", roleCode, err)
	}
	return &domain.Role{Code: code, Permissions: perms}, nil
}

func (r *PgxRBACRepository) SaveAssignment(ctx context.Context, assignment domain.Assignment) error {
	m := models.ToModelRoleAssignment(assignment)
	query := `
		INSERT INTO role_assignments (user_id, role_code, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, TRUE, $3, $4, $5, $6)
		ON CONFLICT (user_id, role_code) DO UPDATE SET
			is_active = TRUE,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;`
	_, err := r.Pool.Exec(ctx, query,
		m.UserID,
		m.RoleCode,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save role assignment: %w", err)
	}
	return nil
}

func (r *PgxRBACRepository) DeactivateAssignment(ctx context.Context, userID, roleCode, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE role_assignments
		SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE user_id = $1 AND role_code = $2 AND is_active;`
	tag, err := r.Pool.Exec(ctx, query, userID, roleCode, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to deactivate role assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("role assignment not found", "user_id", userID, "role_code", roleCode)
	}
	return nil
}
