package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	"github.com/SscSPs/approval_engine/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxRequestRepository struct {
	BaseRepository
}

func newPgxRequestRepository(pool *pgxpool.Pool) *PgxRequestRepository {
	return &PgxRequestRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RequestRepositoryFacade = (*PgxRequestRepository)(nil)

func (r *PgxRequestRepository) SaveRequest(ctx context.Context, request domain.Request) error {
	m := models.ToModelRequest(request)
	query := `
		INSERT INTO requests (` + models.RequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RequestID,
		m.RequestType,
		m.Amount,
		m.ApplicantID,
		m.OrgUnitID,
		m.Status,
		m.Branch,
		m.CreatedAt,
		m.SubmittedAt,
		m.CompletedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("request already exists", "request_id", m.RequestID)
		}
		return fmt.Errorf("failed to insert request %s: %w", m.RequestID, err)
	}
	return nil
}

// UpdateDraft only touches rows still in draft; a zero row count means the
// request either left draft or does not exist.
func (r *PgxRequestRepository) UpdateDraft(ctx context.Context, request domain.Request) error {
	query := `
		UPDATE requests
		SET amount = $2, org_unit_id = $3, last_updated_at = $4
		WHERE request_id = $1 AND status = $5;
	`
	tag, err := r.Pool.Exec(ctx, query,
		request.RequestID,
		request.Amount,
		request.OrgUnitID,
		request.LastUpdatedAt,
		string(domain.StatusDraft),
	)
	if err != nil {
		return fmt.Errorf("failed to update draft %s: %w", request.RequestID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.FindRequestByID(ctx, request.RequestID); err != nil {
			return err
		}
		return apperrors.NewStaleStateError("request is no longer a draft", "request_id", request.RequestID)
	}
	return nil
}

func (r *PgxRequestRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.Request, error) {
	query := `SELECT ` + models.RequestColumns + ` FROM requests WHERE request_id = $1;`
	var m models.Request
	if err := r.Pool.QueryRow(ctx, query, requestID).Scan(m.ScanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("request not found", "request_id", requestID)
		}
		return nil, fmt.Errorf("failed to find request %s: %w", requestID, err)
	}
	d := m.ToDomain()
	return &d, nil
}

// FindRequestsByIDs reads every listed request in one statement, so the batch
// precondition sees a single snapshot.
func (r *PgxRequestRepository) FindRequestsByIDs(ctx context.Context, requestIDs []string) ([]domain.Request, error) {
	if len(requestIDs) == 0 {
		return []domain.Request{}, nil
	}
	query := `SELECT ` + models.RequestColumns + ` FROM requests WHERE request_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests by ids: %w", err)
	}
	return collectRequests(rows)
}

func (r *PgxRequestRepository) ListRequestsByStatuses(ctx context.Context, statuses []domain.RequestStatus, limit int) ([]domain.Request, error) {
	if len(statuses) == 0 {
		return []domain.Request{}, nil
	}
	codes := make([]string, len(statuses))
	for i, s := range statuses {
		codes[i] = string(s)
	}

	query := `
		SELECT ` + models.RequestColumns + `
		FROM requests
		WHERE status = ANY($1)
		ORDER BY COALESCE(submitted_at, created_at), request_id`
	args := []any{codes}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests by status: %w", err)
	}
	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]domain.Request, error) {
	defer rows.Close()
	out := make([]domain.Request, 0)
	for rows.Next() {
		var m models.Request
		if err := rows.Scan(m.ScanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan request row: %w", err)
		}
		out = append(out, m.ToDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request rows: %w", err)
	}
	return out, nil
}
