package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/models"
)

func (s *Store) SaveRequest(ctx context.Context, request domain.Request) error {
	m := models.ToModelRequest(request)
	query := `
		INSERT INTO requests (` + models.RequestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		m.RequestID,
		m.RequestType,
		m.Amount.String(),
		m.ApplicantID,
		m.OrgUnitID,
		m.Status,
		m.Branch,
		utc(m.CreatedAt),
		utcPtr(m.SubmittedAt),
		utcPtr(m.CompletedAt),
		utc(m.LastUpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("request already exists", "request_id", m.RequestID)
		}
		return fmt.Errorf("failed to insert request %s: %w", m.RequestID, err)
	}
	return nil
}

func (s *Store) UpdateDraft(ctx context.Context, request domain.Request) error {
	query := `
		UPDATE requests
		SET amount = ?, org_unit_id = ?, last_updated_at = ?
		WHERE request_id = ? AND status = ?`
	res, err := s.db.ExecContext(ctx, query,
		request.Amount.String(),
		request.OrgUnitID,
		utc(request.LastUpdatedAt),
		request.RequestID,
		string(domain.StatusDraft),
	)
	if err != nil {
		return fmt.Errorf("failed to update draft %s: %w", request.RequestID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		if _, err := s.FindRequestByID(ctx, request.RequestID); err != nil {
			return err
		}
		return apperrors.NewStaleStateError("request is no longer a draft", "request_id", request.RequestID)
	}
	return nil
}

func (s *Store) FindRequestByID(ctx context.Context, requestID string) (*domain.Request, error) {
	return findRequest(ctx, s.db, requestID)
}

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findRequest(ctx context.Context, q queryRower, requestID string) (*domain.Request, error) {
	query := `SELECT ` + models.RequestColumns + ` FROM requests WHERE request_id = ?`
	var m models.Request
	if err := q.QueryRowContext(ctx, query, requestID).Scan(m.ScanTargets()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("request not found", "request_id", requestID)
		}
		return nil, fmt.Errorf("failed to find request %s: %w", requestID, err)
	}
	d := m.ToDomain()
	return &d, nil
}

func (s *Store) FindRequestsByIDs(ctx context.Context, requestIDs []string) ([]domain.Request, error) {
	if len(requestIDs) == 0 {
		return []domain.Request{}, nil
	}
	args := make([]any, len(requestIDs))
	for i, id := range requestIDs {
		args[i] = id
	}
	query := `SELECT ` + models.RequestColumns + ` FROM requests WHERE request_id IN (` + placeholders(len(args)) + `)`
	return s.queryRequests(ctx, query, args...)
}

func (s *Store) ListRequestsByStatuses(ctx context.Context, statuses []domain.RequestStatus, limit int) ([]domain.Request, error) {
	if len(statuses) == 0 {
		return []domain.Request{}, nil
	}
	args := make([]any, 0, len(statuses)+1)
	for _, st := range statuses {
		args = append(args, string(st))
	}
	query := `
		SELECT ` + models.RequestColumns + `
		FROM requests
		WHERE status IN (` + placeholders(len(statuses)) + `)
		ORDER BY COALESCE(submitted_at, created_at), request_id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryRequests(ctx, query, args...)
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]domain.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

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

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
