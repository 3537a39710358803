package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	"github.com/SscSPs/approval_engine/internal/models"
)

func (s *Store) ListRecords(ctx context.Context, requestID string, afterSequence int64, limit int) ([]domain.ApprovalRecord, error) {
	query := `
		SELECT ` + models.ApprovalRecordColumns + `
		FROM approval_records
		WHERE request_id = ? AND sequence_number > ?
		ORDER BY sequence_number`
	args := []any{requestID, afterSequence}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval records for %s: %w", requestID, err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]domain.ApprovalRecord, 0)
	for rows.Next() {
		var m models.ApprovalRecord
		if err := rows.Scan(m.ScanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan approval record: %w", err)
		}
		records = append(records, m.ToDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval records: %w", err)
	}
	return records, nil
}

func (s *Store) FindLatestRecord(ctx context.Context, requestID string) (*domain.ApprovalRecord, error) {
	query := `
		SELECT ` + models.ApprovalRecordColumns + `
		FROM approval_records
		WHERE request_id = ?
		ORDER BY sequence_number DESC
		LIMIT 1`
	var m models.ApprovalRecord
	if err := s.db.QueryRowContext(ctx, query, requestID).Scan(m.ScanTargets()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest approval record for %s: %w", requestID, err)
	}
	d := m.ToDomain()
	return &d, nil
}

// ApplyTransition swaps the status with a guarded UPDATE, then appends the
// record. Any failure rolls both back.
func (s *Store) ApplyTransition(ctx context.Context, t portsrepo.Transition) (*domain.Request, error) {
	change := t.Change

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE requests
		SET status = ?,
		    branch = COALESCE(?, branch),
		    submitted_at = COALESCE(?, submitted_at),
		    completed_at = COALESCE(?, completed_at),
		    last_updated_at = ?
		WHERE request_id = ? AND status = ?`,
		string(change.To),
		models.BranchParam(change.Branch),
		utcPtr(change.SubmittedAt),
		utcPtr(change.CompletedAt),
		utc(change.At),
		change.RequestID,
		string(change.From),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update status of %s: %w", change.RequestID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return nil, s.explainMiss(ctx, tx, change)
	}

	if t.Record != nil {
		seq, err := appendRecord(ctx, tx, *t.Record)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, apperrors.NewStaleStateError("request status changed concurrently", "request_id", change.RequestID)
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, apperrors.NewLedgerWriteError("failed to append approval record", err, "request_id", change.RequestID)
		}
		t.Record.SequenceNumber = seq
	}

	updated, err := findRequest(ctx, tx, change.RequestID)
	if err != nil {
		return nil, err
	}
	if !change.AmountMatches(updated.Amount) {
		return nil, apperrors.NewStaleStateError("request amount changed concurrently",
			"request_id", change.RequestID,
			"expected_amount", change.Amount.String(),
			"current_amount", updated.Amount.String())
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return updated, nil
}

// explainMiss turns a zero-row status update into NotFound or StaleState.
func (s *Store) explainMiss(ctx context.Context, tx *sql.Tx, change domain.StatusChange) error {
	var current string
	err := tx.QueryRowContext(ctx, `SELECT status FROM requests WHERE request_id = ?`, change.RequestID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFoundError("request not found", "request_id", change.RequestID)
	}
	if err != nil {
		return fmt.Errorf("failed to read status of %s: %w", change.RequestID, err)
	}
	return apperrors.NewStaleStateError("request status changed concurrently",
		"request_id", change.RequestID,
		"expected_status", string(change.From),
		"current_status", current)
}

func appendRecord(ctx context.Context, tx *sql.Tx, record domain.ApprovalRecord) (int64, error) {
	m := models.ToModelApprovalRecord(record)
	query := `
		INSERT INTO approval_records (` + models.ApprovalRecordColumns + `)
		SELECT ?, ?, ?, ?, ?, ?, ?, COALESCE(MAX(sequence_number), 0) + 1, ?
		FROM approval_records
		WHERE request_id = ?
		RETURNING sequence_number`
	var seq int64
	err := tx.QueryRowContext(ctx, query,
		m.RecordID,
		m.RequestID,
		m.ActorID,
		m.StageKey,
		m.Decision,
		m.Comment,
		m.ResultingStatus,
		utc(m.CreatedAt),
		m.RequestID,
	).Scan(&seq)
	return seq, err
}
