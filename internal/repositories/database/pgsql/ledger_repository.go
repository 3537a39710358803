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
	"github.com/shopspring/decimal"
)

// PgxLedgerRepository reads the approval ledger and applies transitions.
// Records are only ever inserted from ApplyTransition.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.LedgerReader = (*PgxLedgerRepository)(nil)
	_ portsrepo.UnitOfWork   = (*PgxLedgerRepository)(nil)
)

func (r *PgxLedgerRepository) ListRecords(ctx context.Context, requestID string, afterSequence int64, limit int) ([]domain.ApprovalRecord, error) {
	query := `
		SELECT ` + models.ApprovalRecordColumns + `
		FROM approval_records
		WHERE request_id = $1 AND sequence_number > $2
		ORDER BY sequence_number`
	args := []any{requestID, afterSequence}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval records for %s: %w", requestID, err)
	}
	defer rows.Close()

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

func (r *PgxLedgerRepository) FindLatestRecord(ctx context.Context, requestID string) (*domain.ApprovalRecord, error) {
	query := `
		SELECT ` + models.ApprovalRecordColumns + `
		FROM approval_records
		WHERE request_id = $1
		ORDER BY sequence_number DESC
		LIMIT 1;`
	var m models.ApprovalRecord
	if err := r.Pool.QueryRow(ctx, query, requestID).Scan(m.ScanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest approval record for %s: %w", requestID, err)
	}
	d := m.ToDomain()
	return &d, nil
}

// ApplyTransition locks the request row, appends the record with the next
// sequence number and swaps the status, all in one transaction.
func (r *PgxLedgerRepository) ApplyTransition(ctx context.Context, t portsrepo.Transition) (*domain.Request, error) {
	change := t.Change

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx) // no-op after commit

	var current string
	var amount decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT status, amount FROM requests WHERE request_id = $1 FOR UPDATE;`, change.RequestID).Scan(&current, &amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("request not found", "request_id", change.RequestID)
		}
		return nil, fmt.Errorf("failed to lock request %s: %w", change.RequestID, err)
	}
	if current != string(change.From) {
		return nil, staleError(change, current)
	}
	if !change.AmountMatches(amount) {
		return nil, apperrors.NewStaleStateError("request amount changed concurrently",
			"request_id", change.RequestID,
			"expected_amount", change.Amount.String(),
			"current_amount", amount.String())
	}

	if t.Record != nil {
		seq, err := r.appendRecord(ctx, tx, *t.Record)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, staleError(change, current)
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, apperrors.NewLedgerWriteError("failed to append approval record", err, "request_id", change.RequestID)
		}
		t.Record.SequenceNumber = seq
	}

	updateQuery := `
		UPDATE requests
		SET status = $2,
		    branch = COALESCE($3::varchar, branch),
		    submitted_at = COALESCE($4::timestamptz, submitted_at),
		    completed_at = COALESCE($5::timestamptz, completed_at),
		    last_updated_at = $6
		WHERE request_id = $1 AND status = $7
		RETURNING ` + models.RequestColumns + `;`
	var m models.Request
	err = tx.QueryRow(ctx, updateQuery,
		change.RequestID,
		string(change.To),
		models.BranchParam(change.Branch),
		change.SubmittedAt,
		change.CompletedAt,
		change.At,
		string(change.From),
	).Scan(m.ScanTargets()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, staleError(change, current)
		}
		return nil, fmt.Errorf("failed to update status of %s: %w", change.RequestID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	updated := m.ToDomain()
	return &updated, nil
}

func (r *PgxLedgerRepository) appendRecord(ctx context.Context, tx pgx.Tx, record domain.ApprovalRecord) (int64, error) {
	m := models.ToModelApprovalRecord(record)
	query := `
		INSERT INTO approval_records (` + models.ApprovalRecordColumns + `)
		SELECT $1::varchar, $2::varchar, $3::varchar, $4::varchar, $5::varchar, $6::text, $7::varchar,
		       COALESCE(MAX(sequence_number), 0) + 1, $8::timestamptz
		FROM approval_records
		WHERE request_id = $2::varchar
		RETURNING sequence_number;`
	var seq int64
	err := tx.QueryRow(ctx, query,
		m.RecordID,
		m.RequestID,
		m.ActorID,
		m.StageKey,
		m.Decision,
		m.Comment,
		m.ResultingStatus,
		m.CreatedAt,
	).Scan(&seq)
	return seq, err
}

func staleError(change domain.StatusChange, current string) error {
	return apperrors.NewStaleStateError("request status changed concurrently",
		"request_id", change.RequestID,
		"expected_status", string(change.From),
		"current_status", current)
}
