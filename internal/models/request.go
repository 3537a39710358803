package models

import (
	"time"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Request is the row shape of the requests table.
type Request struct {
	RequestID     string          `db:"request_id"`
	RequestType   string          `db:"request_type"`
	Amount        decimal.Decimal `db:"amount"`
	ApplicantID   string          `db:"applicant_id"`
	OrgUnitID     string          `db:"org_unit_id"`
	Status        string          `db:"status"`
	Branch        *string         `db:"branch"` // NULL until submitted
	CreatedAt     time.Time       `db:"created_at"`
	SubmittedAt   *time.Time      `db:"submitted_at"`
	CompletedAt   *time.Time      `db:"completed_at"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
}

// RequestColumns lists the columns in the order ScanTargets expects.
const RequestColumns = "request_id, request_type, amount, applicant_id, org_unit_id, status, branch, created_at, submitted_at, completed_at, last_updated_at"

// ScanTargets returns pointers for Scan in RequestColumns order.
func (m *Request) ScanTargets() []any {
	return []any{
		&m.RequestID,
		&m.RequestType,
		&m.Amount,
		&m.ApplicantID,
		&m.OrgUnitID,
		&m.Status,
		&m.Branch,
		&m.CreatedAt,
		&m.SubmittedAt,
		&m.CompletedAt,
		&m.LastUpdatedAt,
	}
}

func ToModelRequest(d domain.Request) Request {
	m := Request{
		RequestID:     d.RequestID,
		RequestType:   d.RequestType,
		Amount:        d.Amount,
		ApplicantID:   d.ApplicantID,
		OrgUnitID:     d.OrgUnitID,
		Status:        string(d.Status),
		CreatedAt:     d.CreatedAt,
		SubmittedAt:   d.SubmittedAt,
		CompletedAt:   d.CompletedAt,
		LastUpdatedAt: d.LastUpdatedAt,
	}
	if d.Branch != "" {
		b := string(d.Branch)
		m.Branch = &b
	}
	return m
}

func (m Request) ToDomain() domain.Request {
	d := domain.Request{
		RequestID:     m.RequestID,
		RequestType:   m.RequestType,
		Amount:        m.Amount,
		ApplicantID:   m.ApplicantID,
		OrgUnitID:     m.OrgUnitID,
		Status:        domain.RequestStatus(m.Status),
		CreatedAt:     m.CreatedAt.UTC(),
		SubmittedAt:   utcPtr(m.SubmittedAt),
		CompletedAt:   utcPtr(m.CompletedAt),
		LastUpdatedAt: m.LastUpdatedAt.UTC(),
	}
	if m.Branch != nil {
		d.Branch = domain.Branch(*m.Branch)
	}
	return d
}

// BranchParam converts a branch for use as a nullable query argument.
func BranchParam(b domain.Branch) *string {
	if b == "" {
		return nil
	}
	s := string(b)
	return &s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
