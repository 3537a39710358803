package models

import (
	"time"

	"github.com/SscSPs/approval_engine/internal/core/domain"
)

// ApprovalRecord is the row shape of the append-only approval_records table.
type ApprovalRecord struct {
	RecordID        string    `db:"record_id"`
	RequestID       string    `db:"request_id"`
	ActorID         string    `db:"actor_id"`
	StageKey        string    `db:"stage_key"`
	Decision        string    `db:"decision"`
	Comment         *string   `db:"comment"`
	ResultingStatus string    `db:"resulting_status"`
	SequenceNumber  int64     `db:"sequence_number"`
	CreatedAt       time.Time `db:"created_at"`
}

const ApprovalRecordColumns = "record_id, request_id, actor_id, stage_key, decision, comment, resulting_status, sequence_number, created_at"

func (m *ApprovalRecord) ScanTargets() []any {
	return []any{
		&m.RecordID,
		&m.RequestID,
		&m.ActorID,
		&m.StageKey,
		&m.Decision,
		&m.Comment,
		&m.ResultingStatus,
		&m.SequenceNumber,
		&m.CreatedAt,
	}
}

func ToModelApprovalRecord(d domain.ApprovalRecord) ApprovalRecord {
	return ApprovalRecord{
		RecordID:        d.RecordID,
		RequestID:       d.RequestID,
		ActorID:         d.ActorID,
		StageKey:        d.StageKey,
		Decision:        string(d.Decision),
		Comment:         d.Comment,
		ResultingStatus: string(d.ResultingStatus),
		SequenceNumber:  d.SequenceNumber,
		CreatedAt:       d.Timestamp,
	}
}

func (m ApprovalRecord) ToDomain() domain.ApprovalRecord {
	return domain.ApprovalRecord{
		RecordID:        m.RecordID,
		RequestID:       m.RequestID,
		ActorID:         m.ActorID,
		StageKey:        m.StageKey,
		Decision:        domain.Decision(m.Decision),
		Comment:         m.Comment,
		ResultingStatus: domain.RequestStatus(m.ResultingStatus),
		SequenceNumber:  m.SequenceNumber,
		Timestamp:       m.CreatedAt.UTC(),
	}
}
