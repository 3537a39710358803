package services

import (
	"context"
	"iter"
	"strings"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/approval_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/approval_engine/internal/core/ports/services"
	"github.com/SscSPs/approval_engine/internal/dto"
	"github.com/SscSPs/approval_engine/internal/utils/pagination"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// ledgerService is the read side of the ApprovalLedger.
type ledgerService struct {
	BaseService
	requestRepo portsrepo.RequestReader
	ledgerRepo  portsrepo.LedgerReader
	pageSize    int
}

// NewLedgerService creates the ledger reader.
func NewLedgerService(requestRepo portsrepo.RequestReader, ledgerRepo portsrepo.LedgerReader, opts ...ServiceOption) portssvc.ApprovalLedgerSvc {
	o := buildOptions(opts)
	return &ledgerService{
		BaseService: newBaseService(o),
		requestRepo: requestRepo,
		ledgerRepo:  ledgerRepo,
		pageSize:    o.historyPageSize,
	}
}

var _ portssvc.ApprovalLedgerSvc = (*ledgerService)(nil)

// History pages through the ledger on demand. Each range starts over from
// the first record; a failure is yielded once and ends the sequence.
func (s *ledgerService) History(ctx context.Context, requestID string) iter.Seq2[domain.ApprovalRecord, error] {
	return func(yield func(domain.ApprovalRecord, error) bool) {
		if err := s.ensureRequest(ctx, requestID); err != nil {
			yield(domain.ApprovalRecord{}, err)
			return
		}

		var after int64
		for {
			sctx, cancel := s.storeCtx(ctx)
			page, err := s.ledgerRepo.ListRecords(sctx, requestID, after, s.pageSize)
			cancel()
			if err != nil {
				yield(domain.ApprovalRecord{}, s.storeError(ctx, err, "failed to read approval history", "request_id", requestID))
				return
			}
			for _, r := range page {
				if !yield(r, nil) {
					return
				}
				after = r.SequenceNumber
			}
			if len(page) < s.pageSize {
				return
			}
		}
	}
}

func (s *ledgerService) ListHistory(ctx context.Context, requestID string, params dto.ListHistoryParams) (*dto.ListHistoryResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var after int64
	if params.NextToken != nil && *params.NextToken != "" {
		seq, err := pagination.DecodeSequenceToken(*params.NextToken, requestID)
		if err != nil {
			return nil, apperrors.NewValidationFailedError("invalid pagination token", "request_id", requestID)
		}
		after = seq
	}

	if err := s.ensureRequest(ctx, requestID); err != nil {
		return nil, err
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	records, err := s.ledgerRepo.ListRecords(sctx, requestID, after, limit+1)
	if err != nil {
		return nil, s.storeError(ctx, err, "failed to read approval history", "request_id", requestID)
	}

	resp := &dto.ListHistoryResponse{RequestID: requestID, Records: []dto.ApprovalRecordResponse{}}
	if len(records) > limit {
		records = records[:limit]
		token := pagination.EncodeSequenceToken(requestID, records[limit-1].SequenceNumber)
		resp.NextToken = &token
	}
	for _, r := range records {
		resp.Records = append(resp.Records, dto.ToApprovalRecordResponse(r))
	}
	return resp, nil
}

func (s *ledgerService) ensureRequest(ctx context.Context, requestID string) error {
	if strings.TrimSpace(requestID) == "" {
		return apperrors.NewValidationFailedError("request id is required")
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if _, err := s.requestRepo.FindRequestByID(sctx, requestID); err != nil {
		return s.storeError(ctx, err, "failed to load request", "request_id", requestID)
	}
	return nil
}
