package apperrors_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestAppErrorMatchesSentinelByKind(t *testing.T) {
	err := apperrors.NewStaleStateError("status changed", "request_id", "r-1")
	wrapped := fmt.Errorf("approve: %w", err)

	assert.ErrorIs(t, wrapped, apperrors.ErrStaleState)
	assert.NotErrorIs(t, wrapped, apperrors.ErrInvalidState)
	assert.Equal(t, apperrors.KindStaleState, apperrors.Kind(wrapped))
	assert.Equal(t, http.StatusConflict, apperrors.StatusCode(wrapped))
	assert.True(t, apperrors.IsRetryable(wrapped))
}

func TestAppErrorContextIsRendered(t *testing.T) {
	err := apperrors.NewPermissionDeniedError("actor cannot act on stage",
		"stage_key", "low_amount_stage_1",
		"required_permission", "reimbursement:approve:low:1")

	assert.Equal(t,
		"PermissionDenied: actor cannot act on stage (required_permission=reimbursement:approve:low:1, stage_key=low_amount_stage_1)",
		err.Error())
}

func TestWithDoesNotMutateOriginal(t *testing.T) {
	base := apperrors.NewNotFoundError("request not found")
	withID := base.With("request_id", "r-9")

	assert.Empty(t, base.Context)
	assert.Equal(t, "r-9", withID.Context["request_id"])
}

func TestKindClassifiesForeignErrors(t *testing.T) {
	assert.Equal(t, apperrors.KindTimeout, apperrors.Kind(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.Equal(t, apperrors.KindValidation, apperrors.Kind(fmt.Errorf("bad: %w", apperrors.ErrValidation)))
	assert.Equal(t, apperrors.KindInternal, apperrors.Kind(errors.New("boom")))
	assert.Equal(t, apperrors.ErrorKind(""), apperrors.Kind(nil))
}

func TestLedgerWriteErrorKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := apperrors.NewLedgerWriteError("failed to append approval record", cause)

	assert.ErrorIs(t, err, apperrors.ErrLedgerWrite)
	assert.ErrorIs(t, err, cause)
	assert.False(t, apperrors.IsRetryable(err))
	assert.Equal(t, http.StatusInternalServerError, apperrors.StatusCode(err))
}

func TestNewAppErrorDerivesKindFromCode(t *testing.T) {
	err := apperrors.NewAppError(http.StatusNotFound, "missing", nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	internal := apperrors.NewAppError(http.StatusInternalServerError, "failed to query requests", errors.New("conn reset"))
	assert.ErrorIs(t, internal, apperrors.ErrInternal)
}
