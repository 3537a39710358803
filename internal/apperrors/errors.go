package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrNotFound indicates that a requested resource (request or actor identity) could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrPermissionDenied indicates the actor lacks the permission required by the current stage.
var ErrPermissionDenied = errors.New("permission denied")

// ErrInvalidState indicates the operation is not allowed from the request's current status.
var ErrInvalidState = errors.New("invalid state")

// ErrStaleState indicates a compare-and-swap status update lost a race. Safe to retry.
var ErrStaleState = errors.New("stale state")

// ErrHeterogeneousStatus indicates a batch spans more than one current status.
var ErrHeterogeneousStatus = errors.New("heterogeneous status")

// ErrTimeout indicates a store call exceeded its deadline. Safe to retry.
var ErrTimeout = errors.New("timeout")

// ErrLedgerWrite indicates the approval ledger could not be written; the paired status update did not take effect.
var ErrLedgerWrite = errors.New("ledger write failure")

// ErrConflict indicates that an attempt was made to create a resource that already exists.
var ErrConflict = errors.New("resource already exists")

// ErrInternal is the catch-all for unexpected store or programming failures.
var ErrInternal = errors.New("internal error")

// ErrorKind is the stable, client-facing classification of an error.
type ErrorKind string

const (
	KindValidation          ErrorKind = "ValidationError"
	KindPermissionDenied    ErrorKind = "PermissionDenied"
	KindInvalidState        ErrorKind = "InvalidStateError"
	KindStaleState          ErrorKind = "StaleStateError"
	KindHeterogeneousStatus ErrorKind = "HeterogeneousStatusError"
	KindNotFound            ErrorKind = "NotFound"
	KindTimeout             ErrorKind = "TimeoutError"
	KindLedgerWrite         ErrorKind = "LedgerWriteFailure"
	KindConflict            ErrorKind = "Conflict"
	KindInternal            ErrorKind = "InternalError"
)

var kindSentinels = map[ErrorKind]error{
	KindValidation:          ErrValidation,
	KindPermissionDenied:    ErrPermissionDenied,
	KindInvalidState:        ErrInvalidState,
	KindStaleState:          ErrStaleState,
	KindHeterogeneousStatus: ErrHeterogeneousStatus,
	KindNotFound:            ErrNotFound,
	KindTimeout:             ErrTimeout,
	KindLedgerWrite:         ErrLedgerWrite,
	KindConflict:            ErrConflict,
	KindInternal:            ErrInternal,
}

// AppError is a structured application error. Message and Context are safe to
// show to callers; Err holds the underlying cause and is only ever logged.
type AppError struct {
	Code    int
	Kind    ErrorKind
	Message string
	Context map[string]string
	Err     error
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%s", k, e.Context[k])
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrStaleState) and friends match on the error kind.
func (e *AppError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// With returns a copy of the error with an extra context key.
func (e *AppError) With(key, value string) *AppError {
	ctx := make(map[string]string, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	cp := *e
	cp.Context = ctx
	return &cp
}

// NewAppError builds an error from an HTTP-ish status code, keeping the
// constructor shape the repositories already use.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Kind: kindForCode(code), Message: message, Err: err}
}

func newKind(kind ErrorKind, code int, message string, kv ...string) *AppError {
	e := &AppError{Code: code, Kind: kind, Message: message}
	if len(kv) > 1 {
		e.Context = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			e.Context[kv[i]] = kv[i+1]
		}
	}
	return e
}

func NewValidationFailedError(message string, kv ...string) *AppError {
	return newKind(KindValidation, http.StatusBadRequest, message, kv...)
}

func NewNotFoundError(message string, kv ...string) *AppError {
	return newKind(KindNotFound, http.StatusNotFound, message, kv...)
}

func NewPermissionDeniedError(message string, kv ...string) *AppError {
	return newKind(KindPermissionDenied, http.StatusForbidden, message, kv...)
}

func NewInvalidStateError(message string, kv ...string) *AppError {
	return newKind(KindInvalidState, http.StatusConflict, message, kv...)
}

func NewStaleStateError(message string, kv ...string) *AppError {
	return newKind(KindStaleState, http.StatusConflict, message, kv...)
}

func NewHeterogeneousStatusError(message string, kv ...string) *AppError {
	return newKind(KindHeterogeneousStatus, http.StatusConflict, message, kv...)
}

func NewConflictError(message string, kv ...string) *AppError {
	return newKind(KindConflict, http.StatusConflict, message, kv...)
}

// NewTimeoutError wraps a deadline failure from a store call.
func NewTimeoutError(message string, err error, kv ...string) *AppError {
	e := newKind(KindTimeout, http.StatusGatewayTimeout, message, kv...)
	e.Err = err
	return e
}

// NewLedgerWriteError wraps a failed ledger append.
func NewLedgerWriteError(message string, err error, kv ...string) *AppError {
	e := newKind(KindLedgerWrite, http.StatusInternalServerError, message, kv...)
	e.Err = err
	return e
}

// Kind classifies any error. Unknown errors are internal.
func Kind(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}

// StatusCode returns the HTTP status to use for err.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	switch Kind(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindStaleState, KindHeterogeneousStatus, KindConflict:
		return http.StatusConflict
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether the caller may safely retry the operation.
func IsRetryable(err error) bool {
	k := Kind(err)
	return k == KindStaleState || k == KindTimeout
}

func kindForCode(code int) ErrorKind {
	switch code {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusForbidden:
		return KindPermissionDenied
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindInternal
	}
}
