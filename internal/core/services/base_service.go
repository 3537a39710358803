package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/core/ports"
	"github.com/SscSPs/approval_engine/internal/middleware"
)

const defaultStoreTimeout = 5 * time.Second

// serviceOptions collects the optional collaborators shared by all services.
type serviceOptions struct {
	storeTimeout     time.Duration
	clock            func() time.Time
	cache            ports.PermissionCache
	notifier         ports.Notifier
	batchConcurrency int
	historyPageSize  int
}

// ServiceOption is a functional option for configuring services
type ServiceOption func(*serviceOptions)

// WithStoreTimeout bounds every store call. Non-positive values keep the default.
func WithStoreTimeout(d time.Duration) ServiceOption {
	return func(o *serviceOptions) {
		if d > 0 {
			o.storeTimeout = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithPermissionCache adds a permission set cache to the resolver.
func WithPermissionCache(cache ports.PermissionCache) ServiceOption {
	return func(o *serviceOptions) {
		o.cache = cache
	}
}

// WithNotifier adds the notification collaborator to the engine.
func WithNotifier(n ports.Notifier) ServiceOption {
	return func(o *serviceOptions) {
		o.notifier = n
	}
}

// WithBatchConcurrency caps how many batch items are applied in parallel.
func WithBatchConcurrency(n int) ServiceOption {
	return func(o *serviceOptions) {
		if n > 0 {
			o.batchConcurrency = n
		}
	}
}

// WithHistoryPageSize sets how many ledger rows History fetches per store call.
func WithHistoryPageSize(n int) ServiceOption {
	return func(o *serviceOptions) {
		if n > 0 {
			o.historyPageSize = n
		}
	}
}

func buildOptions(opts []ServiceOption) serviceOptions {
	o := serviceOptions{
		storeTimeout:     defaultStoreTimeout,
		clock:            func() time.Time { return time.Now().UTC() },
		batchConcurrency: 8,
		historyPageSize:  50,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// BaseService provides common functionality for all services
type BaseService struct {
	storeTimeout time.Duration
	clock        func() time.Time
}

func newBaseService(o serviceOptions) BaseService {
	return BaseService{storeTimeout: o.storeTimeout, clock: o.clock}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

func (s *BaseService) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock()
}

// storeCtx derives the context for one store call.
func (s *BaseService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.storeTimeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// storeError converts a store failure into an application error. Application
// errors pass through; deadline failures become retryable timeouts; anything
// else is logged and hidden behind msg.
func (s *BaseService) storeError(ctx context.Context, err error, msg string, keyvals ...string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.LogWarn(ctx, "Store call timed out", slog.String("operation", msg))
		return apperrors.NewTimeoutError(msg+": store call timed out", err, keyvals...)
	}
	logArgs := make([]any, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		logArgs = append(logArgs, slog.String(keyvals[i], keyvals[i+1]))
	}
	s.LogError(ctx, err, msg, logArgs...)
	return apperrors.NewAppError(http.StatusInternalServerError, msg, err)
}
