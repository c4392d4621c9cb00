// Package action is the only error boundary between dashboard code and the
// capabilities: every call resolves to an Envelope, never to a raised error.
package action

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/breatheeasy/pkg/metrics"
)

// Envelope is the uniform result of an action. Success implies Data is set;
// failure implies a non-empty Error and no Data.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Ok builds a successful envelope.
func Ok[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: &data}
}

// Fail builds a failed envelope. An empty message is replaced so the
// failure is never silent.
func Fail[T any](message string) Envelope[T] {
	if message == "" {
		message = "unknown error"
	}
	return Envelope[T]{Error: message}
}

// Runner executes actions and records their outcome.
type Runner struct {
	logger   *slog.Logger
	recorder *metrics.Recorder
	activity ActivityLog
	now      func() time.Time
}

// NewRunner wires the recorder and activity log; both may be nil.
func NewRunner(logger *slog.Logger, recorder *metrics.Recorder, activity ActivityLog) *Runner {
	return &Runner{
		logger:   logger.With("component", "action.runner"),
		recorder: recorder,
		activity: activity,
		now:      time.Now,
	}
}

// Run invokes fn and folds its result into an Envelope. Panics are recovered
// and reported as failures.
func Run[T any](ctx context.Context, r *Runner, name string, fn func(context.Context) (T, error)) Envelope[T] {
	return RunFor(ctx, r, name, "", fn)
}

// RunFor is Run with a subject (a location, for instance) kept in the activity log.
func RunFor[T any](ctx context.Context, r *Runner, name, subject string, fn func(context.Context) (T, error)) (env Envelope[T]) {
	start := r.now()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("action panicked", "action", name, "panic", rec)
			env = Fail[T](fmt.Sprintf("internal error: %v", rec))
		}
		r.finish(ctx, name, subject, start, env.Success, env.Error)
	}()

	data, err := fn(ctx)
	if err != nil {
		r.logger.Warn("action failed", "action", name, "subject", subject, "error", err)
		return Fail[T](err.Error())
	}
	return Ok(data)
}

func (r *Runner) finish(ctx context.Context, name, subject string, start time.Time, success bool, errMsg string) {
	elapsed := r.now().Sub(start)
	r.recorder.ObserveAction(name, success)
	if success {
		r.logger.Info("action completed", "action", name, "subject", subject, "duration_ms", elapsed.Milliseconds())
	}
	if r.activity == nil {
		return
	}
	entry := Activity{
		ID:         uuid.NewString(),
		Action:     name,
		Subject:    subject,
		Success:    success,
		Error:      errMsg,
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  start.UTC(),
	}
	if err := r.activity.Append(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Warn("activity append failed", "action", name, "error", err)
	}
}
