package gojob

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-appenv/adapters/gologger"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
)

// SettingsWorker pulls queued settings changes and applies them. Transient
// failures are nacked for retry under the policy; malformed messages and
// validation failures go straight to the dead letter queue.
type SettingsWorker struct {
	dequeuer queue.Dequeuer
	service  SettingsApplier
	policy   RetryPolicy
	hook     worker.Hook
	now      func() time.Time

	mu       sync.Mutex
	attempts map[string]int
}

type WorkerOption func(*SettingsWorker)

func WithWorkerHook(hook worker.Hook) WorkerOption {
	return func(w *SettingsWorker) {
		w.hook = hook
	}
}

func WithWorkerClock(now func() time.Time) WorkerOption {
	return func(w *SettingsWorker) {
		if now != nil {
			w.now = now
		}
	}
}

func NewSettingsWorker(
	dequeuer queue.Dequeuer,
	service SettingsApplier,
	policy RetryPolicy,
	opts ...WorkerOption,
) (*SettingsWorker, error) {
	if dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is required")
	}
	if service == nil {
		return nil, fmt.Errorf("gojob: settings service is required")
	}
	w := &SettingsWorker{
		dequeuer: dequeuer,
		service:  service,
		policy:   policy,
		now:      func() time.Time { return time.Now().UTC() },
		attempts: map[string]int{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w, nil
}

// ProcessNext handles a single delivery. The returned error reports queue
// failures (dequeue, ack, nack); apply failures are settled on the delivery.
func (w *SettingsWorker) ProcessNext(ctx context.Context) error {
	if w == nil || w.dequeuer == nil {
		return fmt.Errorf("gojob: settings worker is not configured")
	}
	delivery, err := w.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	if delivery == nil {
		return nil
	}

	msg := delivery.Message()
	key := attemptKey(msg)
	attempt := w.nextAttempt(key)
	event := worker.Event{
		Message:   msg,
		Delivery:  delivery,
		Attempt:   attempt,
		StartedAt: w.now(),
	}
	w.onStart(ctx, event)

	change, err := FromExecutionMessage(msg)
	permanent := err != nil
	if err == nil {
		err = change.Apply(ctx, w.service)
		permanent = isPermanent(err)
	}
	event.Duration = w.now().Sub(event.StartedAt)

	if err == nil {
		w.reset(key)
		w.onSuccess(ctx, event)
		return delivery.Ack(ctx)
	}

	event.Err = err
	opts := queue.NackOptions{Reason: err.Error()}
	if permanent {
		opts.DeadLetter = true
	} else {
		opts.Requeue = true
		opts.Delay = w.policy.Backoff(attempt)
	}
	opts = w.policy.NormalizeAttempt(opts, attempt)
	event.Delay = opts.Delay

	if opts.Requeue {
		w.onRetry(ctx, event)
	} else {
		w.reset(key)
		w.onFailure(ctx, event)
	}
	return delivery.Nack(ctx, opts)
}

// Attempts returns the failed-attempt counter tracked for key.
func (w *SettingsWorker) Attempts(key string) int {
	if w == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attempts[key]
}

func (w *SettingsWorker) nextAttempt(key string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts[key]++
	return w.attempts[key]
}

func (w *SettingsWorker) reset(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.attempts, key)
}

func (w *SettingsWorker) onStart(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnStart(ctx, event)
	}
}

func (w *SettingsWorker) onSuccess(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnSuccess(ctx, event)
	}
}

func (w *SettingsWorker) onFailure(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnFailure(ctx, event)
	}
}

func (w *SettingsWorker) onRetry(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnRetry(ctx, event)
	}
}

func attemptKey(msg *job.ExecutionMessage) string {
	if msg == nil {
		return ""
	}
	if key := strings.TrimSpace(msg.IdempotencyKey); key != "" {
		return key
	}
	return strings.TrimSpace(msg.JobID)
}

// LoggingHook reports worker events through a glog logger.
type LoggingHook struct {
	logger glog.Logger
}

func NewLoggingHook(logger glog.Logger) *LoggingHook {
	return &LoggingHook{logger: glog.Ensure(logger)}
}

// NewLoggingHookFromProvider logs through the "appenv.jobs" logger.
func NewLoggingHookFromProvider(provider glog.LoggerProvider, logger glog.Logger) *LoggingHook {
	return NewLoggingHook(gologger.Named(provider, logger, "jobs"))
}

func (h *LoggingHook) OnStart(ctx context.Context, event worker.Event) {
	h.log(ctx, event).Debug("appenv: settings job started", eventFields(event)...)
}

func (h *LoggingHook) OnSuccess(ctx context.Context, event worker.Event) {
	h.log(ctx, event).Info("appenv: settings job applied", eventFields(event)...)
}

func (h *LoggingHook) OnFailure(ctx context.Context, event worker.Event) {
	h.log(ctx, event).Error("appenv: settings job failed", eventFields(event)...)
}

func (h *LoggingHook) OnRetry(ctx context.Context, event worker.Event) {
	h.log(ctx, event).Warn("appenv: settings job will retry", eventFields(event)...)
}

func (h *LoggingHook) log(ctx context.Context, _ worker.Event) glog.Logger {
	logger := glog.Ensure(nil)
	if h != nil && h.logger != nil {
		logger = h.logger
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	return logger
}

func eventFields(event worker.Event) []any {
	msg := event.Message
	if msg == nil && event.Delivery != nil {
		msg = event.Delivery.Message()
	}
	fields := []any{"attempt", event.Attempt}
	if msg != nil {
		fields = append(fields, "job_id", msg.JobID, "idempotency_key", msg.IdempotencyKey)
	}
	if event.Delay > 0 {
		fields = append(fields, "delay_ms", event.Delay.Milliseconds())
	}
	if event.Duration > 0 {
		fields = append(fields, "duration_ms", event.Duration.Milliseconds())
	}
	if event.Err != nil {
		fields = append(fields, "error", event.Err.Error())
	}
	return fields
}

var _ worker.Hook = (*LoggingHook)(nil)
