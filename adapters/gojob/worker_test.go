package gojob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-appenv/core"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
)

func TestSettingsWorker_AppliesAndAcks(t *testing.T) {
	ctx := context.Background()
	svc := &stubSettingsService{}
	variant := core.VariantCloud
	msg, err := ToExecutionMessage(SettingsChange{Variant: &variant}, "idem-ok")
	if err != nil {
		t.Fatalf("to execution message: %v", err)
	}
	delivery := &stubQueueDelivery{msg: msg}
	hook := &capturingHook{}

	w, err := NewSettingsWorker(&stubQueueDequeuer{delivery: delivery}, svc, RetryPolicy{}, WithWorkerHook(hook))
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	if err := w.ProcessNext(ctx); err != nil {
		t.Fatalf("process next: %v", err)
	}
	if !delivery.acked {
		t.Fatalf("expected delivery to be acked")
	}
	if svc.variant != core.VariantCloud {
		t.Fatalf("expected variant applied, got %s", svc.variant)
	}
	if hook.starts != 1 || hook.successes != 1 {
		t.Fatalf("expected start and success hooks, got %#v", hook)
	}
	if w.Attempts("idem-ok") != 0 {
		t.Fatalf("expected attempts reset after success")
	}
}

func TestSettingsWorker_RetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	svc := &stubSettingsService{err: errors.New("store unavailable")}
	variant := core.VariantSupabase
	msg, err := ToExecutionMessage(SettingsChange{Variant: &variant}, "idem-retry")
	if err != nil {
		t.Fatalf("to execution message: %v", err)
	}
	delivery := &stubQueueDelivery{msg: msg}
	hook := &capturingHook{}
	policy := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Second, MaxDelay: time.Minute, DeadLetterOnMax: true}

	w, err := NewSettingsWorker(&stubQueueDequeuer{delivery: delivery}, svc, policy, WithWorkerHook(hook))
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}

	if err := w.ProcessNext(ctx); err != nil {
		t.Fatalf("process attempt 1: %v", err)
	}
	if !delivery.nackOpts.Requeue || delivery.nackOpts.Delay != time.Second {
		t.Fatalf("expected requeue with backoff on first failure, got %#v", delivery.nackOpts)
	}
	if hook.retries != 1 || hook.lastEvent.Attempt != 1 {
		t.Fatalf("expected retry hook for attempt 1, got %#v", hook)
	}

	if err := w.ProcessNext(ctx); err != nil {
		t.Fatalf("process attempt 2: %v", err)
	}
	if delivery.nackOpts.Requeue || !delivery.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter at max attempts, got %#v", delivery.nackOpts)
	}
	if hook.failures != 1 {
		t.Fatalf("expected failure hook at max attempts, got %#v", hook)
	}
	if hook.lastEvent.Err == nil || hook.lastEvent.Err.Error() != "store unavailable" {
		t.Fatalf("expected error on failure event, got %v", hook.lastEvent.Err)
	}
}

func TestSettingsWorker_DeadLettersMalformedMessages(t *testing.T) {
	delivery := &stubQueueDelivery{msg: &job.ExecutionMessage{
		JobID:      JobIDApplySettings,
		Parameters: map[string]any{paramSupabaseURL: "https://sb.io"},
	}}
	svc := &stubSettingsService{}
	w, err := NewSettingsWorker(&stubQueueDequeuer{delivery: delivery}, svc, RetryPolicy{MaxAttempts: 5})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	if err := w.ProcessNext(context.Background()); err != nil {
		t.Fatalf("process next: %v", err)
	}
	if !delivery.nackOpts.DeadLetter || delivery.nackOpts.Requeue {
		t.Fatalf("expected malformed message to be dead lettered, got %#v", delivery.nackOpts)
	}
	if svc.calls != 0 {
		t.Fatalf("expected no service calls for malformed message")
	}
}

func TestSettingsWorker_DeadLettersValidationErrors(t *testing.T) {
	svc, err := core.NewService(core.Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	// Bypass message validation to reach the service with an unknown variant.
	delivery := &stubQueueDelivery{msg: &job.ExecutionMessage{
		JobID:      JobIDApplySettings,
		Parameters: map[string]any{paramCloudBaseURL: "https://c.example.com"},
	}}
	w, err := NewSettingsWorker(&stubQueueDequeuer{delivery: delivery}, rejectingService{svc}, RetryPolicy{MaxAttempts: 5})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	if err := w.ProcessNext(context.Background()); err != nil {
		t.Fatalf("process next: %v", err)
	}
	if !delivery.nackOpts.DeadLetter {
		t.Fatalf("expected validation failure to be dead lettered, got %#v", delivery.nackOpts)
	}
}

func TestNewSettingsWorker_RequiresDependencies(t *testing.T) {
	if _, err := NewSettingsWorker(nil, &stubSettingsService{}, RetryPolicy{}); err == nil {
		t.Fatalf("expected dequeuer error")
	}
	if _, err := NewSettingsWorker(&stubQueueDequeuer{}, nil, RetryPolicy{}); err == nil {
		t.Fatalf("expected service error")
	}
}

func TestLoggingHook_LevelsPerEvent(t *testing.T) {
	logger := &levelLogger{}
	hook := NewLoggingHook(logger)
	event := worker.Event{
		Message: &job.ExecutionMessage{JobID: JobIDApplySettings, IdempotencyKey: "idem-log"},
		Attempt: 2,
		Err:     errors.New("boom"),
	}
	hook.OnStart(context.Background(), event)
	hook.OnSuccess(context.Background(), event)
	hook.OnRetry(context.Background(), event)
	hook.OnFailure(context.Background(), event)

	want := []string{"debug", "info", "warn", "error"}
	if len(logger.levels) != len(want) {
		t.Fatalf("expected %d log lines, got %v", len(want), logger.levels)
	}
	for i, level := range want {
		if logger.levels[i] != level {
			t.Fatalf("expected level %s at %d, got %s", level, i, logger.levels[i])
		}
	}
}

func TestNewLoggingHookFromProvider_FallsBackToLogger(t *testing.T) {
	logger := &levelLogger{}
	hook := NewLoggingHookFromProvider(nil, logger)
	hook.OnSuccess(context.Background(), worker.Event{Message: &job.ExecutionMessage{JobID: JobIDApplySettings}})
	if len(logger.levels) != 1 || logger.levels[0] != "info" {
		t.Fatalf("expected one info line through the fallback logger, got %v", logger.levels)
	}
}

type stubSettingsService struct {
	variant core.BackendVariant
	calls   int
	err     error
}

func (s *stubSettingsService) SetVariant(_ context.Context, variant core.BackendVariant) error {
	s.calls++
	s.variant = variant
	return s.err
}

func (s *stubSettingsService) SetCloudBaseURL(context.Context, string) error {
	s.calls++
	return s.err
}

func (s *stubSettingsService) SetSupabaseConfig(context.Context, core.SupabaseEndpointConfig) error {
	s.calls++
	return s.err
}

func (s *stubSettingsService) ClearSupabaseConfig(context.Context) error {
	s.calls++
	return s.err
}

// rejectingService forwards a cloud url write as an unknown-variant switch so
// the real service returns a validation error.
type rejectingService struct {
	*core.Service
}

func (s rejectingService) SetCloudBaseURL(ctx context.Context, _ string) error {
	return s.Service.SetVariant(ctx, core.BackendVariant(99))
}

type stubQueueDequeuer struct {
	delivery queue.Delivery
}

func (s *stubQueueDequeuer) Dequeue(context.Context) (queue.Delivery, error) {
	return s.delivery, nil
}

type stubQueueDelivery struct {
	msg      *job.ExecutionMessage
	acked    bool
	nackOpts queue.NackOptions
}

func (s *stubQueueDelivery) Message() *job.ExecutionMessage {
	return s.msg
}

func (s *stubQueueDelivery) Ack(context.Context) error {
	s.acked = true
	return nil
}

func (s *stubQueueDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	s.nackOpts = opts
	return nil
}

type capturingHook struct {
	starts    int
	successes int
	failures  int
	retries   int
	lastEvent worker.Event
}

func (h *capturingHook) OnStart(_ context.Context, event worker.Event) {
	h.starts++
	h.lastEvent = event
}

func (h *capturingHook) OnSuccess(_ context.Context, event worker.Event) {
	h.successes++
	h.lastEvent = event
}

func (h *capturingHook) OnFailure(_ context.Context, event worker.Event) {
	h.failures++
	h.lastEvent = event
}

func (h *capturingHook) OnRetry(_ context.Context, event worker.Event) {
	h.retries++
	h.lastEvent = event
}

type levelLogger struct {
	levels []string
}

func (l *levelLogger) Trace(string, ...any) { l.levels = append(l.levels, "trace") }
func (l *levelLogger) Debug(string, ...any) { l.levels = append(l.levels, "debug") }
func (l *levelLogger) Info(string, ...any)  { l.levels = append(l.levels, "info") }
func (l *levelLogger) Warn(string, ...any)  { l.levels = append(l.levels, "warn") }
func (l *levelLogger) Error(string, ...any) { l.levels = append(l.levels, "error") }
func (l *levelLogger) Fatal(string, ...any) { l.levels = append(l.levels, "fatal") }

func (l *levelLogger) WithContext(context.Context) glog.Logger { return l }
