package gojob

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-appenv/core"
	goerrors "github.com/goliatone/go-errors"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
)

const JobIDApplySettings = "appenv.settings.apply"

const (
	paramVariant         = "variant"
	paramCloudBaseURL    = "cloud_base_url"
	paramSupabaseURL     = "supabase_url"
	paramSupabaseAnonKey = "supabase_anon_key"
	paramClearSupabase   = "clear_supabase"
)

// SettingsApplier is the subset of *core.Service a queued settings change
// needs.
type SettingsApplier interface {
	SetVariant(ctx context.Context, variant core.BackendVariant) error
	SetCloudBaseURL(ctx context.Context, baseURL string) error
	SetSupabaseConfig(ctx context.Context, cfg core.SupabaseEndpointConfig) error
	ClearSupabaseConfig(ctx context.Context) error
}

// SettingsChange is a deferred settings mutation. Nil fields are left as they
// are. An empty CloudBaseURL resets the stored url to the default.
type SettingsChange struct {
	Variant       *core.BackendVariant
	CloudBaseURL  *string
	Supabase      *core.SupabaseEndpointConfig
	ClearSupabase bool
}

func (c SettingsChange) IsEmpty() bool {
	return c.Variant == nil && c.CloudBaseURL == nil && c.Supabase == nil && !c.ClearSupabase
}

func (c SettingsChange) Validate() error {
	if c.IsEmpty() {
		return fmt.Errorf("gojob: settings change is empty")
	}
	if c.Variant != nil && !c.Variant.IsKnown() {
		return fmt.Errorf("gojob: unknown backend variant %d", c.Variant.Code())
	}
	if c.Supabase != nil {
		if c.ClearSupabase {
			return fmt.Errorf("gojob: supabase config and clear_supabase are mutually exclusive")
		}
		if err := c.Supabase.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply runs the change against svc: variant first, then the cloud url, then
// the Supabase pair.
func (c SettingsChange) Apply(ctx context.Context, svc SettingsApplier) error {
	if svc == nil {
		return fmt.Errorf("gojob: settings service is required")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Variant != nil {
		if err := svc.SetVariant(ctx, *c.Variant); err != nil {
			return err
		}
	}
	if c.CloudBaseURL != nil {
		if err := svc.SetCloudBaseURL(ctx, *c.CloudBaseURL); err != nil {
			return err
		}
	}
	if c.ClearSupabase {
		return svc.ClearSupabaseConfig(ctx)
	}
	if c.Supabase != nil {
		return svc.SetSupabaseConfig(ctx, *c.Supabase)
	}
	return nil
}

// ToExecutionMessage encodes change as a go-job execution message.
func ToExecutionMessage(change SettingsChange, idempotencyKey string) (*job.ExecutionMessage, error) {
	if err := change.Validate(); err != nil {
		return nil, err
	}
	params := map[string]any{}
	if change.Variant != nil {
		params[paramVariant] = change.Variant.Code()
	}
	if change.CloudBaseURL != nil {
		params[paramCloudBaseURL] = strings.TrimSpace(*change.CloudBaseURL)
	}
	if change.Supabase != nil {
		params[paramSupabaseURL] = strings.TrimSpace(change.Supabase.URL)
		params[paramSupabaseAnonKey] = strings.TrimSpace(change.Supabase.AnonKey)
	}
	if change.ClearSupabase {
		params[paramClearSupabase] = true
	}
	return &job.ExecutionMessage{
		JobID:          JobIDApplySettings,
		ScriptPath:     JobIDApplySettings,
		Parameters:     params,
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}, nil
}

// FromExecutionMessage decodes a settings change. Parameters may have been
// through a JSON round trip, so numbers and booleans are read leniently.
func FromExecutionMessage(msg *job.ExecutionMessage) (SettingsChange, error) {
	if msg == nil {
		return SettingsChange{}, fmt.Errorf("gojob: execution message is required")
	}
	if strings.TrimSpace(msg.JobID) != JobIDApplySettings {
		return SettingsChange{}, fmt.Errorf("gojob: unexpected job id %q", msg.JobID)
	}
	var change SettingsChange
	params := msg.Parameters
	if raw, ok := params[paramVariant]; ok {
		code, ok := readInt(raw)
		if !ok {
			return SettingsChange{}, fmt.Errorf("gojob: invalid %s parameter %v", paramVariant, raw)
		}
		variant := core.BackendVariant(code)
		change.Variant = &variant
	}
	if raw, ok := params[paramCloudBaseURL]; ok {
		value := strings.TrimSpace(fmt.Sprint(raw))
		change.CloudBaseURL = &value
	}
	_, hasURL := params[paramSupabaseURL]
	_, hasKey := params[paramSupabaseAnonKey]
	if hasURL || hasKey {
		change.Supabase = &core.SupabaseEndpointConfig{
			URL:     readString(params, paramSupabaseURL),
			AnonKey: readString(params, paramSupabaseAnonKey),
		}
	}
	if raw, ok := params[paramClearSupabase]; ok {
		clearSupabase, ok := readBool(raw)
		if !ok {
			return SettingsChange{}, fmt.Errorf("gojob: invalid %s parameter %v", paramClearSupabase, raw)
		}
		change.ClearSupabase = clearSupabase
	}
	if err := change.Validate(); err != nil {
		return SettingsChange{}, err
	}
	return change, nil
}

// RetryPolicy defines queue retry bounds to avoid unbounded retry loops.
type RetryPolicy struct {
	MaxAttempts     int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// Backoff doubles BaseDelay per attempt, bounded by MaxDelay.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 || attempt <= 0 {
		return 0
	}
	factor := math.Pow(2, float64(attempt-1))
	delay := time.Duration(float64(p.BaseDelay) * factor)
	if p.MaxDelay > 0 && (delay > p.MaxDelay || delay <= 0) {
		delay = p.MaxDelay
	}
	return delay
}

// NormalizeAttempt enforces bounded retry behavior for a nack operation.
func (p RetryPolicy) NormalizeAttempt(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

type Enqueuer struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuer(enqueuer queue.Enqueuer) *Enqueuer {
	return &Enqueuer{enqueuer: enqueuer}
}

func (e *Enqueuer) Enqueue(ctx context.Context, change SettingsChange, idempotencyKey string) error {
	if e == nil || e.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	msg, err := ToExecutionMessage(change, idempotencyKey)
	if err != nil {
		return err
	}
	return e.enqueuer.Enqueue(ctx, msg)
}

// isPermanent reports errors that retrying cannot fix.
func isPermanent(err error) bool {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		switch rich.Category {
		case goerrors.CategoryValidation, goerrors.CategoryBadInput:
			return true
		}
	}
	return false
}

func readInt(raw any) (int, bool) {
	switch typed := raw.(type) {
	case int:
		return typed, true
	case int32:
		return int(typed), true
	case int64:
		return int(typed), true
	case float64:
		if typed != math.Trunc(typed) {
			return 0, false
		}
		return int(typed), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func readBool(raw any) (bool, bool) {
	switch typed := raw.(type) {
	case bool:
		return typed, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

func readString(params map[string]any, key string) string {
	raw, ok := params[key]
	if !ok || raw == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(raw))
}
