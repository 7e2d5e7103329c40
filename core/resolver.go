package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

const (
	sourceBuild     = "build"
	sourcePersisted = "persisted"
)

// Resolver decides which backend variant is active and which endpoints it
// implies. Resolution never fails: problems are logged and resolved toward a
// safe default.
type Resolver struct {
	settings  *SettingStore
	config    Config
	telemetry telemetry
}

type ResolverOption func(*Resolver)

func WithResolverLogger(logger Logger) ResolverOption {
	return func(r *Resolver) {
		r.telemetry.logger = glog.Ensure(logger)
	}
}

func WithResolverMetrics(recorder MetricsRecorder) ResolverOption {
	return func(r *Resolver) {
		if recorder != nil {
			r.telemetry.metrics = recorder
		}
	}
}

func NewResolver(settings *SettingStore, cfg Config, opts ...ResolverOption) (*Resolver, error) {
	if settings == nil {
		return nil, fmt.Errorf("core: setting store is required")
	}
	r := &Resolver{
		settings: settings,
		config:   cfg,
		telemetry: telemetry{
			logger:  glog.Ensure(nil),
			metrics: NopMetricsRecorder{},
		},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r, nil
}

func (r *Resolver) Settings() *SettingStore {
	if r == nil {
		return nil
	}
	return r.settings
}

// ResolveVariant reads the persisted variant. A missing value means first run:
// release builds provision VariantCloud, other builds stay VariantLocal without
// writing anything. An unrecognized value is replaced with VariantCloud.
func (r *Resolver) ResolveVariant(ctx context.Context) BackendVariant {
	if r == nil || r.settings == nil {
		return VariantLocal
	}

	raw, found, err := r.settings.LookupBackendVariant(ctx)
	if err != nil {
		r.telemetry.warn(ctx, "appenv: backend variant read failed, treating as unset", map[string]any{
			"error": err.Error(),
		})
		found = false
	}

	if !found {
		if !r.config.Release {
			return VariantLocal
		}
		r.provisionVariant(ctx, VariantCloud, "first_run")
		return VariantCloud
	}

	variant, ok := ParseVariantCode(raw)
	if !ok {
		r.telemetry.warn(ctx, "appenv: unknown backend variant code, resetting to cloud", map[string]any{
			"code": raw,
		})
		r.provisionVariant(ctx, VariantCloud, "invalid_code")
		return VariantCloud
	}
	return variant
}

func (r *Resolver) provisionVariant(ctx context.Context, variant BackendVariant, reason string) {
	startedAt := time.Now().UTC()
	err := r.SetVariant(ctx, variant)
	r.telemetry.observeOperation(ctx, startedAt, "provision_variant", err, map[string]any{
		"variant": variant.String(),
		"reason":  reason,
	})
}

// ResolveEnvironment builds the SharedEnvironment. When custom cloud
// configuration is disabled the build configuration is authoritative and the
// key-value store is never consulted.
func (r *Resolver) ResolveEnvironment(ctx context.Context) SharedEnvironment {
	if r == nil {
		return SharedEnvironment{Variant: VariantLocal}
	}
	startedAt := time.Now().UTC()

	var env SharedEnvironment
	source := sourcePersisted
	if r.config.Build.CustomCloudEnabled {
		env = r.resolvePersisted(ctx)
	} else {
		source = sourceBuild
		env = r.resolveBuild(ctx)
	}

	r.telemetry.observeOperation(ctx, startedAt, "resolve_environment", nil, map[string]any{
		"variant":      env.Variant.String(),
		"source":       source,
		"auth_enabled": env.IsAuthEnabled(),
	})
	return env
}

func (r *Resolver) resolveBuild(ctx context.Context) SharedEnvironment {
	build := r.config.Build
	variant := build.BuildVariant()
	if build.VariantCode != variant.Code() {
		r.telemetry.warn(ctx, "appenv: unknown build variant code, using local", map[string]any{
			"code": build.VariantCode,
		})
	}
	env := SharedEnvironment{Variant: variant}
	if variant.IsLocal() {
		return env
	}
	env.Cloud = DeriveCloudEndpoints(build.CloudURL, r.telemetry.logger)
	env.Supabase = r.checkedSupabase(ctx, SupabaseEndpointConfig{
		URL:     build.SupabaseURL,
		AnonKey: build.SupabaseAnonKey,
	}, sourceBuild)
	return env
}

func (r *Resolver) resolvePersisted(ctx context.Context) SharedEnvironment {
	variant := r.ResolveVariant(ctx)
	env := SharedEnvironment{Variant: variant}
	if variant.IsLocal() {
		return env
	}

	baseURL, err := r.settings.CloudBaseURL(ctx)
	if err != nil {
		r.telemetry.warn(ctx, "appenv: cloud base url read failed, using default", map[string]any{
			"error":    err.Error(),
			"base_url": baseURL,
		})
	}
	env.Cloud = DeriveCloudEndpoints(baseURL, r.telemetry.logger)

	supabaseURL, err := r.settings.SupabaseURL(ctx)
	if err != nil {
		r.telemetry.warn(ctx, "appenv: supabase url read failed", map[string]any{"error": err.Error()})
	}
	anonKey, err := r.settings.SupabaseAnonKey(ctx)
	if err != nil {
		r.telemetry.warn(ctx, "appenv: supabase anon key read failed", map[string]any{"error": err.Error()})
	}
	env.Supabase = r.checkedSupabase(ctx, SupabaseEndpointConfig{URL: supabaseURL, AnonKey: anonKey}, sourcePersisted)
	return env
}

func (r *Resolver) checkedSupabase(ctx context.Context, cfg SupabaseEndpointConfig, source string) SupabaseEndpointConfig {
	if err := cfg.Validate(); err != nil {
		r.telemetry.warn(ctx, "appenv: ignoring incomplete supabase configuration", map[string]any{
			"source": source,
			"error":  err.Error(),
		})
		return SupabaseEndpointConfig{}
	}
	return cfg
}

// SetVariant persists the variant code. Switching to VariantCloud also seeds
// the cloud base url with the default when none is stored.
func (r *Resolver) SetVariant(ctx context.Context, variant BackendVariant) error {
	if r == nil || r.settings == nil {
		return fmt.Errorf("core: resolver is not configured")
	}
	if !variant.IsKnown() {
		return validationError("variant", fmt.Sprintf("unknown backend variant %d", variant.Code()))
	}
	if err := r.settings.SetBackendVariant(ctx, variant); err != nil {
		return err
	}
	if variant != VariantCloud {
		return nil
	}
	_, found, err := r.settings.LookupCloudBaseURL(ctx)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	return r.settings.SetCloudBaseURL(ctx, r.defaultCloudURL())
}

// SetCloudBaseURL stores a custom base url. An empty url removes the stored
// value so reads fall back to the default.
func (r *Resolver) SetCloudBaseURL(ctx context.Context, baseURL string) error {
	if r == nil || r.settings == nil {
		return fmt.Errorf("core: resolver is not configured")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return r.settings.RemoveCloudBaseURL(ctx)
	}
	return r.settings.SetCloudBaseURL(ctx, baseURL)
}

// UseCloudWithURL switches to a cloud-style variant and stores its base url,
// in that order.
func (r *Resolver) UseCloudWithURL(ctx context.Context, baseURL string, variant BackendVariant) error {
	if !variant.UsesCloudStyleAuth() {
		return validationError("variant", fmt.Sprintf("variant %s does not use cloud authentication", variant))
	}
	if strings.TrimSpace(baseURL) == "" {
		return validationError("base_url", "cloud base url is required")
	}
	if err := r.SetVariant(ctx, variant); err != nil {
		return err
	}
	return r.SetCloudBaseURL(ctx, baseURL)
}

// SetSupabaseConfig stores the url/anon key pair. A half-set pair is rejected
// before the store is touched; an empty pair clears both keys.
func (r *Resolver) SetSupabaseConfig(ctx context.Context, cfg SupabaseEndpointConfig) error {
	if r == nil || r.settings == nil {
		return fmt.Errorf("core: resolver is not configured")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.IsEmpty() {
		return r.ClearSupabaseConfig(ctx)
	}
	if err := r.settings.SetSupabaseURL(ctx, strings.TrimSpace(cfg.URL)); err != nil {
		return err
	}
	return r.settings.SetSupabaseAnonKey(ctx, strings.TrimSpace(cfg.AnonKey))
}

func (r *Resolver) ClearSupabaseConfig(ctx context.Context) error {
	if r == nil || r.settings == nil {
		return fmt.Errorf("core: resolver is not configured")
	}
	if err := r.settings.RemoveSupabaseURL(ctx); err != nil {
		return err
	}
	return r.settings.RemoveSupabaseAnonKey(ctx)
}

func (r *Resolver) defaultCloudURL() string {
	if value := strings.TrimSpace(r.config.DefaultCloudURL); value != "" {
		return value
	}
	return DefaultCloudBaseURL
}
