package command

import (
	"context"

	"github.com/goliatone/go-appenv/core"
	gocmd "github.com/goliatone/go-command"
)

type MutatingService interface {
	SetVariant(ctx context.Context, variant core.BackendVariant) error
	SetCloudBaseURL(ctx context.Context, baseURL string) error
	UseCloudWithURL(ctx context.Context, baseURL string, variant core.BackendVariant) error
	SetSupabaseConfig(ctx context.Context, cfg core.SupabaseEndpointConfig) error
	ClearSupabaseConfig(ctx context.Context) error
}

type EnvironmentRefresher interface {
	Refresh(ctx context.Context) core.SharedEnvironment
}

type SetBackendVariantCommand struct {
	service MutatingService
}

func NewSetBackendVariantCommand(service MutatingService) *SetBackendVariantCommand {
	return &SetBackendVariantCommand{service: service}
}

func (c *SetBackendVariantCommand) Execute(ctx context.Context, msg SetBackendVariantMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: backend variant service is required")
	}
	return c.service.SetVariant(ctx, msg.Variant)
}

type SetCloudBaseURLCommand struct {
	service MutatingService
}

func NewSetCloudBaseURLCommand(service MutatingService) *SetCloudBaseURLCommand {
	return &SetCloudBaseURLCommand{service: service}
}

func (c *SetCloudBaseURLCommand) Execute(ctx context.Context, msg SetCloudBaseURLMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: cloud base url service is required")
	}
	return c.service.SetCloudBaseURL(ctx, msg.BaseURL)
}

type UseCloudWithURLCommand struct {
	service MutatingService
}

func NewUseCloudWithURLCommand(service MutatingService) *UseCloudWithURLCommand {
	return &UseCloudWithURLCommand{service: service}
}

func (c *UseCloudWithURLCommand) Execute(ctx context.Context, msg UseCloudWithURLMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: cloud service is required")
	}
	return c.service.UseCloudWithURL(ctx, msg.BaseURL, msg.Variant)
}

type SetSupabaseConfigCommand struct {
	service MutatingService
}

func NewSetSupabaseConfigCommand(service MutatingService) *SetSupabaseConfigCommand {
	return &SetSupabaseConfigCommand{service: service}
}

func (c *SetSupabaseConfigCommand) Execute(ctx context.Context, msg SetSupabaseConfigMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: supabase service is required")
	}
	return c.service.SetSupabaseConfig(ctx, msg.Config)
}

type ClearSupabaseConfigCommand struct {
	service MutatingService
}

func NewClearSupabaseConfigCommand(service MutatingService) *ClearSupabaseConfigCommand {
	return &ClearSupabaseConfigCommand{service: service}
}

func (c *ClearSupabaseConfigCommand) Execute(ctx context.Context, _ ClearSupabaseConfigMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: supabase service is required")
	}
	return c.service.ClearSupabaseConfig(ctx)
}

// RefreshEnvironmentCommand re-resolves the shared environment and stores the
// new snapshot as the command result.
type RefreshEnvironmentCommand struct {
	service EnvironmentRefresher
}

func NewRefreshEnvironmentCommand(service EnvironmentRefresher) *RefreshEnvironmentCommand {
	return &RefreshEnvironmentCommand{service: service}
}

func (c *RefreshEnvironmentCommand) Execute(ctx context.Context, _ RefreshEnvironmentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: environment service is required")
	}
	storeResult(ctx, c.service.Refresh(ctx))
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
