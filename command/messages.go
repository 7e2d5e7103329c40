package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-appenv/core"
)

const (
	TypeSetBackendVariant   = "appenv.command.variant.set"
	TypeSetCloudBaseURL     = "appenv.command.cloud_base_url.set"
	TypeUseCloudWithURL     = "appenv.command.cloud.use"
	TypeSetSupabaseConfig   = "appenv.command.supabase.set"
	TypeClearSupabaseConfig = "appenv.command.supabase.clear"
	TypeRefreshEnvironment  = "appenv.command.environment.refresh"
)

type SetBackendVariantMessage struct {
	Variant core.BackendVariant
}

func (SetBackendVariantMessage) Type() string { return TypeSetBackendVariant }

func (m SetBackendVariantMessage) Validate() error {
	if !m.Variant.IsKnown() {
		return commandValidationError("variant", fmt.Sprintf("unknown backend variant %d", m.Variant.Code()))
	}
	return nil
}

// SetCloudBaseURLMessage with an empty BaseURL resets the stored url to the
// default.
type SetCloudBaseURLMessage struct {
	BaseURL string
}

func (SetCloudBaseURLMessage) Type() string { return TypeSetCloudBaseURL }

func (m SetCloudBaseURLMessage) Validate() error {
	return nil
}

type UseCloudWithURLMessage struct {
	BaseURL string
	Variant core.BackendVariant
}

func (UseCloudWithURLMessage) Type() string { return TypeUseCloudWithURL }

func (m UseCloudWithURLMessage) Validate() error {
	if strings.TrimSpace(m.BaseURL) == "" {
		return commandValidationError("base_url", "cloud base url is required")
	}
	if !m.Variant.UsesCloudStyleAuth() {
		return commandValidationError("variant", fmt.Sprintf("variant %s does not use cloud authentication", m.Variant))
	}
	return nil
}

type SetSupabaseConfigMessage struct {
	Config core.SupabaseEndpointConfig
}

func (SetSupabaseConfigMessage) Type() string { return TypeSetSupabaseConfig }

func (m SetSupabaseConfigMessage) Validate() error {
	if m.Config.IsEmpty() {
		return commandValidationError("supabase", "supabase url and anon key are required")
	}
	return commandWrapValidation(m.Config.Validate(), "command: invalid supabase configuration")
}

type ClearSupabaseConfigMessage struct{}

func (ClearSupabaseConfigMessage) Type() string { return TypeClearSupabaseConfig }

func (ClearSupabaseConfigMessage) Validate() error { return nil }

type RefreshEnvironmentMessage struct{}

func (RefreshEnvironmentMessage) Type() string { return TypeRefreshEnvironment }

func (RefreshEnvironmentMessage) Validate() error { return nil }
