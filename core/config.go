package core

import (
	"fmt"
	"strings"
)

// BuildConfig is the static configuration baked in at build or deploy time.
// It is only consulted when CustomCloudEnabled is false.
type BuildConfig struct {
	CustomCloudEnabled bool   `koanf:"custom_cloud_enabled" mapstructure:"custom_cloud_enabled"`
	CloudURL           string `koanf:"cloud_url" mapstructure:"cloud_url"`
	VariantCode        int    `koanf:"variant_code" mapstructure:"variant_code"`
	SupabaseURL        string `koanf:"supabase_url" mapstructure:"supabase_url"`
	SupabaseAnonKey    string `koanf:"supabase_anon_key" mapstructure:"supabase_anon_key"`
}

type Config struct {
	KeyNamespace    string      `koanf:"key_namespace" mapstructure:"key_namespace"`
	DefaultCloudURL string      `koanf:"default_cloud_url" mapstructure:"default_cloud_url"`
	Release         bool        `koanf:"release" mapstructure:"release"`
	Build           BuildConfig `koanf:"build" mapstructure:"build"`
}

func DefaultConfig() Config {
	return Config{
		KeyNamespace:    "appenv",
		DefaultCloudURL: DefaultCloudBaseURL,
		Build:           BuildConfig{},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.KeyNamespace) == "" {
		return fmt.Errorf("core: key_namespace is required")
	}
	if strings.TrimSpace(c.DefaultCloudURL) == "" {
		return fmt.Errorf("core: default_cloud_url is required")
	}
	supabase := SupabaseEndpointConfig{URL: c.Build.SupabaseURL, AnonKey: c.Build.SupabaseAnonKey}
	if err := supabase.Validate(); err != nil {
		return fmt.Errorf("core: build supabase_url and supabase_anon_key must be set together: %w", err)
	}
	return nil
}

// BuildVariant decodes the static variant code. Unknown codes resolve to
// VariantLocal.
func (c BuildConfig) BuildVariant() BackendVariant {
	return VariantFromCode(c.VariantCode)
}
