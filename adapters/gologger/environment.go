package gologger

import (
	"context"

	"github.com/goliatone/go-appenv/core"
	glog "github.com/goliatone/go-logger/glog"
)

// EnvironmentFields flattens env into logger key/value pairs. The Supabase
// anon key is never emitted.
func EnvironmentFields(env core.SharedEnvironment) []any {
	fields := []any{
		"variant", env.Variant.String(),
		"wire_code", env.WireCode(),
		"auth_enabled", env.IsAuthEnabled(),
	}
	if env.Cloud.BaseURL != "" {
		fields = append(fields,
			"cloud_base_url", env.Cloud.BaseURL,
			"cloud_stream_url", env.Cloud.StreamURL,
			"cloud_token_url", env.Cloud.TokenURL,
		)
	}
	if env.Supabase.URL != "" {
		fields = append(fields, "supabase_url", env.Supabase.URL)
	}
	if env.Supabase.AnonKey != "" {
		fields = append(fields, "supabase_anon_key", core.RedactedValue)
	}
	return fields
}

// LogEnvironment writes a single info line describing env.
func LogEnvironment(ctx context.Context, logger glog.Logger, env core.SharedEnvironment) {
	logger = glog.Ensure(logger)
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Info("appenv: backend environment resolved", EnvironmentFields(env)...)
}
