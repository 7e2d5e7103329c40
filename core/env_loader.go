package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultEnvPrefix = "APPENV_"

// EnvRawConfigLoader reads configuration from dotenv files and the process
// environment. Process variables win over file values.
type EnvRawConfigLoader struct {
	Prefix string
	Files  []string
	Lookup func(key string) (string, bool)
}

func NewEnvRawConfigLoader(files ...string) *EnvRawConfigLoader {
	return &EnvRawConfigLoader{
		Prefix: DefaultEnvPrefix,
		Files:  append([]string(nil), files...),
		Lookup: os.LookupEnv,
	}
}

func (l *EnvRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if l == nil {
		return map[string]any{}, nil
	}
	fileValues, err := l.readFiles()
	if err != nil {
		return nil, err
	}
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	prefix := l.Prefix
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultEnvPrefix
	}
	get := func(name string) (string, bool) {
		key := prefix + name
		if value, ok := lookup(key); ok {
			return strings.TrimSpace(value), true
		}
		value, ok := fileValues[key]
		return strings.TrimSpace(value), ok
	}

	out := map[string]any{}
	build := map[string]any{}

	if value, ok := get("KEY_NAMESPACE"); ok {
		out["key_namespace"] = value
	}
	if value, ok := get("DEFAULT_CLOUD_URL"); ok {
		out["default_cloud_url"] = value
	}
	if value, ok := get("RELEASE"); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("core: invalid %sRELEASE %q: %w", prefix, value, err)
		}
		out["release"] = parsed
	}
	if value, ok := get("CUSTOM_CLOUD_ENABLED"); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("core: invalid %sCUSTOM_CLOUD_ENABLED %q: %w", prefix, value, err)
		}
		build["custom_cloud_enabled"] = parsed
	}
	if value, ok := get("CLOUD_URL"); ok {
		build["cloud_url"] = value
	}
	if value, ok := get("VARIANT"); ok && value != "" {
		variant, known := ParseVariantName(value)
		if !known {
			return nil, fmt.Errorf("core: invalid %sVARIANT %q: unknown backend variant", prefix, value)
		}
		build["variant_code"] = variant.Code()
	}
	if value, ok := get("SUPABASE_URL"); ok {
		build["supabase_url"] = value
	}
	if value, ok := get("SUPABASE_ANON_KEY"); ok {
		build["supabase_anon_key"] = value
	}
	if len(build) > 0 {
		out["build"] = build
	}
	return out, nil
}

func (l *EnvRawConfigLoader) readFiles() (map[string]string, error) {
	out := map[string]string{}
	for _, file := range l.Files {
		file = strings.TrimSpace(file)
		if file == "" {
			continue
		}
		values, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("core: read env file %s: %w", file, err)
		}
		for key, value := range values {
			out[key] = value
		}
	}
	return out, nil
}

var _ RawConfigLoader = (*EnvRawConfigLoader)(nil)
