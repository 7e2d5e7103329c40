package core

import (
	"net/url"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

const (
	DefaultCloudBaseURL = "https://beta.appflowy.cloud"

	StreamPathSuffix = "/ws"
	TokenPathSuffix  = "/gotrue"

	secureStreamScheme   = "wss"
	insecureStreamScheme = "ws"
)

// CloudEndpointConfig is the endpoint set of a cloud-style backend. StreamURL
// and TokenURL are always derived from BaseURL and never persisted.
type CloudEndpointConfig struct {
	BaseURL   string `json:"base_url"`
	StreamURL string `json:"stream_url"`
	TokenURL  string `json:"token_url"`
}

func (c CloudEndpointConfig) IsValid() bool {
	return strings.TrimSpace(c.BaseURL) != ""
}

// SupabaseEndpointConfig is valid only when URL and AnonKey are both set.
type SupabaseEndpointConfig struct {
	URL     string `json:"url"`
	AnonKey string `json:"anon_key"`
}

func (c SupabaseEndpointConfig) IsValid() bool {
	return strings.TrimSpace(c.URL) != "" && strings.TrimSpace(c.AnonKey) != ""
}

func (c SupabaseEndpointConfig) IsEmpty() bool {
	return strings.TrimSpace(c.URL) == "" && strings.TrimSpace(c.AnonKey) == ""
}

// Validate enforces the pairing rule: URL and anon key are set together or
// not at all.
func (c SupabaseEndpointConfig) Validate() error {
	hasURL := strings.TrimSpace(c.URL) != ""
	hasKey := strings.TrimSpace(c.AnonKey) != ""
	switch {
	case hasURL && !hasKey:
		return validationError("anon_key", "supabase anon key is required when url is set")
	case hasKey && !hasURL:
		return validationError("url", "supabase url is required when anon key is set")
	}
	return nil
}

// DeriveCloudEndpoints builds the endpoint set implied by baseURL. It never
// fails: an unparsable URL yields empty derived fields and a warning.
func DeriveCloudEndpoints(baseURL string, logger Logger) CloudEndpointConfig {
	out := CloudEndpointConfig{BaseURL: baseURL}
	if strings.TrimSpace(baseURL) == "" {
		return out
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		glog.Ensure(logger).Warn("appenv: unable to parse cloud base url",
			"base_url", baseURL,
			"error", err,
		)
		return out
	}

	out.StreamURL = streamScheme(parsed.Scheme) + "://" + parsed.Host + StreamPathSuffix
	out.TokenURL = baseURL + TokenPathSuffix
	return out
}

func streamScheme(scheme string) string {
	if strings.EqualFold(scheme, "https") {
		return secureStreamScheme
	}
	return insecureStreamScheme
}
