package gologger

import (
	"context"
	"testing"

	"github.com/goliatone/go-appenv/core"
	glog "github.com/goliatone/go-logger/glog"
)

func TestResolveDeterministicFallback(t *testing.T) {
	loggerOnly := &capturingLogger{id: "logger"}
	providerLogger := &capturingLogger{id: "provider"}
	provider := &capturingProvider{logger: providerLogger}

	var resolvedProvider glog.LoggerProvider
	_, resolved := Resolve("appenv", provider, loggerOnly)
	got := resolved.(*capturingLogger)
	if got.id != "provider" {
		t.Fatalf("expected provider logger precedence, got %q", got.id)
	}

	resolvedProvider, resolved = Resolve("", nil, loggerOnly)
	got = resolved.(*capturingLogger)
	if got.id != "logger" {
		t.Fatalf("expected direct logger when provider is nil, got %q", got.id)
	}
	if resolvedProvider == nil {
		t.Fatalf("expected provider wrapper from logger")
	}

	_, resolved = Resolve("appenv", nil, nil)
	if resolved == nil {
		t.Fatalf("expected nop logger fallback")
	}
}

func TestNamed_UsesComponentLoggerName(t *testing.T) {
	providerLogger := &capturingLogger{id: "provider"}
	provider := &capturingProvider{logger: providerLogger}

	logger := Named(provider, nil, "jobs")
	logger.Info("hello", "k", "v")
	if provider.lastName != "appenv.jobs" {
		t.Fatalf("expected appenv.jobs logger name, got %q", provider.lastName)
	}
	captured := providerLogger.lastInfo
	if captured.msg != "hello" || captured.args[0] != "k" || captured.args[1] != "v" {
		t.Fatalf("unexpected captured call %#v", captured)
	}

	Named(provider, nil, "  ")
	if provider.lastName != DefaultLoggerName {
		t.Fatalf("expected default logger name for empty component, got %q", provider.lastName)
	}
	if Named(nil, nil, "jobs") == nil {
		t.Fatalf("expected nop logger fallback")
	}
}

func TestLogEnvironment_RedactsAnonKey(t *testing.T) {
	logger := &capturingLogger{id: "env"}
	env := core.SharedEnvironment{
		Variant:  core.VariantSupabase,
		Cloud:    core.DeriveCloudEndpoints("https://c.example.com", nil),
		Supabase: core.SupabaseEndpointConfig{URL: "https://sb.io", AnonKey: "secret-key"},
	}

	LogEnvironment(context.Background(), logger, env)

	if logger.lastInfo.msg == "" {
		t.Fatalf("expected environment log line")
	}
	fields := map[any]any{}
	args := logger.lastInfo.args
	for i := 0; i+1 < len(args); i += 2 {
		fields[args[i]] = args[i+1]
	}
	if fields["variant"] != "supabase" {
		t.Fatalf("expected variant field, got %#v", fields["variant"])
	}
	if fields["supabase_anon_key"] != core.RedactedValue {
		t.Fatalf("expected anon key to be redacted, got %#v", fields["supabase_anon_key"])
	}
	if fields["cloud_stream_url"] != "wss://c.example.com/ws" {
		t.Fatalf("expected stream url field, got %#v", fields["cloud_stream_url"])
	}
	if fields["auth_enabled"] != true {
		t.Fatalf("expected auth_enabled=true, got %#v", fields["auth_enabled"])
	}
}

func TestEnvironmentFields_LocalIsMinimal(t *testing.T) {
	fields := EnvironmentFields(core.SharedEnvironment{Variant: core.VariantLocal})
	if len(fields) != 6 {
		t.Fatalf("expected only variant, wire code and auth fields, got %#v", fields)
	}
}

var (
	_ glog.Logger         = (*capturingLogger)(nil)
	_ glog.LoggerProvider = (*capturingProvider)(nil)
)

type capturingProvider struct {
	logger   *capturingLogger
	lastName string
}

func (p *capturingProvider) GetLogger(name string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	p.lastName = name
	return p.logger
}

type infoCall struct {
	msg  string
	args []any
}

type capturingLogger struct {
	id       string
	lastInfo infoCall
}

func (l *capturingLogger) Trace(string, ...any) {}
func (l *capturingLogger) Debug(string, ...any) {}
func (l *capturingLogger) Warn(string, ...any)  {}
func (l *capturingLogger) Error(string, ...any) {}
func (l *capturingLogger) Fatal(string, ...any) {}

func (l *capturingLogger) Info(msg string, args ...any) {
	l.lastInfo = infoCall{
		msg:  msg,
		args: append([]any(nil), args...),
	}
}

func (l *capturingLogger) WithContext(context.Context) glog.Logger {
	return l
}
