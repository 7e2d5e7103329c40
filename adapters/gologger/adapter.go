package gologger

import (
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

const DefaultLoggerName = "appenv"

// Resolve uses deterministic precedence provider > logger > nop. An empty name
// resolves the default appenv logger.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	if strings.TrimSpace(name) == "" {
		name = DefaultLoggerName
	}
	return glog.Resolve(name, provider, logger)
}

// Named resolves the logger for an appenv component, "appenv.<component>".
// The result is never nil.
func Named(provider glog.LoggerProvider, logger glog.Logger, component string) glog.Logger {
	name := DefaultLoggerName
	if component = strings.Trim(strings.TrimSpace(component), "."); component != "" {
		name += "." + component
	}
	_, resolved := Resolve(name, provider, logger)
	return glog.Ensure(resolved)
}
