package core

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

type capturingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
}

func newCapturingLogger() capturingLogger {
	return capturingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (l capturingLogger) record(level string, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, args: append([]any(nil), args...)})
}

func (l capturingLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l capturingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l capturingLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l capturingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l capturingLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l capturingLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }
func (l capturingLogger) WithContext(context.Context) Logger {
	return l
}

func (l capturingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, entry := range *l.entries {
		if entry.level == level {
			total++
		}
	}
	return total
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

// recordingStore wraps a memory store and counts writes; it can be told to
// fail reads or writes.
type recordingStore struct {
	*MemoryKeyValueStore
	mu       sync.Mutex
	sets     []string
	removes  []string
	getErr   error
	writeErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryKeyValueStore: NewMemoryKeyValueStore()}
}

func (s *recordingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	return s.MemoryKeyValueStore.Get(ctx, key)
}

func (s *recordingStore) Set(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	s.sets = append(s.sets, key)
	s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	return s.MemoryKeyValueStore.Set(ctx, key, value)
}

func (s *recordingStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	s.removes = append(s.removes, key)
	s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	return s.MemoryKeyValueStore.Remove(ctx, key)
}

func (s *recordingStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets) + len(s.removes)
}

var errStoreDown = errors.New("store unavailable")

type countingMetrics struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{counters: map[string]int64{}}
}

func (m *countingMetrics) IncCounter(_ context.Context, name string, value int64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += value
}

func (m *countingMetrics) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func (m *countingMetrics) get(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

func newTestResolver(t *testing.T, store KeyValueStore, cfg Config, logger Logger) *Resolver {
	t.Helper()
	if cfg.KeyNamespace == "" {
		cfg.KeyNamespace = "appenv"
	}
	if cfg.DefaultCloudURL == "" {
		cfg.DefaultCloudURL = DefaultCloudBaseURL
	}
	settings, err := NewSettingStore(store, NewSettingKeys(cfg.KeyNamespace), cfg.DefaultCloudURL)
	if err != nil {
		t.Fatalf("new setting store: %v", err)
	}
	resolver, err := NewResolver(settings, cfg, WithResolverLogger(logger))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return resolver
}
