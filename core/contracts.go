package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// KeyValueStore is the persistence substrate. A missing key is reported with
// found=false and a nil error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}

// RepositoryStoreFactory builds a KeyValueStore from a persistence client.
type RepositoryStoreFactory interface {
	BuildStore(persistenceClient any) (KeyValueStore, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
