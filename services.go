package appenv

import (
	"context"

	"github.com/goliatone/go-appenv/core"
)

type Config = core.Config

type BuildConfig = core.BuildConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type KeyValueStore = core.KeyValueStore
type RepositoryStoreFactory = core.RepositoryStoreFactory
type MetricsRecorder = core.MetricsRecorder

type BackendVariant = core.BackendVariant
type SharedEnvironment = core.SharedEnvironment
type CloudEndpointConfig = core.CloudEndpointConfig
type SupabaseEndpointConfig = core.SupabaseEndpointConfig

const (
	VariantLocal           = core.VariantLocal
	VariantSupabase        = core.VariantSupabase
	VariantCloud           = core.VariantCloud
	VariantCloudSelfHosted = core.VariantCloudSelfHosted
)

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithKeyValueStore     = core.WithKeyValueStore
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(ctx context.Context, cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(ctx, cfg, opts...)
}

func DeriveCloudEndpoints(baseURL string) CloudEndpointConfig {
	return core.DeriveCloudEndpoints(baseURL, nil)
}
