package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service owns the resolver and the process-lifetime SharedEnvironment.
// Construct it once at startup and pass it to whatever needs the environment.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	keyValueStore     KeyValueStore
	persistenceClient any
	repositoryFactory any
	settings          *SettingStore
	resolver          *Resolver
	telemetry         telemetry

	mu          sync.Mutex
	environment *SharedEnvironment
}

type ServiceDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	MetricsRecorder   MetricsRecorder
	ErrorFactory      ErrorFactory
	ErrorMapper       ErrorMapper
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	KeyValueStore     KeyValueStore
	PersistenceClient any
	RepositoryFactory any
	Settings          *SettingStore
	Resolver          *Resolver
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("appenv", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("appenv"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.keyValueStore == nil && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			store, buildErr := storeFactory.BuildStore(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			builder.keyValueStore = store
		}
	}
	if builder.keyValueStore == nil {
		builder.keyValueStore = NewMemoryKeyValueStore()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	settings, err := NewSettingStore(
		builder.keyValueStore,
		NewSettingKeys(finalConfig.KeyNamespace),
		finalConfig.DefaultCloudURL,
	)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	resolver, err := NewResolver(settings, finalConfig,
		WithResolverLogger(logger),
		WithResolverMetrics(builder.metricsRecorder),
	)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		keyValueStore:     builder.keyValueStore,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		settings:          settings,
		resolver:          resolver,
		telemetry: telemetry{
			logger:  logger,
			metrics: builder.metricsRecorder,
		},
	}, nil
}

// Setup builds the service and resolves the environment once so that
// first-run provisioning happens at startup.
func Setup(ctx context.Context, cfg Config, opts ...Option) (*Service, error) {
	svc, err := NewService(cfg, opts...)
	if err != nil {
		return nil, err
	}
	svc.Environment(ctx)
	return svc, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:            s.logger,
		LoggerProvider:    s.loggerProvider,
		MetricsRecorder:   s.metricsRecorder,
		ErrorFactory:      s.errorFactory,
		ErrorMapper:       s.errorMapper,
		ConfigProvider:    s.configProvider,
		OptionsResolver:   s.optionsResolver,
		KeyValueStore:     s.keyValueStore,
		PersistenceClient: s.persistenceClient,
		RepositoryFactory: s.repositoryFactory,
		Settings:          s.settings,
		Resolver:          s.resolver,
	}
}

// Environment returns the cached SharedEnvironment, resolving it on first use.
func (s *Service) Environment(ctx context.Context) SharedEnvironment {
	if s == nil {
		return SharedEnvironment{Variant: VariantLocal}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.environment != nil {
		return *s.environment
	}
	env := s.resolver.ResolveEnvironment(ctx)
	s.environment = &env
	return env
}

// Refresh re-runs resolution and replaces the cached environment.
func (s *Service) Refresh(ctx context.Context) SharedEnvironment {
	if s == nil {
		return SharedEnvironment{Variant: VariantLocal}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	env := s.resolver.ResolveEnvironment(ctx)
	s.environment = &env
	return env
}

// ResolveEnvironment resolves without touching the cache.
func (s *Service) ResolveEnvironment(ctx context.Context) SharedEnvironment {
	if s == nil {
		return SharedEnvironment{Variant: VariantLocal}
	}
	return s.resolver.ResolveEnvironment(ctx)
}

func (s *Service) ResolveVariant(ctx context.Context) BackendVariant {
	if s == nil {
		return VariantLocal
	}
	return s.resolver.ResolveVariant(ctx)
}

func (s *Service) DeriveEndpoints(baseURL string) CloudEndpointConfig {
	if s == nil {
		return DeriveCloudEndpoints(baseURL, nil)
	}
	return DeriveCloudEndpoints(baseURL, s.logger)
}

func (s *Service) SetVariant(ctx context.Context, variant BackendVariant) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, startedAt, "set_variant", err, map[string]any{"variant": variant.String()})
	}()
	if s == nil {
		return fmt.Errorf("core: service is not configured")
	}
	return s.mapError(s.resolver.SetVariant(ctx, variant))
}

func (s *Service) SetCloudBaseURL(ctx context.Context, baseURL string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, startedAt, "set_cloud_base_url", err, map[string]any{"base_url": baseURL})
	}()
	if s == nil {
		return fmt.Errorf("core: service is not configured")
	}
	return s.mapError(s.resolver.SetCloudBaseURL(ctx, baseURL))
}

func (s *Service) UseCloudWithURL(ctx context.Context, baseURL string, variant BackendVariant) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, startedAt, "use_cloud_with_url", err, map[string]any{
			"variant":  variant.String(),
			"base_url": baseURL,
		})
	}()
	if s == nil {
		return fmt.Errorf("core: service is not configured")
	}
	return s.mapError(s.resolver.UseCloudWithURL(ctx, baseURL, variant))
}

func (s *Service) SetSupabaseConfig(ctx context.Context, cfg SupabaseEndpointConfig) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, startedAt, "set_supabase_config", err, map[string]any{"supabase_url": cfg.URL})
	}()
	if s == nil {
		return fmt.Errorf("core: service is not configured")
	}
	return s.mapError(s.resolver.SetSupabaseConfig(ctx, cfg))
}

func (s *Service) ClearSupabaseConfig(ctx context.Context) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, startedAt, "clear_supabase_config", err, nil)
	}()
	if s == nil {
		return fmt.Errorf("core: service is not configured")
	}
	return s.mapError(s.resolver.ClearSupabaseConfig(ctx))
}

func (s *Service) observe(ctx context.Context, startedAt time.Time, operation string, err error, fields map[string]any) {
	if s == nil {
		return
	}
	s.telemetry.observeOperation(ctx, startedAt, operation, err, fields)
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	return mapBuildError(s.errorMapper, err)
}
