package appenv

import (
	"fmt"

	appcommand "github.com/goliatone/go-appenv/command"
	appquery "github.com/goliatone/go-appenv/query"
)

type CommandQueryService interface {
	appcommand.MutatingService
	appcommand.EnvironmentRefresher
	appquery.EnvironmentReader
	appquery.EndpointDeriver
}

type Commands struct {
	SetBackendVariant   *appcommand.SetBackendVariantCommand
	SetCloudBaseURL     *appcommand.SetCloudBaseURLCommand
	UseCloudWithURL     *appcommand.UseCloudWithURLCommand
	SetSupabaseConfig   *appcommand.SetSupabaseConfigCommand
	ClearSupabaseConfig *appcommand.ClearSupabaseConfigCommand
	RefreshEnvironment  *appcommand.RefreshEnvironmentCommand
}

type Queries struct {
	ResolveEnvironment *appquery.ResolveEnvironmentQuery
	CurrentEnvironment *appquery.CurrentEnvironmentQuery
	ResolveVariant     *appquery.ResolveVariantQuery
	DeriveEndpoints    *appquery.DeriveEndpointsQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	endpointDeriver appquery.EndpointDeriver
}

// WithEndpointDeriver replaces the service as the source for endpoint
// derivation queries.
func WithEndpointDeriver(deriver appquery.EndpointDeriver) FacadeOption {
	return func(options *facadeOptions) {
		options.endpointDeriver = deriver
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("appenv: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	deriver := cfg.endpointDeriver
	if deriver == nil {
		deriver = service
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		SetBackendVariant:   appcommand.NewSetBackendVariantCommand(service),
		SetCloudBaseURL:     appcommand.NewSetCloudBaseURLCommand(service),
		UseCloudWithURL:     appcommand.NewUseCloudWithURLCommand(service),
		SetSupabaseConfig:   appcommand.NewSetSupabaseConfigCommand(service),
		ClearSupabaseConfig: appcommand.NewClearSupabaseConfigCommand(service),
		RefreshEnvironment:  appcommand.NewRefreshEnvironmentCommand(service),
	}
	facade.queries = Queries{
		ResolveEnvironment: appquery.NewResolveEnvironmentQuery(service),
		CurrentEnvironment: appquery.NewCurrentEnvironmentQuery(service),
		ResolveVariant:     appquery.NewResolveVariantQuery(service),
		DeriveEndpoints:    appquery.NewDeriveEndpointsQuery(deriver),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
