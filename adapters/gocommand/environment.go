package gocommand

import (
	"fmt"

	appcommand "github.com/goliatone/go-appenv/command"
	appquery "github.com/goliatone/go-appenv/query"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

// EnvironmentService is the surface RegisterEnvironment needs. *core.Service
// satisfies it.
type EnvironmentService interface {
	appcommand.MutatingService
	appcommand.EnvironmentRefresher
	appquery.EnvironmentReader
	appquery.EndpointDeriver
}

// Subscriptions groups dispatcher subscriptions so they can be released
// together.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, sub := range s {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}

// RegisterEnvironment registers every appenv command and query with the
// adapter registry and subscribes them to the global dispatcher. On error the
// subscriptions made so far are released.
func RegisterEnvironment(
	adapter *RegistryAdapter,
	service EnvironmentService,
	runnerOpts ...runner.Option,
) (Subscriptions, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if service == nil {
		return nil, fmt.Errorf("gocommand: environment service is required")
	}

	var subs Subscriptions
	register := func(sub commanddispatcher.Subscription, err error) error {
		if err != nil {
			subs.Unsubscribe()
			return err
		}
		subs = append(subs, sub)
		return nil
	}

	steps := []func() error{
		func() error {
			return register(RegisterAndSubscribe(adapter, appcommand.NewSetBackendVariantCommand(service), runnerOpts...))
		},
		func() error {
			return register(RegisterAndSubscribe(adapter, appcommand.NewSetCloudBaseURLCommand(service), runnerOpts...))
		},
		func() error {
			return register(RegisterAndSubscribe(adapter, appcommand.NewUseCloudWithURLCommand(service), runnerOpts...))
		},
		func() error {
			return register(RegisterAndSubscribe(adapter, appcommand.NewSetSupabaseConfigCommand(service), runnerOpts...))
		},
		func() error {
			return register(RegisterAndSubscribe(adapter, appcommand.NewClearSupabaseConfigCommand(service), runnerOpts...))
		},
		func() error {
			return register(RegisterAndSubscribe(adapter, appcommand.NewRefreshEnvironmentCommand(service), runnerOpts...))
		},
		func() error {
			return register(SubscribeQuery(appquery.NewResolveEnvironmentQuery(service), runnerOpts...), nil)
		},
		func() error {
			return register(SubscribeQuery(appquery.NewCurrentEnvironmentQuery(service), runnerOpts...), nil)
		},
		func() error {
			return register(SubscribeQuery(appquery.NewResolveVariantQuery(service), runnerOpts...), nil)
		},
		func() error {
			return register(SubscribeQuery(appquery.NewDeriveEndpointsQuery(service), runnerOpts...), nil)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return subs, nil
}
