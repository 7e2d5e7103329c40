package query

import (
	"github.com/goliatone/go-appenv/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Querier[ResolveEnvironmentMessage, core.SharedEnvironment] = (*ResolveEnvironmentQuery)(nil)
	_ gocmd.Querier[CurrentEnvironmentMessage, core.SharedEnvironment] = (*CurrentEnvironmentQuery)(nil)
	_ gocmd.Querier[ResolveVariantMessage, core.BackendVariant]        = (*ResolveVariantQuery)(nil)
	_ gocmd.Querier[DeriveEndpointsMessage, core.CloudEndpointConfig]  = (*DeriveEndpointsQuery)(nil)
)
