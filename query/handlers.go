package query

import (
	"context"

	"github.com/goliatone/go-appenv/core"
)

type EnvironmentReader interface {
	Environment(ctx context.Context) core.SharedEnvironment
	ResolveEnvironment(ctx context.Context) core.SharedEnvironment
	ResolveVariant(ctx context.Context) core.BackendVariant
}

type EndpointDeriver interface {
	DeriveEndpoints(baseURL string) core.CloudEndpointConfig
}

type ResolveEnvironmentQuery struct {
	reader EnvironmentReader
}

func NewResolveEnvironmentQuery(reader EnvironmentReader) *ResolveEnvironmentQuery {
	return &ResolveEnvironmentQuery{reader: reader}
}

func (q *ResolveEnvironmentQuery) Query(ctx context.Context, _ ResolveEnvironmentMessage) (core.SharedEnvironment, error) {
	if q == nil || q.reader == nil {
		return core.SharedEnvironment{}, queryDependencyError("query: environment reader is required")
	}
	return q.reader.ResolveEnvironment(ctx), nil
}

type CurrentEnvironmentQuery struct {
	reader EnvironmentReader
}

func NewCurrentEnvironmentQuery(reader EnvironmentReader) *CurrentEnvironmentQuery {
	return &CurrentEnvironmentQuery{reader: reader}
}

func (q *CurrentEnvironmentQuery) Query(ctx context.Context, _ CurrentEnvironmentMessage) (core.SharedEnvironment, error) {
	if q == nil || q.reader == nil {
		return core.SharedEnvironment{}, queryDependencyError("query: environment reader is required")
	}
	return q.reader.Environment(ctx), nil
}

type ResolveVariantQuery struct {
	reader EnvironmentReader
}

func NewResolveVariantQuery(reader EnvironmentReader) *ResolveVariantQuery {
	return &ResolveVariantQuery{reader: reader}
}

func (q *ResolveVariantQuery) Query(ctx context.Context, _ ResolveVariantMessage) (core.BackendVariant, error) {
	if q == nil || q.reader == nil {
		return core.VariantLocal, queryDependencyError("query: environment reader is required")
	}
	return q.reader.ResolveVariant(ctx), nil
}

type DeriveEndpointsQuery struct {
	deriver EndpointDeriver
}

func NewDeriveEndpointsQuery(deriver EndpointDeriver) *DeriveEndpointsQuery {
	return &DeriveEndpointsQuery{deriver: deriver}
}

func (q *DeriveEndpointsQuery) Query(_ context.Context, msg DeriveEndpointsMessage) (core.CloudEndpointConfig, error) {
	if q == nil || q.deriver == nil {
		return core.CloudEndpointConfig{}, queryDependencyError("query: endpoint deriver is required")
	}
	return q.deriver.DeriveEndpoints(msg.BaseURL), nil
}
