package core

import "context"

// SharedEnvironment is the resolved backend selection. It is a value: callers
// receive copies and it is never mutated after resolution.
type SharedEnvironment struct {
	Variant  BackendVariant         `json:"variant"`
	Cloud    CloudEndpointConfig    `json:"cloud"`
	Supabase SupabaseEndpointConfig `json:"supabase"`
}

// BackendVariant is Variant normalized for components that only understand
// the backend's three-way encoding.
func (e SharedEnvironment) BackendVariant() BackendVariant {
	return e.Variant.Normalize()
}

func (e SharedEnvironment) WireCode() int {
	return e.Variant.WireCode()
}

func (e SharedEnvironment) IsAuthEnabled() bool {
	switch {
	case e.Variant.UsesCloudStyleAuth():
		return e.Cloud.IsValid()
	case e.Variant.UsesSupabaseStyleAuth():
		return e.Supabase.IsValid()
	default:
		return false
	}
}

type environmentContextKey struct{}

func ContextWithEnvironment(ctx context.Context, env SharedEnvironment) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, environmentContextKey{}, env)
}

func EnvironmentFromContext(ctx context.Context) (SharedEnvironment, bool) {
	if ctx == nil {
		return SharedEnvironment{}, false
	}
	env, ok := ctx.Value(environmentContextKey{}).(SharedEnvironment)
	return env, ok
}
