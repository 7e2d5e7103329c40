package query

const (
	TypeResolveEnvironment = "appenv.query.environment.resolve"
	TypeCurrentEnvironment = "appenv.query.environment.current"
	TypeResolveVariant     = "appenv.query.variant.resolve"
	TypeDeriveEndpoints    = "appenv.query.endpoints.derive"
)

// ResolveEnvironmentMessage runs resolution without touching the cached
// environment.
type ResolveEnvironmentMessage struct{}

func (ResolveEnvironmentMessage) Type() string { return TypeResolveEnvironment }

func (ResolveEnvironmentMessage) Validate() error { return nil }

// CurrentEnvironmentMessage returns the process-lifetime environment.
type CurrentEnvironmentMessage struct{}

func (CurrentEnvironmentMessage) Type() string { return TypeCurrentEnvironment }

func (CurrentEnvironmentMessage) Validate() error { return nil }

type ResolveVariantMessage struct{}

func (ResolveVariantMessage) Type() string { return TypeResolveVariant }

func (ResolveVariantMessage) Validate() error { return nil }

// DeriveEndpointsMessage accepts any base url, including an empty one.
type DeriveEndpointsMessage struct {
	BaseURL string
}

func (DeriveEndpointsMessage) Type() string { return TypeDeriveEndpoints }

func (DeriveEndpointsMessage) Validate() error { return nil }
