// Package core contains the backend environment domain: the closed set of
// backend variants, endpoint derivation, the typed settings adapter over a
// key-value store, and the resolution policy that produces a SharedEnvironment.
// Storage and transport adapters depend on this package; core must not depend
// on them.
package core
