package core

import (
	"strconv"
	"strings"
)

// BackendVariant identifies which authentication/sync backend the application
// talks to. Codes are persisted, so existing values must never be renumbered.
type BackendVariant int

const (
	VariantLocal BackendVariant = iota
	VariantSupabase
	VariantCloud
	VariantCloudSelfHosted
)

const (
	variantNameLocal           = "local"
	variantNameSupabase        = "supabase"
	variantNameCloud           = "cloud"
	variantNameCloudSelfHosted = "cloud_self_hosted"
)

// VariantFromCode decodes a persisted integer code. Unknown codes decode to
// VariantLocal.
func VariantFromCode(code int) BackendVariant {
	switch BackendVariant(code) {
	case VariantLocal, VariantSupabase, VariantCloud, VariantCloudSelfHosted:
		return BackendVariant(code)
	default:
		return VariantLocal
	}
}

// ParseVariantCode decodes a raw persisted value and reports whether it named
// one of the known variants.
func ParseVariantCode(raw string) (BackendVariant, bool) {
	code, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return VariantLocal, false
	}
	variant := BackendVariant(code)
	if !variant.IsKnown() {
		return VariantLocal, false
	}
	return variant, true
}

// ParseVariantName accepts either a variant name (e.g. "cloud_self_hosted") or
// its integer code.
func ParseVariantName(raw string) (BackendVariant, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch normalized {
	case variantNameLocal:
		return VariantLocal, true
	case variantNameSupabase:
		return VariantSupabase, true
	case variantNameCloud:
		return VariantCloud, true
	case variantNameCloudSelfHosted:
		return VariantCloudSelfHosted, true
	}
	return ParseVariantCode(normalized)
}

func (v BackendVariant) IsKnown() bool {
	switch v {
	case VariantLocal, VariantSupabase, VariantCloud, VariantCloudSelfHosted:
		return true
	default:
		return false
	}
}

// Code is the persisted representation.
func (v BackendVariant) Code() int {
	return int(v)
}

// CodeString is Code formatted for the key-value store.
func (v BackendVariant) CodeString() string {
	return strconv.Itoa(v.Code())
}

// Normalize collapses frontend-only refinements onto the variant the backend
// understands.
func (v BackendVariant) Normalize() BackendVariant {
	if v == VariantCloudSelfHosted {
		return VariantCloud
	}
	return v
}

// WireCode is the three-way code expected by the backend process.
func (v BackendVariant) WireCode() int {
	return v.Normalize().Code()
}

func (v BackendVariant) IsLocal() bool {
	return v == VariantLocal
}

func (v BackendVariant) UsesCloudStyleAuth() bool {
	return v == VariantCloud || v == VariantCloudSelfHosted
}

func (v BackendVariant) UsesSupabaseStyleAuth() bool {
	return v == VariantSupabase
}

func (v BackendVariant) String() string {
	switch v {
	case VariantLocal:
		return variantNameLocal
	case VariantSupabase:
		return variantNameSupabase
	case VariantCloud:
		return variantNameCloud
	case VariantCloudSelfHosted:
		return variantNameCloudSelfHosted
	default:
		return "unknown(" + strconv.Itoa(int(v)) + ")"
	}
}
