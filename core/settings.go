package core

import (
	"context"
	"fmt"
	"strings"
)

const (
	settingBackendVariant  = "backend_variant"
	settingCloudBaseURL    = "cloud_base_url"
	settingSupabaseURL     = "supabase_url"
	settingSupabaseAnonKey = "supabase_anon_key"

	defaultVariantCode = "0"
)

// SettingKeys holds the fully qualified key-value store keys.
type SettingKeys struct {
	BackendVariant  string
	CloudBaseURL    string
	SupabaseURL     string
	SupabaseAnonKey string
}

func NewSettingKeys(namespace string) SettingKeys {
	prefix := strings.TrimSuffix(strings.TrimSpace(namespace), ".")
	if prefix != "" {
		prefix += "."
	}
	return SettingKeys{
		BackendVariant:  prefix + settingBackendVariant,
		CloudBaseURL:    prefix + settingCloudBaseURL,
		SupabaseURL:     prefix + settingSupabaseURL,
		SupabaseAnonKey: prefix + settingSupabaseAnonKey,
	}
}

type keySelector func(SettingKeys) string

func keyBackendVariant(k SettingKeys) string  { return k.BackendVariant }
func keyCloudBaseURL(k SettingKeys) string    { return k.CloudBaseURL }
func keySupabaseURL(k SettingKeys) string     { return k.SupabaseURL }
func keySupabaseAnonKey(k SettingKeys) string { return k.SupabaseAnonKey }

// SettingStore translates environment settings to and from raw key-value
// entries. Every read has its own default on a miss; writes are unconditional
// and pairing rules belong to the caller.
type SettingStore struct {
	store           KeyValueStore
	keys            SettingKeys
	defaultCloudURL string
}

func NewSettingStore(store KeyValueStore, keys SettingKeys, defaultCloudURL string) (*SettingStore, error) {
	if store == nil {
		return nil, fmt.Errorf("core: key-value store is required")
	}
	if strings.TrimSpace(defaultCloudURL) == "" {
		defaultCloudURL = DefaultCloudBaseURL
	}
	return &SettingStore{
		store:           store,
		keys:            keys,
		defaultCloudURL: defaultCloudURL,
	}, nil
}

func (s *SettingStore) Keys() SettingKeys {
	if s == nil {
		return SettingKeys{}
	}
	return s.keys
}

// LookupBackendVariant returns the raw persisted code and whether it exists.
func (s *SettingStore) LookupBackendVariant(ctx context.Context) (string, bool, error) {
	return s.lookup(ctx, keyBackendVariant)
}

func (s *SettingStore) BackendVariantCode(ctx context.Context) (string, error) {
	return s.getOrDefault(ctx, keyBackendVariant, defaultVariantCode)
}

func (s *SettingStore) SetBackendVariant(ctx context.Context, variant BackendVariant) error {
	return s.set(ctx, keyBackendVariant, variant.CodeString())
}

func (s *SettingStore) RemoveBackendVariant(ctx context.Context) error {
	return s.remove(ctx, keyBackendVariant)
}

func (s *SettingStore) LookupCloudBaseURL(ctx context.Context) (string, bool, error) {
	return s.lookup(ctx, keyCloudBaseURL)
}

func (s *SettingStore) CloudBaseURL(ctx context.Context) (string, error) {
	if s == nil {
		return DefaultCloudBaseURL, fmt.Errorf("core: setting store is not configured")
	}
	return s.getOrDefault(ctx, keyCloudBaseURL, s.defaultCloudURL)
}

func (s *SettingStore) SetCloudBaseURL(ctx context.Context, baseURL string) error {
	return s.set(ctx, keyCloudBaseURL, baseURL)
}

func (s *SettingStore) RemoveCloudBaseURL(ctx context.Context) error {
	return s.remove(ctx, keyCloudBaseURL)
}

func (s *SettingStore) SupabaseURL(ctx context.Context) (string, error) {
	return s.getOrDefault(ctx, keySupabaseURL, "")
}

func (s *SettingStore) SetSupabaseURL(ctx context.Context, value string) error {
	return s.set(ctx, keySupabaseURL, value)
}

func (s *SettingStore) RemoveSupabaseURL(ctx context.Context) error {
	return s.remove(ctx, keySupabaseURL)
}

func (s *SettingStore) SupabaseAnonKey(ctx context.Context) (string, error) {
	return s.getOrDefault(ctx, keySupabaseAnonKey, "")
}

func (s *SettingStore) SetSupabaseAnonKey(ctx context.Context, value string) error {
	return s.set(ctx, keySupabaseAnonKey, value)
}

func (s *SettingStore) RemoveSupabaseAnonKey(ctx context.Context) error {
	return s.remove(ctx, keySupabaseAnonKey)
}

func (s *SettingStore) lookup(ctx context.Context, pick keySelector) (string, bool, error) {
	if s == nil || s.store == nil {
		return "", false, fmt.Errorf("core: setting store is not configured")
	}
	key := pick(s.keys)
	value, found, err := s.store.Get(ctx, key)
	if err != nil {
		return "", false, storeError(err, "get", key)
	}
	return value, found, nil
}

func (s *SettingStore) getOrDefault(ctx context.Context, pick keySelector, fallback string) (string, error) {
	value, found, err := s.lookup(ctx, pick)
	if err != nil {
		return fallback, err
	}
	if !found {
		return fallback, nil
	}
	return value, nil
}

func (s *SettingStore) set(ctx context.Context, pick keySelector, value string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("core: setting store is not configured")
	}
	key := pick(s.keys)
	return storeError(s.store.Set(ctx, key, value), "set", key)
}

func (s *SettingStore) remove(ctx context.Context, pick keySelector) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("core: setting store is not configured")
	}
	key := pick(s.keys)
	return storeError(s.store.Remove(ctx, key), "remove", key)
}
