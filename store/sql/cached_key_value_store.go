package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-appenv/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const settingCacheKeyPrefix = "go-appenv::setting::v1"

type cachedSetting struct {
	Value string
	Found bool
}

// CachedKeyValueStore is a read-through cache in front of another
// KeyValueStore. Absent keys are cached too; every write drops the entry.
type CachedKeyValueStore struct {
	base  core.KeyValueStore
	cache repositorycache.CacheService
}

func NewCachedKeyValueStore(
	base core.KeyValueStore,
	cacheService repositorycache.CacheService,
) (*CachedKeyValueStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base key-value store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: key-value cache service is required")
	}
	return &CachedKeyValueStore{base: base, cache: cacheService}, nil
}

// SettingCacheKey returns go-appenv::setting::v1::<key> with the key
// URL-path escaped.
func SettingCacheKey(key string) (string, error) {
	normalized, err := normalizeSettingKey(key)
	if err != nil {
		return "", err
	}
	return strings.Join([]string{settingCacheKeyPrefix, url.PathEscape(normalized)}, "::"), nil
}

func (s *CachedKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return "", false, fmt.Errorf("sqlstore: cached key-value store is not configured")
	}
	cacheKey, err := SettingCacheKey(key)
	if err != nil {
		return "", false, err
	}
	normalized := strings.TrimSpace(key)

	entry, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedSetting, error) {
		value, found, fetchErr := s.base.Get(ctx, normalized)
		if fetchErr != nil {
			return cachedSetting{}, fetchErr
		}
		return cachedSetting{Value: value, Found: found}, nil
	})
	if err != nil {
		return "", false, err
	}
	return entry.Value, entry.Found, nil
}

func (s *CachedKeyValueStore) Set(ctx context.Context, key string, value string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached key-value store is not configured")
	}
	cacheKey, err := SettingCacheKey(key)
	if err != nil {
		return err
	}
	if err := s.base.Set(ctx, strings.TrimSpace(key), value); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func (s *CachedKeyValueStore) Remove(ctx context.Context, key string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached key-value store is not configured")
	}
	cacheKey, err := SettingCacheKey(key)
	if err != nil {
		return err
	}
	if err := s.base.Remove(ctx, strings.TrimSpace(key)); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}
