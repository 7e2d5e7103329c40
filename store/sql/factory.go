package sqlstore

import (
	"fmt"

	"github.com/goliatone/go-appenv/core"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

type RepositoryFactory struct {
	db *bun.DB

	keyValueStore *KeyValueStore
	cached        *CachedKeyValueStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStore(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStore(db); err != nil {
		return nil, err
	}
	return factory, nil
}

// NewKeyValueStoreFromPersistence builds the SQL store over a go-persistence-bun
// client.
func NewKeyValueStoreFromPersistence(client *persistence.Client) (*KeyValueStore, error) {
	factory, err := NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		return nil, err
	}
	return factory.KeyValueStore(), nil
}

// BuildStore accepts a *bun.DB or anything exposing DB() *bun.DB.
func (f *RepositoryFactory) BuildStore(persistenceClient any) (core.KeyValueStore, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.keyValueStore != nil {
		return f.keyValueStore, nil
	}
	store, err := NewKeyValueStore(f.db)
	if err != nil {
		return nil, err
	}
	f.keyValueStore = store
	return store, nil
}

// WithCache wraps the SQL store in a read-through cache. Later calls return the
// same cached store.
func (f *RepositoryFactory) WithCache(cacheService repositorycache.CacheService) (*CachedKeyValueStore, error) {
	if f == nil || f.keyValueStore == nil {
		return nil, fmt.Errorf("sqlstore: key-value store is not built")
	}
	if f.cached != nil {
		return f.cached, nil
	}
	cached, err := NewCachedKeyValueStore(f.keyValueStore, cacheService)
	if err != nil {
		return nil, err
	}
	f.cached = cached
	return cached, nil
}

func (f *RepositoryFactory) KeyValueStore() *KeyValueStore {
	if f == nil {
		return nil
	}
	return f.keyValueStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		if typed == nil {
			return nil, fmt.Errorf("sqlstore: persistence client is required")
		}
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
