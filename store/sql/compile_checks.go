package sqlstore

import "github.com/goliatone/go-appenv/core"

var (
	_ core.KeyValueStore          = (*KeyValueStore)(nil)
	_ core.KeyValueStore          = (*CachedKeyValueStore)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
