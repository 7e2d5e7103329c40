package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type settingRecord struct {
	bun.BaseModel `bun:"table:app_env_settings,alias:aes"`

	ID        string    `bun:"id,pk"`
	Key       string    `bun:"setting_key,notnull"`
	Value     string    `bun:"setting_value,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
