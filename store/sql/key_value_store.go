package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// KeyValueStore persists settings as rows of app_env_settings, one row per key.
type KeyValueStore struct {
	db   *bun.DB
	repo repository.Repository[*settingRecord]
	now  func() time.Time
}

func NewKeyValueStore(db *bun.DB) (*KeyValueStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*settingRecord](db, settingHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid settings repository wiring: %w", err)
		}
	}
	return &KeyValueStore{
		db:   db,
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.repo == nil {
		return "", false, fmt.Errorf("sqlstore: key-value store is not configured")
	}
	key, err := normalizeSettingKey(key)
	if err != nil {
		return "", false, err
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("setting_key", "=", key),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	if len(records) == 0 || records[0] == nil {
		return "", false, nil
	}
	return records[0].Value, true, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key string, value string) error {
	if s == nil || s.db == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: key-value store is not configured")
	}
	key, err := normalizeSettingKey(key)
	if err != nil {
		return err
	}
	now := s.now()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findSettingTx(ctx, tx, key)
		if err != nil {
			return err
		}
		if record == nil {
			_, createErr := s.repo.CreateTx(ctx, tx, &settingRecord{
				ID:        uuid.NewString(),
				Key:       key,
				Value:     value,
				CreatedAt: now,
				UpdatedAt: now,
			})
			return createErr
		}
		_, updateErr := tx.NewUpdate().
			Model((*settingRecord)(nil)).
			Set("setting_value = ?", value).
			Set("updated_at = ?", now).
			Where("id = ?", record.ID).
			Exec(ctx)
		return updateErr
	})
}

func (s *KeyValueStore) Remove(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: key-value store is not configured")
	}
	key, err := normalizeSettingKey(key)
	if err != nil {
		return err
	}
	_, err = s.db.NewDelete().
		Model((*settingRecord)(nil)).
		Where("setting_key = ?", key).
		Exec(ctx)
	return err
}

// Keys lists the stored keys that start with prefix, ordered by key.
func (s *KeyValueStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: key-value store is not configured")
	}
	selectors := []repository.SelectCriteria{
		repository.OrderBy("setting_key ASC"),
	}
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		selectors = append(selectors, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.setting_key LIKE ?", prefix+"%")
		}))
	}
	records, _, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(records))
	for _, record := range records {
		if record == nil || !strings.HasPrefix(record.Key, prefix) {
			continue
		}
		out = append(out, record.Key)
	}
	return out, nil
}

func findSettingTx(ctx context.Context, tx bun.Tx, key string) (*settingRecord, error) {
	record := &settingRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.setting_key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func normalizeSettingKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("sqlstore: setting key is required")
	}
	return key, nil
}
