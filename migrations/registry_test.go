package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	appenv "github.com/goliatone/go-appenv"
	_ "github.com/mattn/go-sqlite3"
)

func TestFilesystems_ReturnsPostgresAndSQLite(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}

	var postgresFound bool
	var sqliteFound bool
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migration files, got none", entry.Dialect)
		}
		switch entry.Dialect {
		case DialectPostgres:
			postgresFound = true
		case DialectSQLite:
			sqliteFound = true
		}
	}

	if !postgresFound {
		t.Fatalf("expected postgres filesystem")
	}
	if !sqliteFound {
		t.Fatalf("expected sqlite filesystem")
	}
}

func TestRegister_UsesValidationTargets(t *testing.T) {
	var calls []string
	reg, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		calls = append(calls, dialect)
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 registration call, got %d", len(calls))
	}
	if calls[0] != DialectSQLite {
		t.Fatalf("expected sqlite registration, got %q", calls[0])
	}
	if reg.SourceLabel != "go-appenv" {
		t.Fatalf("expected default source label, got %q", reg.SourceLabel)
	}
}

func TestRegister_PropagatesRegisterErrors(t *testing.T) {
	sentinel := errors.New("boom")
	_, err := Register(context.Background(), func(context.Context, string, string, fs.FS) error {
		return sentinel
	}, WithDialectSourceLabel("host-app"))
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected register error to wrap sentinel, got %v", err)
	}

	if _, err := Register(context.Background(), nil); err == nil {
		t.Fatalf("expected missing register function error")
	}
}

func TestRegisterForDriver_SelectsDialect(t *testing.T) {
	var calls []string
	record := func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		calls = append(calls, dialect)
		return nil
	}

	if _, err := RegisterForDriver(context.Background(), "sqlite3", record); err != nil {
		t.Fatalf("register sqlite3: %v", err)
	}
	if _, err := RegisterForDriver(context.Background(), "pgx", record); err != nil {
		t.Fatalf("register pgx: %v", err)
	}
	if len(calls) != 2 || calls[0] != DialectSQLite || calls[1] != DialectPostgres {
		t.Fatalf("unexpected registration calls %v", calls)
	}

	if _, err := RegisterForDriver(context.Background(), "mysql", record); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestDialectForDriver(t *testing.T) {
	cases := map[string]string{
		"sqlite":      DialectSQLite,
		" SQLite3 ":   DialectSQLite,
		"postgres":    DialectPostgres,
		"postgresql":  DialectPostgres,
		"pgx":         DialectPostgres,
		"mysql":       "",
		"":            "",
	}
	for driver, want := range cases {
		if got := DialectForDriver(driver); got != want {
			t.Fatalf("DialectForDriver(%q) = %q, want %q", driver, got, want)
		}
	}
}

func TestFilesystems_RequiresSettingsMigrationPair(t *testing.T) {
	incomplete := fstest.MapFS{
		"data/sql/migrations/00001_appenv_settings.up.sql":        {Data: []byte("CREATE TABLE x (id TEXT);")},
		"data/sql/migrations/00001_appenv_settings.down.sql":      {Data: []byte("DROP TABLE x;")},
		"data/sql/migrations/sqlite/00001_appenv_settings.up.sql": {Data: []byte("CREATE TABLE x (id TEXT);")},
	}
	if _, err := Filesystems(incomplete); err == nil {
		t.Fatalf("expected missing sqlite down migration to fail")
	}

	incomplete["data/sql/migrations/sqlite/00001_appenv_settings.down.sql"] = &fstest.MapFile{Data: []byte("DROP TABLE x;")}
	filesystems, err := Filesystems(incomplete)
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if filesystems[1].Path != "data/sql/migrations/sqlite" {
		t.Fatalf("unexpected sqlite path %q", filesystems[1].Path)
	}
}

func TestSettingsMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := appenv.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/00001_appenv_settings.up.sql",
		"data/sql/migrations/00001_appenv_settings.down.sql",
		"data/sql/migrations/sqlite/00001_appenv_settings.up.sql",
		"data/sql/migrations/sqlite/00001_appenv_settings.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			t.Fatalf("expected migration %s to have SQL content", migrationPath)
		}
	}
}

func TestSQLiteSettingsMigration_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-appenv-settings?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	root := appenv.GetMigrationsFS()
	sqliteMigrations, err := fs.Sub(root, "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}

	if err := execSQLMigration(context.Background(), db, sqliteMigrations, "00001_appenv_settings.up.sql"); err != nil {
		t.Fatalf("apply settings migration up: %v", err)
	}

	insertStatement := `INSERT INTO app_env_settings (id, setting_key, setting_value) VALUES (?, ?, ?)`
	if _, err := db.ExecContext(context.Background(), insertStatement, "id-1", "appenv.backend_variant", "2"); err != nil {
		t.Fatalf("insert setting: %v", err)
	}
	if _, err := db.ExecContext(context.Background(), insertStatement, "id-2", "appenv.backend_variant", "1"); err == nil {
		t.Fatalf("expected unique key violation after up migration")
	}

	if err := execSQLMigration(context.Background(), db, sqliteMigrations, "00001_appenv_settings.down.sql"); err != nil {
		t.Fatalf("apply settings migration down: %v", err)
	}

	var count int
	if err := db.QueryRowContext(
		context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`,
		"app_env_settings",
	).Scan(&count); err != nil {
		t.Fatalf("query sqlite_master after down migration: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected app_env_settings to be dropped after down migration")
	}
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}
