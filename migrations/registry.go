package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	appenv "github.com/goliatone/go-appenv"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	DefaultSourceLabel = "go-appenv"

	migrationsDir = "data/sql/migrations"
)

// requiredMigrations must exist as up/down pairs in every dialect directory.
var requiredMigrations = []string{"00001_appenv_settings"}

type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

// RegisterFunc hands one dialect's migrations to the host migrator, typically
// (*persistence.Client).RegisterSQLMigrations or RegisterDialectMigrations.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithDialectSourceLabel(label string) Option {
	return func(r *Registration) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			r.SourceLabel = trimmed
		}
	}
}

func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		next := make([]string, 0, len(targets))
		for _, target := range targets {
			if dialect := DialectForDriver(target); dialect != "" {
				next = append(next, dialect)
			}
		}
		if len(next) > 0 {
			r.ValidationTargets = dedupe(next)
		}
	}
}

func WithFilesystems(filesystems ...FilesystemSpec) Option {
	return func(r *Registration) {
		copied := make([]FilesystemSpec, 0, len(filesystems))
		for _, fsys := range filesystems {
			dialect := DialectForDriver(fsys.Dialect)
			if dialect == "" || fsys.FS == nil {
				continue
			}
			copied = append(copied, FilesystemSpec{Dialect: dialect, Path: fsys.Path, FS: fsys.FS})
		}
		if len(copied) > 0 {
			r.Filesystems = copied
		}
	}
}

// DialectForDriver maps a database/sql driver name or dialect alias to the
// migration dialect. Unknown drivers map to "".
func DialectForDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return DialectSQLite
	case "postgres", "postgresql", "pgx":
		return DialectPostgres
	default:
		return ""
	}
}

// Filesystems returns the postgres and sqlite migration directories from root,
// defaulting to the embedded tree.
func Filesystems(sources ...fs.FS) ([]FilesystemSpec, error) {
	root := appenv.GetMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}

	base, err := fs.Sub(root, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s: %w", migrationsDir, err)
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	filesystems := []FilesystemSpec{
		{Dialect: DialectPostgres, Path: migrationsDir, FS: base},
		{Dialect: DialectSQLite, Path: migrationsDir + "/sqlite", FS: sqliteFS},
	}
	for _, fsys := range filesystems {
		if err := checkRequiredMigrations(fsys); err != nil {
			return nil, err
		}
	}
	return filesystems, nil
}

func checkRequiredMigrations(spec FilesystemSpec) error {
	for _, name := range requiredMigrations {
		for _, direction := range []string{"up", "down"} {
			file := name + "." + direction + ".sql"
			if _, err := fs.Stat(spec.FS, file); err != nil {
				return fmt.Errorf("migrations: %s filesystem %q is missing %s: %w", spec.Dialect, spec.Path, file, err)
			}
		}
	}
	return nil
}

func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       DefaultSourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}

	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&reg)
	}

	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}

	for _, fsys := range reg.Filesystems {
		if !slices.Contains(reg.ValidationTargets, fsys.Dialect) {
			continue
		}
		if err := registerFn(ctx, fsys.Dialect, reg.SourceLabel, fsys.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", fsys.Dialect, fsys.Path, err)
		}
	}
	return reg, nil
}

// RegisterForDriver registers only the migrations matching driver.
func RegisterForDriver(ctx context.Context, driver string, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	dialect := DialectForDriver(driver)
	if dialect == "" {
		return Registration{}, fmt.Errorf("migrations: unsupported driver %q", driver)
	}
	opts = append(opts, WithValidationTargets(dialect))
	return Register(ctx, registerFn, opts...)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
