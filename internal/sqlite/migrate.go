package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/myrjola/chartnote/internal/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var migrations = mustLoadMigrations(migrationFiles)

var ErrInvalidMigration = errors.NewSentinel("invalid migration")

// migration is a single schema step. Files are named NNNN_description.sql and version is NNNN.
type migration struct {
	version int
	name    string
	sql     string
}

func mustLoadMigrations(fsys fs.FS) []migration {
	loaded, err := loadMigrations(fsys)
	if err != nil {
		panic(err)
	}
	return loaded
}

func loadMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, errors.Wrap(err, "glob migrations")
	}
	result := make([]migration, 0, len(entries))
	for _, entry := range entries {
		name := path.Base(entry)
		prefix, _, found := strings.Cut(name, "_")
		if !found {
			return nil, errors.Wrap(ErrInvalidMigration, "missing version prefix", slog.String("file", name))
		}
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			return nil, errors.Wrap(ErrInvalidMigration, "bad version prefix", slog.String("file", name))
		}
		content, err := fs.ReadFile(fsys, entry)
		if err != nil {
			return nil, errors.Wrap(err, "read migration", slog.String("file", name))
		}
		result = append(result, migration{version: version, name: name, sql: string(content)})
	}
	slices.SortFunc(result, func(a, b migration) int { return a.version - b.version })
	for i := 1; i < len(result); i++ {
		if result[i].version == result[i-1].version {
			return nil, errors.Wrap(ErrInvalidMigration, "duplicate version",
				slog.Int("version", result[i].version))
		}
	}
	return result, nil
}

// migrate applies every migration newer than PRAGMA user_version, each in its own transaction.
func (db *Database) migrate(ctx context.Context, steps []migration) error {
	current, err := db.schemaVersion(ctx)
	if err != nil {
		return err
	}
	for _, step := range steps {
		if step.version <= current {
			continue
		}
		if err = db.apply(ctx, step); err != nil {
			return errors.Wrap(err, "apply migration", slog.String("migration", step.name))
		}
		db.logger.LogAttrs(ctx, slog.LevelInfo, "applied migration",
			slog.String("migration", step.name), slog.Int("version", step.version))
	}
	return nil
}

func (db *Database) schemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := db.ReadWrite.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, errors.Wrap(err, "query user_version")
	}
	return version, nil
}

func (db *Database) apply(ctx context.Context, step migration) error {
	var (
		tx  *sql.Tx
		err error
	)
	if tx, err = db.ReadWrite.BeginTx(ctx, nil); err != nil {
		return errors.Wrap(err, "start transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction",
				errors.SlogError(rollbackErr))
		}
	}()
	if _, err = tx.ExecContext(ctx, step.sql); err != nil {
		return errors.Wrap(err, "execute migration")
	}
	// PRAGMA does not accept bound parameters.
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", step.version)); err != nil {
		return errors.Wrap(err, "bump user_version")
	}
	if _, err = tx.ExecContext(ctx, "PRAGMA foreign_key_check"); err != nil {
		return errors.Wrap(err, "foreign key check")
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}
