package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/sqlite"
)

var ErrNotFound = errors.NewSentinel("key not found")

// KeyValueRepository persists opaque string values under string keys in the kv table.
type KeyValueRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewKeyValueRepository(db *sqlite.Database, logger *slog.Logger) *KeyValueRepository {
	return &KeyValueRepository{
		db:     db,
		logger: logger.With(slog.String("source", "KeyValueRepository")),
	}
}

// Get returns the value stored under key or ErrNotFound.
func (r *KeyValueRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.ReadOnly.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.Wrap(ErrNotFound, "read value", slog.String("key", key))
	}
	if err != nil {
		return "", errors.Wrap(err, "read value", slog.String("key", key))
	}
	return value, nil
}

// Set upserts value under key.
func (r *KeyValueRepository) Set(ctx context.Context, key, value string) error {
	stmt := `INSERT INTO kv (key, value) VALUES (:key, :value)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ')`
	if _, err := r.db.ReadWrite.ExecContext(ctx, stmt,
		sql.Named("key", key), sql.Named("value", value)); err != nil {
		return errors.Wrap(err, "upsert value", slog.String("key", key))
	}
	return nil
}

// SetMany upserts all entries in a single transaction.
func (r *KeyValueRepository) SetMany(ctx context.Context, entries map[string]string) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", errors.SlogError(rollbackErr))
		}
	}()
	stmt := `INSERT INTO kv (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ')`
	for key, value := range entries {
		if _, err = tx.ExecContext(ctx, stmt, key, value); err != nil {
			return errors.Wrap(err, "upsert value", slog.String("key", key))
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *KeyValueRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return errors.Wrap(err, "delete value", slog.String("key", key))
	}
	return nil
}

// ListPrefix returns every entry whose key starts with prefix, ordered by key.
func (r *KeyValueRepository) ListPrefix(ctx context.Context, prefix string) (map[string]string, error) {
	var (
		rows *sql.Rows
		err  error
	)
	// LIKE is case-insensitive in SQLite, so compare the prefix exactly instead.
	if rows, err = r.db.ReadOnly.QueryContext(ctx,
		`SELECT key, value FROM kv WHERE substr(key, 1, length(:prefix)) = :prefix ORDER BY key`,
		sql.Named("prefix", prefix)); err != nil {
		return nil, errors.Wrap(err, "query prefix", slog.String("prefix", prefix))
	}
	defer func() {
		if err = rows.Close(); err != nil {
			err = errors.Wrap(err, "close rows")
			r.logger.Error("could not close rows", errors.SlogError(err))
		}
	}()
	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err = rows.Scan(&key, &value); err != nil {
			return nil, errors.Wrap(err, "scan entry")
		}
		result[key] = value
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return result, nil
}
