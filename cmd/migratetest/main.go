package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/repositories"
	"github.com/myrjola/chartnote/internal/session"
	"github.com/myrjola/chartnote/internal/sqlite"
	"github.com/myrjola/chartnote/internal/testhelpers"
)

// migratetest applies the pending migrations to a copy of a production database and checks that
// the patient registry still loads.
func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("CHARTNOTE_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "CHARTNOTE_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	// The registry must decode without falling back to the blank bootstrap.
	kv := repositories.NewKeyValueRepository(db, logger)
	if _, err = kv.Get(ctx, session.KeyPatients); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "no patient registry found, something is likely wrong",
			errors.SlogError(err))
		os.Exit(1)
	}
	store := session.NewStore(kv, logger)
	if err = store.Load(ctx); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error loading patients", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "patient count", slog.Int("count", len(store.Snapshot().Patients)))

	if err = db.Close(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(err))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
