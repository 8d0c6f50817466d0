// Package workspace opens the chartnote database for the command line tools.
package workspace

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/logging"
	"github.com/myrjola/chartnote/internal/preferences"
	"github.com/myrjola/chartnote/internal/repositories"
	"github.com/myrjola/chartnote/internal/session"
	"github.com/myrjola/chartnote/internal/sqlite"
	"github.com/spf13/cobra"
)

const (
	FlagDB      = "db"
	FlagPatient = "patient"

	defaultDB = "./chartnote.sqlite"
)

type Workspace struct {
	Store  *session.Store
	Prefs  *preferences.Service
	db     *sqlite.Database
	logger *slog.Logger
}

// AddFlags registers the --db flag and, when withPatient is set, the --patient flag.
func AddFlags(cmd *cobra.Command, withPatient bool) {
	cmd.Flags().String(FlagDB, defaultDB, "path to the chartnote SQLite database")
	if withPatient {
		cmd.Flags().String(FlagPatient, "", "patient id, defaults to the active patient")
	}
}

// NewLogger logs warnings and errors to w, the command's error stream.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelWarn,
		ReplaceAttr: nil,
	})))
}

var ErrDatabaseNotFound = errors.NewSentinel("database not found")

// Open opens the existing database named by the --db flag and reads the patient registry. Only
// commands that change a patient write to the database.
func Open(ctx context.Context, cmd *cobra.Command) (*Workspace, error) {
	dbURL, err := cmd.Flags().GetString(FlagDB)
	if err != nil {
		return nil, errors.Wrap(err, "read db flag")
	}
	if _, err = os.Stat(dbURL); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(ErrDatabaseNotFound, dbURL, slog.String("db", dbURL))
		}
		return nil, errors.Wrap(err, "stat database", slog.String("db", dbURL))
	}
	logger := NewLogger(cmd.ErrOrStderr())
	db, err := sqlite.NewDatabase(ctx, dbURL, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open database", slog.String("db", dbURL))
	}
	kv := repositories.NewKeyValueRepository(db, logger)
	store := session.NewStore(kv, logger)
	if err = store.Refresh(ctx); err != nil {
		return nil, errors.Join(errors.Wrap(err, "load patients"), db.Close())
	}
	return &Workspace{
		Store:  store,
		Prefs:  preferences.NewService(kv, "", logger),
		db:     db,
		logger: logger,
	}, nil
}

// PatientID returns the --patient flag or the active patient.
func (w *Workspace) PatientID(cmd *cobra.Command) (string, error) {
	id, err := cmd.Flags().GetString(FlagPatient)
	if err != nil {
		return "", errors.Wrap(err, "read patient flag")
	}
	if id == "" {
		id = w.Store.ActiveID()
	}
	return id, nil
}

func (w *Workspace) Close() error {
	return w.db.Close()
}
