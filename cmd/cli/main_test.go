package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/myrjola/chartnote/cmd/cli/workspace"
	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/repositories"
	"github.com/myrjola/chartnote/internal/session"
	"github.com/myrjola/chartnote/internal/sqlite"
	"github.com/myrjola/chartnote/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// seedDatabase creates a database with one note and one template for Ch. 101.
func seedDatabase(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chartnote.sqlite")
	logger := testhelpers.NewLogger(io.Discard)
	db, err := sqlite.NewDatabase(ctx, path, logger)
	require.NoError(t, err)
	store := session.NewStore(repositories.NewKeyValueRepository(db, logger), logger)
	require.NoError(t, store.Load(ctx))
	_, err = store.UpdateForm(ctx, "Ch. 101", []byte(`{"gender":"Féminin","morse":{"history":25}}`))
	require.NoError(t, err)
	_, err = store.AppendNote(ctx, "Ch. 101", clinical.NoteEntry{ID: "", Timestamp: "08:00", Content: "Patiente calme."})
	require.NoError(t, err)
	_, err = store.SaveTemplate(ctx, "calme", "Ch. 101")
	require.NoError(t, err)
	require.NoError(t, db.Close())
	return path
}

func TestSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"shift":"Jour","position":{"selected":["Décubitus dorsal"]}}`), 0o600))

	out, err := execute(t, "summary", path)
	require.NoError(t, err)
	require.Contains(t, out, "Contexte: note rédigée durant le quart de Jour.")
	require.Contains(t, out, "Décubitus dorsal")

	path = filepath.Join(t.TempDir(), "invalid.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"shift":"Midi"}`), 0o600))
	_, err = execute(t, "summary", path)
	require.ErrorIs(t, err, clinical.ErrInvalidForm)
}

func TestExport(t *testing.T) {
	db := seedDatabase(t)
	dir := t.TempDir()

	tests := []struct {
		format string
		prefix string
	}{
		{format: "pdf", prefix: "%PDF"},
		{format: "label", prefix: "%PDF"},
		{format: "docx", prefix: "PK"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out := filepath.Join(dir, "note."+tt.format)
			printed, err := execute(t, "export", tt.format, "--db", db, "--patient", "Ch. 101", "--out", out,
				"--background", "")
			require.NoError(t, err)
			require.Equal(t, out, strings.TrimSpace(printed))
			data, err := os.ReadFile(out)
			require.NoError(t, err)
			require.True(t, bytes.HasPrefix(data, []byte(tt.prefix)))
		})
	}

	_, err := execute(t, "export", "odt", "--db", db)
	require.Error(t, err)
	_, err = execute(t, "export", "pdf", "--db", db, "--patient", "Ch. 999", "--out", filepath.Join(dir, "x.pdf"))
	require.ErrorIs(t, err, session.ErrPatientNotFound)
}

func TestZPL(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, "zpl", "--db", db, "--patient", "")
	require.NoError(t, err)
	require.Contains(t, out, "^FDCh. 101^FS")
	require.Contains(t, out, "Genre: Féminin")
	require.Contains(t, out, "Risque Chute: Modere")
}

func TestTemplates(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, "templates", "list", "--db", db)
	require.NoError(t, err)
	require.Equal(t, "calme\t1 entries\n", out)

	out, err = execute(t, "templates", "restore", "calme", "--db", db, "--patient", "Ch. 101")
	require.NoError(t, err)
	require.Equal(t, "restored \"calme\" into Ch. 101\n", out)

	_, err = execute(t, "templates", "restore", "inconnu", "--db", db, "--patient", "Ch. 101")
	require.ErrorIs(t, err, session.ErrTemplateNotFound)
}

func TestMissingDatabaseIsNotCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.sqlite")

	_, err := execute(t, "zpl", "--db", path)
	require.ErrorIs(t, err, workspace.ErrDatabaseNotFound)
	_, err = execute(t, "templates", "list", "--db", path)
	require.ErrorIs(t, err, workspace.ErrDatabaseNotFound)

	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}
