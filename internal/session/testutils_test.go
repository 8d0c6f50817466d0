package session_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/chartnote/internal/repositories"
	"github.com/myrjola/chartnote/internal/session"
	"github.com/myrjola/chartnote/internal/sqlite"
	"github.com/myrjola/chartnote/internal/testhelpers"
)

func newTestRepo(t *testing.T) *repositories.KeyValueRepository {
	t.Helper()
	logger := testhelpers.NewLogger(io.Discard)
	db, err := sqlite.NewDatabase(context.Background(), ":memory:", logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err = db.Close(); err != nil {
			t.Error(err)
		}
	})
	return repositories.NewKeyValueRepository(db, logger)
}

// newLoadedStore returns a store loaded from kv.
func newLoadedStore(t *testing.T, kv session.KeyValueStore) *session.Store {
	t.Helper()
	store := session.NewStore(kv, testhelpers.NewLogger(io.Discard))
	if err := store.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return store
}

func patientIDs(s session.Snapshot) []string {
	ids := make([]string, 0, len(s.Patients))
	for _, p := range s.Patients {
		ids = append(ids, p.ID)
	}
	return ids
}
