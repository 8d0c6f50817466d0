package session_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/repositories"
	"github.com/myrjola/chartnote/internal/session"
	"github.com/myrjola/chartnote/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestLoad_Bootstrap(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	store := newLoadedStore(t, repo)

	snap := store.Snapshot()
	require.Equal(t, []string{"Ch. 101"}, patientIDs(snap))
	require.Equal(t, "Ch. 101", snap.ActiveID)
	require.Equal(t, 102, snap.NextRoomNumber)

	// The bootstrap is persisted.
	active, err := repo.Get(ctx, session.KeyActiveID)
	require.NoError(t, err)
	require.Equal(t, "Ch. 101", active)
}

func TestLoad_MalformedRegistry(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.Set(ctx, session.KeyPatients, `{"Ch. 201": {"formState": `))

	store := newLoadedStore(t, repo)
	require.Equal(t, []string{"Ch. 101"}, patientIDs(store.Snapshot()))
}

func TestLoad_ActiveFallsBackToFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.Set(ctx, session.KeyPatients, `{"Ch. 305": {}, "Ch. 201": {}}`))
	require.NoError(t, repo.Set(ctx, session.KeyActiveID, "Ch. 999"))

	snap := newLoadedStore(t, repo).Snapshot()
	require.Equal(t, []string{"Ch. 305", "Ch. 201"}, patientIDs(snap))
	require.Equal(t, "Ch. 305", snap.ActiveID)
	require.Equal(t, 306, snap.NextRoomNumber)
}

func TestLoad_RoomNumber(t *testing.T) {
	tests := []struct {
		name  string
		saved string
		want  int
	}{
		{name: "saved counter ahead", saved: "150", want: 150},
		{name: "saved counter behind", saved: "90", want: 102},
		{name: "malformed counter", saved: "abc", want: 102},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := newTestRepo(t)
			require.NoError(t, repo.Set(ctx, session.KeyPatients, `{"Ch. 101": {}}`))
			require.NoError(t, repo.Set(ctx, session.KeyNextRoomNumber, tt.saved))
			require.Equal(t, tt.want, newLoadedStore(t, repo).Snapshot().NextRoomNumber)
		})
	}
}

func TestLoad_LegacyNote(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.Set(ctx, session.KeyPatients,
		`{"Ch. 101": {"formState": {"shift": "Jour"}, "aiNote": "08:00 - Patient calme. 10:30 - Repas pris."}}`))

	p, err := newLoadedStore(t, repo).Patient("Ch. 101")
	require.NoError(t, err)
	require.Equal(t, clinical.ShiftDay, p.Form.Shift)
	require.Len(t, p.Notes, 2)
	require.Equal(t, "08:00", p.Notes[0].Timestamp)
	require.Equal(t, "Patient calme.", p.Notes[0].Content)
	require.Equal(t, "10:30", p.Notes[1].Timestamp)

	// The migrated shape is persisted.
	raw, err := repo.Get(ctx, session.KeyPatients)
	require.NoError(t, err)
	require.NotContains(t, raw, "aiNote")
	require.Contains(t, raw, "noteEntries")
}

func TestRoundTrip(t *testing.T) {
	for n := 1; n <= 4; n++ {
		ctx := context.Background()
		repo := newTestRepo(t)
		store := newLoadedStore(t, repo)

		for i := 1; i < n; i++ {
			_, err := store.AddPatient(ctx)
			require.NoError(t, err)
		}
		_, err := store.CreatePatient(ctx, "Isolement B")
		require.NoError(t, err)
		for i, p := range store.Snapshot().Patients {
			for m := 0; m < i; m++ {
				_, err = store.AppendNote(ctx, p.ID, clinical.NoteEntry{Timestamp: "08:00", Content: "Entrée"})
				require.NoError(t, err)
			}
			_, err = store.UpdateForm(ctx, p.ID, []byte(`{"shift":"Soir","position":{"selected":["Debout"]}}`))
			require.NoError(t, err)
		}
		require.NoError(t, store.Select(ctx, "Ch. 101"))

		want := store.Snapshot()
		got := newLoadedStore(t, repo).Snapshot()
		require.Equal(t, want, got)
	}
}

func TestAddPatient(t *testing.T) {
	ctx := context.Background()
	store := newLoadedStore(t, newTestRepo(t))

	_, err := store.CreatePatient(ctx, "Ch. 102")
	require.NoError(t, err)
	id, err := store.AddPatient(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ch. 103", id, "collisions are skipped")

	snap := store.Snapshot()
	require.Equal(t, "Ch. 103", snap.ActiveID)
	require.Equal(t, 104, snap.NextRoomNumber)
	require.Equal(t, []string{"Ch. 101", "Ch. 102", "Ch. 103"}, patientIDs(snap))

	_, err = store.CreatePatient(ctx, " Ch. 102 ")
	require.ErrorIs(t, err, session.ErrPatientExists)
	_, err = store.CreatePatient(ctx, "  ")
	require.ErrorIs(t, err, session.ErrInvalidPatientID)
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	store := newLoadedStore(t, newTestRepo(t))
	_, err := store.AddPatient(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Select(ctx, "Ch. 101"))
	_, err = store.AppendNote(ctx, "Ch. 101", clinical.NoteEntry{Timestamp: "09:00", Content: "Note A"})
	require.NoError(t, err)
	before := store.Snapshot()

	_, err = store.Rename(ctx, "Ch. 101", "Ch. 102")
	require.ErrorIs(t, err, session.ErrPatientExists)
	require.Equal(t, before, store.Snapshot(), "rejected rename leaves both patients unchanged")

	id, err := store.Rename(ctx, "Ch. 101", "Ch. 101")
	require.NoError(t, err)
	require.Equal(t, "Ch. 101", id)
	id, err = store.Rename(ctx, "Ch. 101", "   ")
	require.NoError(t, err)
	require.Equal(t, "Ch. 101", id)
	require.Equal(t, before, store.Snapshot())

	id, err = store.Rename(ctx, "Ch. 101", "  Ch. 210 ")
	require.NoError(t, err)
	require.Equal(t, "Ch. 210", id)
	snap := store.Snapshot()
	require.Equal(t, []string{"Ch. 210", "Ch. 102"}, patientIDs(snap))
	require.Equal(t, "Ch. 210", snap.ActiveID)
	p, ok := snap.Patient("Ch. 210")
	require.True(t, ok)
	require.Equal(t, "Note A", p.Notes[0].Content)

	_, err = store.Rename(ctx, "Ch. 999", "Ch. 300")
	require.ErrorIs(t, err, session.ErrPatientNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := newLoadedStore(t, newTestRepo(t))

	err := store.Delete(ctx, "Ch. 101")
	require.ErrorIs(t, err, session.ErrLastPatient)
	require.Equal(t, []string{"Ch. 101"}, patientIDs(store.Snapshot()))

	_, err = store.AddPatient(ctx)
	require.NoError(t, err)
	_, err = store.AddPatient(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Select(ctx, "Ch. 102"))

	require.NoError(t, store.Delete(ctx, "Ch. 102"))
	snap := store.Snapshot()
	require.Equal(t, []string{"Ch. 101", "Ch. 103"}, patientIDs(snap))
	require.Equal(t, "Ch. 101", snap.ActiveID)

	require.NoError(t, store.Delete(ctx, "Ch. 103"))
	require.Equal(t, "Ch. 101", store.ActiveID(), "deleting an inactive patient keeps the active one")

	require.ErrorIs(t, store.Delete(ctx, "Ch. 404"), session.ErrPatientNotFound)
}

func TestUpdateForm(t *testing.T) {
	ctx := context.Background()
	store := newLoadedStore(t, newTestRepo(t))

	form, err := store.UpdateForm(ctx, "Ch. 101", []byte(`{"gender":"Féminin","pain":{"site":"Dos"}}`))
	require.NoError(t, err)
	require.Equal(t, clinical.GenderFemale, form.Gender)

	form, err = store.UpdateForm(ctx, "Ch. 101", []byte(`{"pain":{"s":"Modérée (4-6/10)"}}`))
	require.NoError(t, err)
	require.Equal(t, "Dos", form.Pain.Site)
	require.Equal(t, clinical.GenderFemale, form.Gender)

	_, err = store.UpdateForm(ctx, "Ch. 101", []byte(`{"gender":"Autre"}`))
	require.ErrorIs(t, err, clinical.ErrInvalidForm)
	p, err := store.Patient("Ch. 101")
	require.NoError(t, err)
	require.Equal(t, clinical.GenderFemale, p.Form.Gender, "rejected patch leaves the form unchanged")

	_, err = store.UpdateForm(ctx, "Ch. 404", []byte(`{}`))
	require.ErrorIs(t, err, session.ErrPatientNotFound)
}

func TestApplyScenarioAndReset(t *testing.T) {
	ctx := context.Background()
	store := newLoadedStore(t, newTestRepo(t))
	_, err := store.UpdateForm(ctx, "Ch. 101", []byte(`{"shift":"Nuit","particularities":"x"}`))
	require.NoError(t, err)

	scenario, err := clinical.ScenarioByLabel("Patient Stable")
	require.NoError(t, err)
	form, err := store.ApplyScenario(ctx, "Ch. 101", scenario)
	require.NoError(t, err)
	require.Equal(t, clinical.ShiftNight, form.Shift)
	require.NotEqual(t, "x", form.Particularities)

	_, err = store.AppendNote(ctx, "Ch. 101", clinical.NoteEntry{Timestamp: "10:00", Content: "Stable"})
	require.NoError(t, err)
	require.NoError(t, store.Reset(ctx, "Ch. 101"))
	p, err := store.Patient("Ch. 101")
	require.NoError(t, err)
	require.Equal(t, clinical.NewPatientState(), p)
}

func TestNotes(t *testing.T) {
	ctx := context.Background()
	store := newLoadedStore(t, newTestRepo(t))

	first, err := store.AppendNote(ctx, "Ch. 101", clinical.NoteEntry{Timestamp: "23:00", Content: "Premier"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	second, err := store.AppendNote(ctx, "Ch. 101", clinical.NoteEntry{Timestamp: "01:00", Content: "Second"})
	require.NoError(t, err)

	updated, err := store.UpdateNote(ctx, "Ch. 101", first.ID, "Premier corrigé")
	require.NoError(t, err)
	require.Equal(t, "23:00", updated.Timestamp)

	p, err := store.Patient("Ch. 101")
	require.NoError(t, err)
	require.Equal(t, []clinical.NoteEntry{
		{ID: first.ID, Timestamp: "23:00", Content: "Premier corrigé"},
		second,
	}, p.Notes, "entries keep append order")

	require.NoError(t, store.DeleteNote(ctx, "Ch. 101", first.ID))
	require.ErrorIs(t, store.DeleteNote(ctx, "Ch. 101", first.ID), session.ErrNoteNotFound)
	_, err = store.UpdateNote(ctx, "Ch. 101", "missing", "x")
	require.ErrorIs(t, err, session.ErrNoteNotFound)
}

func TestCommitGeneratedNote(t *testing.T) {
	ctx := context.Background()
	store := newLoadedStore(t, newTestRepo(t))
	_, err := store.UpdateForm(ctx, "Ch. 101",
		[]byte(`{"shift":"Jour","gender":"Masculin","position":{"selected":["Debout"]}}`))
	require.NoError(t, err)

	entry := clinical.NoteEntry{ID: "n1", Timestamp: "14:05", Content: "Patient debout."}
	require.NoError(t, store.CommitGeneratedNote(ctx, "Ch. 101", entry))

	p, err := store.Patient("Ch. 101")
	require.NoError(t, err)
	require.Equal(t, []clinical.NoteEntry{entry}, p.Notes)
	require.True(t, p.Form.IsEmpty())
	require.Equal(t, clinical.ShiftDay, p.Form.Shift)
	require.Equal(t, clinical.GenderMale, p.Form.Gender)

	require.ErrorIs(t, store.CommitGeneratedNote(ctx, "Ch. 404", entry), session.ErrPatientNotFound)
}

// failingKV rejects writes once armed.
type failingKV struct {
	session.KeyValueStore
	fail bool
}

func (f *failingKV) SetMany(ctx context.Context, entries map[string]string) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.KeyValueStore.SetMany(ctx, entries)
}

func TestFailedWriteLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{KeyValueStore: newTestRepo(t)}
	store := newLoadedStore(t, kv)
	before := store.Snapshot()

	kv.fail = true
	_, err := store.AddPatient(ctx)
	require.Error(t, err)
	_, err = store.UpdateForm(ctx, "Ch. 101", []byte(`{"shift":"Jour"}`))
	require.Error(t, err)
	require.Equal(t, before, store.Snapshot())
}

func TestRefreshDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	store := session.NewStore(repo, testhelpers.NewLogger(io.Discard))

	require.NoError(t, store.Refresh(ctx))
	require.Equal(t, []string{"Ch. 101"}, patientIDs(store.Snapshot()))

	_, err := repo.Get(ctx, session.KeyPatients)
	require.ErrorIs(t, err, repositories.ErrNotFound)
}
