package narrative_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/myrjola/chartnote/internal/ai"
	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/narrative"
	"github.com/myrjola/chartnote/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter records calls and answers with a fixed response.
type fakeCompleter struct {
	response string
	err      error
	calls    int
	prompt   string
	model    string
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, model, prompt string, _ ai.Schema) (string, error) {
	f.calls++
	f.model, f.prompt = model, prompt
	return f.response, f.err
}

func (f *fakeCompleter) Complete(_ context.Context, model, prompt string) (string, error) {
	f.calls++
	f.model, f.prompt = model, prompt
	return f.response, f.err
}

var testConfig = narrative.Config{NoteModel: "note-model", ReportModel: "report-model"}

func filledForm() clinical.FormState {
	f := clinical.NewFormState()
	f.Gender = clinical.GenderFemale
	f.Position.Selected = []string{"Assis(e) au fauteuil"}
	return f
}

func TestGenerate_EmptyForm(t *testing.T) {
	completer := &fakeCompleter{response: `{"content":"x"}`}
	n := narrative.NewNarrator(completer, testConfig, testhelpers.NewLogger(io.Discard))

	form := clinical.NewFormState()
	form.Shift = clinical.ShiftDay
	_, err := n.Generate(context.Background(), form, nil, "")
	require.ErrorIs(t, err, narrative.ErrEmptyForm)
	require.Equal(t, 0, completer.calls, "no external call for an empty form")
}

func TestGenerate(t *testing.T) {
	completer := &fakeCompleter{response: `{"content":"  Patiente installée au fauteuil.  "}`}
	n := narrative.NewNarrator(completer, testConfig, testhelpers.NewLogger(io.Discard))

	entry, err := n.Generate(context.Background(), filledForm(), nil, "")
	require.NoError(t, err)
	require.Equal(t, "Patiente installée au fauteuil.", entry.Content)
	require.Regexp(t, `^\d{2}:\d{2}$`, entry.Timestamp)
	require.NotEmpty(t, entry.ID)
	require.Equal(t, "note-model", completer.model)
	require.Contains(t, completer.prompt, "DONNÉES CLINIQUES :\nGenre du patient: Féminin.\n- Position du patient")
	require.Contains(t, completer.prompt, "TÂCHE : Rédiger la première entrée")
	require.NotContains(t, completer.prompt, "APPRENTISSAGE DE STYLE PRIORITAIRE")
}

func TestGenerate_AppendWithExemplar(t *testing.T) {
	completer := &fakeCompleter{response: `{"content":"Suite."}`}
	n := narrative.NewNarrator(completer, testConfig, testhelpers.NewLogger(io.Discard))

	entries := []clinical.NoteEntry{
		{ID: "1", Timestamp: "08:00", Content: "Réveil."},
		{ID: "2", Timestamp: "09:30", Content: "Déjeuner pris."},
	}
	_, err := n.Generate(context.Background(), filledForm(), entries, "  Pt calme, coll.  ")
	require.NoError(t, err)

	prompt := completer.prompt
	require.Contains(t, prompt, "EXEMPLES DE STYLE (modèle à imiter impérativement) :\n\"Pt calme, coll.\"")
	require.Contains(t, prompt, "\"08:00 - Réveil.\n09:30 - Déjeuner pris.\"")
	require.Contains(t, prompt, "NOUVELLES DONNÉES CLINIQUES :")
	require.Less(t, strings.Index(prompt, "APPRENTISSAGE DE STYLE PRIORITAIRE"), strings.Index(prompt, "ENTRÉES PRÉCÉDENTES"))
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name      string
		completer *fakeCompleter
		wantErr   error
	}{
		{"not json", &fakeCompleter{response: "Voici la note"}, narrative.ErrGeneration},
		{"missing content", &fakeCompleter{response: `{"text":"x"}`}, narrative.ErrGeneration},
		{"blank content", &fakeCompleter{response: `{"content":"  "}`}, narrative.ErrGeneration},
		{"upstream error", &fakeCompleter{err: errors.New("timeout")}, narrative.ErrGeneration},
		{"missing credential", &fakeCompleter{err: ai.ErrMissingCredential}, ai.ErrMissingCredential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := narrative.NewNarrator(tt.completer, testConfig, testhelpers.NewLogger(io.Discard))
			_, err := n.Generate(context.Background(), filledForm(), nil, "")
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, 1, tt.completer.calls, "no retry")
		})
	}
}

func TestTestStyle(t *testing.T) {
	completer := &fakeCompleter{response: "Pt confortable."}
	n := narrative.NewNarrator(completer, testConfig, testhelpers.NewLogger(io.Discard))

	_, err := n.TestStyle(context.Background(), " ", "Le patient est confortable.")
	require.ErrorIs(t, err, narrative.ErrMissingStyleInput)
	_, err = n.TestStyle(context.Background(), "Pt calme.", "")
	require.ErrorIs(t, err, narrative.ErrMissingStyleInput)
	require.Equal(t, 0, completer.calls)

	got, err := n.TestStyle(context.Background(), "Pt calme.", "Le patient est confortable.")
	require.NoError(t, err)
	require.Equal(t, "Pt confortable.", got)
	require.Contains(t, completer.prompt, "PHRASE À REFORMULER:\n\"Le patient est confortable.\"")
}

func TestShiftReport(t *testing.T) {
	completer := &fakeCompleter{response: "Rapport"}
	n := narrative.NewNarrator(completer, testConfig, testhelpers.NewLogger(io.Discard))

	_, err := n.ShiftReport(context.Background(), "Matin", nil)
	require.ErrorIs(t, err, narrative.ErrUnknownShift)

	got, err := n.ShiftReport(context.Background(), clinical.ShiftNight, []narrative.PatientNotes{
		{ID: "Ch. 101", Entries: []clinical.NoteEntry{{Timestamp: "02:00", Content: "Dort."}}},
		{ID: "Ch. 102"},
	})
	require.NoError(t, err)
	require.Equal(t, "Rapport", got)
	require.Equal(t, "report-model", completer.model)
	require.Contains(t, completer.prompt, `quart de "Nuit"`)
	require.Contains(t, completer.prompt,
		"Patient Ch. 101:\n02:00 - Dort.\n\n---\n\nPatient Ch. 102:\nAucune note pour ce patient.")
}

// TestGenerate_OpenAI drives the real client against a fake endpoint.
func TestGenerate_OpenAI(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var body struct {
			Model string `json:"model"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "note-model", body.Model)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"index":0,"message":{"role":"assistant",`+
			`"content":"{\"content\":\"Patiente au fauteuil, confortable.\"}"}}]}`)
	}))
	t.Cleanup(server.Close)

	logger := testhelpers.NewLogger(io.Discard)
	client := ai.NewClient(ai.Config{APIKey: "test", BaseURL: server.URL + "/v1"}, logger)
	n := narrative.NewNarrator(client, testConfig, logger)

	entry, err := n.Generate(context.Background(), filledForm(), nil, "")
	require.NoError(t, err)
	require.Equal(t, "Patiente au fauteuil, confortable.", entry.Content)
	require.Equal(t, int32(1), requests.Load())

	_, err = narrative.NewNarrator(ai.NewClient(ai.Config{}, logger), testConfig, logger).
		Generate(context.Background(), filledForm(), nil, "")
	require.ErrorIs(t, err, ai.ErrMissingCredential)
	require.Equal(t, int32(1), requests.Load())
}
