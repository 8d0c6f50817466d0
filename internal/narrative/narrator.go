// Package narrative turns a compiled clinical summary into note entries with a language model.
package narrative

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/myrjola/chartnote/internal/ai"
	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/summary"
	"github.com/sashabaranov/go-openai/jsonschema"
)

var (
	ErrEmptyForm         = errors.NewSentinel("form is empty")
	ErrGeneration        = errors.NewSentinel("note generation failed")
	ErrMissingStyleInput = errors.NewSentinel("style exemplar and test input are required")
	ErrUnknownShift      = errors.NewSentinel("unknown shift")
)

// Completer runs single-shot completions. *ai.Client implements it.
type Completer interface {
	CompleteJSON(ctx context.Context, model, prompt string, schema ai.Schema) (string, error)
	Complete(ctx context.Context, model, prompt string) (string, error)
}

type Config struct {
	NoteModel   string
	ReportModel string
}

type Narrator struct {
	completer Completer
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

func NewNarrator(completer Completer, cfg Config, logger *slog.Logger) *Narrator {
	return &Narrator{
		completer: completer,
		cfg:       cfg,
		logger:    logger.With(slog.String("source", "narrative.Narrator")),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

var noteSchema = ai.Schema{
	Name:        "note_entry",
	Description: "Nouvelle entrée de la note d'évolution.",
	Definition: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"content": {
				Type:        jsonschema.String,
				Description: "Le contenu narratif de la note d'évolution, sans l'heure.",
			},
		},
		Required:             []string{"content"},
		AdditionalProperties: false,
	},
}

// Generate writes one new note entry for form. An empty form fails with ErrEmptyForm before any
// model call. The entry is stamped with the current local time as HH:MM.
func (n *Narrator) Generate(
	ctx context.Context,
	form clinical.FormState,
	entries []clinical.NoteEntry,
	exemplar string,
) (clinical.NoteEntry, error) {
	clinicalSummary := summary.Compile(form)
	if summary.IsEmpty(form) || strings.TrimSpace(clinicalSummary) == "" {
		return clinical.NoteEntry{}, ErrEmptyForm
	}

	prompt := NotePrompt(clinicalSummary, entries, exemplar)
	raw, err := n.completer.CompleteJSON(ctx, n.cfg.NoteModel, prompt, noteSchema)
	if err != nil {
		return clinical.NoteEntry{}, n.failure(err, "generate note")
	}

	var response struct {
		Content *string `json:"content"`
	}
	if err = json.Unmarshal([]byte(raw), &response); err != nil {
		return clinical.NoteEntry{}, errors.Join(ErrGeneration, errors.Wrap(err, "parse model response"))
	}
	if response.Content == nil || strings.TrimSpace(*response.Content) == "" {
		return clinical.NoteEntry{}, errors.Wrap(ErrGeneration, "model response has no content")
	}

	return clinical.NoteEntry{
		ID:        n.newID(),
		Timestamp: n.now().Format("15:04"),
		Content:   strings.TrimSpace(*response.Content),
	}, nil
}

// TestStyle reformulates input in the exemplar's style and returns the raw model text.
func (n *Narrator) TestStyle(ctx context.Context, exemplar, input string) (string, error) {
	if strings.TrimSpace(exemplar) == "" || strings.TrimSpace(input) == "" {
		return "", ErrMissingStyleInput
	}
	text, err := n.completer.Complete(ctx, n.cfg.NoteModel, StyleTestPrompt(exemplar, input))
	if err != nil {
		return "", n.failure(err, "test style")
	}
	return text, nil
}

// ShiftReport synthesises the notes of every patient into a hand-off report for shift.
func (n *Narrator) ShiftReport(ctx context.Context, shift string, patients []PatientNotes) (string, error) {
	if !slices.Contains(clinical.Shifts, shift) {
		return "", errors.Wrap(ErrUnknownShift, shift, slog.String("shift", shift))
	}
	text, err := n.completer.Complete(ctx, n.cfg.ReportModel, ShiftReportPrompt(shift, patients))
	if err != nil {
		return "", n.failure(err, "generate shift report")
	}
	return text, nil
}

// failure keeps a missing credential distinguishable and folds everything else into
// ErrGeneration.
func (n *Narrator) failure(err error, msg string) error {
	if errors.Is(err, ai.ErrMissingCredential) {
		return errors.Wrap(err, msg)
	}
	return errors.Join(ErrGeneration, errors.Wrap(err, msg))
}
