package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/contexthelpers"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/export"
)

type generateNoteRequest struct {
	// Timestamp overrides the generation time, e.g. when charting after the fact.
	Timestamp string `json:"timestamp" validate:"omitempty,datetime=15:04"`
}

type generateNoteResponse struct {
	Entry   clinical.NoteEntry    `json:"entry"`
	Patient clinical.PatientState `json:"patient"`
}

// generateNote writes a new entry from the patient's form, appends it and clears the form.
// Concurrent requests for the same patient share one model call and receive the entry of the
// first request, its timestamp override included. The generation is detached from the request
// so that it still commits after a client disconnect or a request timeout.
func (app *application) generateNote(w http.ResponseWriter, r *http.Request) {
	var req generateNoteRequest
	if err := app.readJSON(w, r, &req, true); err != nil {
		app.handleError(w, r, err)
		return
	}
	ctx := r.Context()
	patientID := contexthelpers.PatientID(ctx)

	v, err, shared := app.generations.Do(patientID, func() (any, error) {
		detached := context.WithoutCancel(ctx)
		state, err := app.store.Patient(patientID)
		if err != nil {
			return nil, err
		}
		exemplar, err := app.prefs.StyleExemplar(detached)
		if err != nil {
			return nil, err
		}
		entry, err := app.narrator.Generate(detached, state.Form, state.Notes, exemplar)
		app.metrics.observeGeneration(generationNote, err)
		if err != nil {
			return nil, err
		}
		if req.Timestamp != "" {
			entry.Timestamp = req.Timestamp
		}
		if err = app.store.CommitGeneratedNote(detached, patientID, entry); err != nil {
			return nil, errors.Wrap(err, "commit generated note")
		}
		app.logger.LogAttrs(detached, slog.LevelInfo, "note generated", slog.String("note_id", entry.ID))
		return entry, nil
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if shared {
		app.logger.LogAttrs(ctx, slog.LevelDebug, "joined in-flight generation")
	}
	entry, _ := v.(clinical.NoteEntry)
	state, err := app.store.Patient(patientID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, generateNoteResponse{Entry: entry, Patient: state})
}

type appendNoteRequest struct {
	Timestamp string `json:"timestamp" validate:"omitempty,datetime=15:04"`
	Content   string `json:"content" validate:"required"`
}

// appendNote adds a hand-written entry, stamped now unless a timestamp is given.
func (app *application) appendNote(w http.ResponseWriter, r *http.Request) {
	var req appendNoteRequest
	if err := app.readJSON(w, r, &req, false); err != nil {
		app.handleError(w, r, err)
		return
	}
	if req.Timestamp == "" {
		req.Timestamp = time.Now().Format("15:04")
	}
	entry, err := app.store.AppendNote(r.Context(), contexthelpers.PatientID(r.Context()), clinical.NoteEntry{
		ID:        "",
		Timestamp: req.Timestamp,
		Content:   req.Content,
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, entry)
}

type updateNoteRequest struct {
	Content string `json:"content" validate:"required"`
}

func (app *application) updateNote(w http.ResponseWriter, r *http.Request) {
	var req updateNoteRequest
	if err := app.readJSON(w, r, &req, false); err != nil {
		app.handleError(w, r, err)
		return
	}
	entry, err := app.store.UpdateNote(r.Context(), contexthelpers.PatientID(r.Context()), r.PathValue("noteID"), req.Content)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, entry)
}

func (app *application) deleteNote(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		app.handleError(w, r, errConfirmationMissing)
		return
	}
	if err := app.store.DeleteNote(r.Context(), contexthelpers.PatientID(r.Context()), r.PathValue("noteID")); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// notesText returns the note as plain text for the clipboard.
func (app *application) notesText(w http.ResponseWriter, r *http.Request) {
	state, err := app.store.Patient(contexthelpers.PatientID(r.Context()))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(export.PlainText(state.Notes)))
}
