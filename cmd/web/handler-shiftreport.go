package main

import (
	"net/http"

	"github.com/myrjola/chartnote/internal/narrative"
)

type shiftReportRequest struct {
	Shift string `json:"shift" validate:"required"`
}

// shiftReport synthesises the notes of every patient into a hand-off report.
func (app *application) shiftReport(w http.ResponseWriter, r *http.Request) {
	var req shiftReportRequest
	if err := app.readJSON(w, r, &req, false); err != nil {
		app.handleError(w, r, err)
		return
	}
	snapshot := app.store.Snapshot()
	patients := make([]narrative.PatientNotes, 0, len(snapshot.Patients))
	for _, p := range snapshot.Patients {
		patients = append(patients, narrative.PatientNotes{ID: p.ID, Entries: p.State.Notes})
	}
	text, err := app.narrator.ShiftReport(r.Context(), req.Shift, patients)
	app.metrics.observeGeneration(generationShiftReport, err)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, textResponse{Text: text})
}
