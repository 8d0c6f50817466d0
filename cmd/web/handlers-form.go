package main

import (
	"net/http"

	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/contexthelpers"
	"github.com/myrjola/chartnote/internal/summary"
)

func (app *application) getForm(w http.ResponseWriter, r *http.Request) {
	state, err := app.store.Patient(contexthelpers.PatientID(r.Context()))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, state.Form)
}

// patchForm merges a partial form object into the patient's form. Fields absent from the body
// keep their value and null lists become empty.
func (app *application) patchForm(w http.ResponseWriter, r *http.Request) {
	patch, err := readBody(w, r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	form, err := app.store.UpdateForm(r.Context(), contexthelpers.PatientID(r.Context()), patch)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, form)
}

type summaryResponse struct {
	Summary string `json:"summary"`
	Empty   bool   `json:"empty"`
}

func (app *application) formSummary(w http.ResponseWriter, r *http.Request) {
	state, err := app.store.Patient(contexthelpers.PatientID(r.Context()))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, summaryResponse{
		Summary: summary.Compile(state.Form),
		Empty:   summary.IsEmpty(state.Form),
	})
}

func (app *application) listScenarios(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, clinical.Scenarios())
}

type scenarioRequest struct {
	Label string `json:"label" validate:"required"`
}

func (app *application) applyScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := app.readJSON(w, r, &req, false); err != nil {
		app.handleError(w, r, err)
		return
	}
	scenario, err := clinical.ScenarioByLabel(req.Label)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	form, err := app.store.ApplyScenario(r.Context(), contexthelpers.PatientID(r.Context()), scenario)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, form)
}
