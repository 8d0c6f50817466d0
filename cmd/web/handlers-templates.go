package main

import (
	"net/http"

	"github.com/myrjola/chartnote/internal/contexthelpers"
)

type templateSummary struct {
	Name string `json:"name"`
}

func (app *application) listTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := app.store.Templates(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	names := make([]templateSummary, 0, len(templates))
	for _, t := range templates {
		names = append(names, templateSummary{Name: t.Name})
	}
	app.writeJSON(w, r, http.StatusOK, names)
}

type saveTemplateRequest struct {
	Name string `json:"name" validate:"required"`
}

// saveTemplate stores the patient's form and notes under a name, replacing a template of the
// same name.
func (app *application) saveTemplate(w http.ResponseWriter, r *http.Request) {
	var req saveTemplateRequest
	if err := app.readJSON(w, r, &req, false); err != nil {
		app.handleError(w, r, err)
		return
	}
	name, err := app.store.SaveTemplate(r.Context(), req.Name, contexthelpers.PatientID(r.Context()))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, templateSummary{Name: name})
}

// loadTemplate overwrites the patient's form and notes with the template.
func (app *application) loadTemplate(w http.ResponseWriter, r *http.Request) {
	patientID := contexthelpers.PatientID(r.Context())
	state, err := app.store.LoadTemplate(r.Context(), r.PathValue("name"), patientID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, patientResponse{
		ID:     patientID,
		Active: app.store.ActiveID() == patientID,
		State:  state,
	})
}

func (app *application) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		app.handleError(w, r, errConfirmationMissing)
		return
	}
	if err := app.store.DeleteTemplate(r.Context(), r.PathValue("name")); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
