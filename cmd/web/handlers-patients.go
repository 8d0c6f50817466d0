package main

import (
	"net/http"

	"github.com/myrjola/chartnote/internal/clinical"
)

type patientResponse struct {
	ID     string                `json:"id"`
	Active bool                  `json:"active"`
	State  clinical.PatientState `json:"state"`
}

func (app *application) listPatients(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, app.store.Snapshot())
}

func (app *application) patientResponse(w http.ResponseWriter, r *http.Request, status int, id string) {
	state, err := app.store.Patient(id)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, status, patientResponse{ID: id, Active: app.store.ActiveID() == id, State: state})
}

type createPatientRequest struct {
	ID string `json:"id"`
}

// createPatient adds a patient under the requested id, or under the next free room number when
// no id is given. The new patient becomes active.
func (app *application) createPatient(w http.ResponseWriter, r *http.Request) {
	var req createPatientRequest
	if err := app.readJSON(w, r, &req, true); err != nil {
		app.handleError(w, r, err)
		return
	}
	var (
		id  string
		err error
	)
	if req.ID == "" {
		id, err = app.store.AddPatient(r.Context())
	} else {
		id, err = app.store.CreatePatient(r.Context(), req.ID)
	}
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.patientResponse(w, r, http.StatusCreated, id)
}

func (app *application) getPatient(w http.ResponseWriter, r *http.Request) {
	app.patientResponse(w, r, http.StatusOK, r.PathValue("id"))
}

func (app *application) selectPatient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := app.store.Select(r.Context(), id); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.patientResponse(w, r, http.StatusOK, id)
}

type renamePatientRequest struct {
	Name string `json:"name"`
}

// renamePatient moves the patient to a new id. A blank name leaves the patient unchanged.
func (app *application) renamePatient(w http.ResponseWriter, r *http.Request) {
	var req renamePatientRequest
	if err := app.readJSON(w, r, &req, false); err != nil {
		app.handleError(w, r, err)
		return
	}
	id, err := app.store.Rename(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.patientResponse(w, r, http.StatusOK, id)
}

func (app *application) resetPatient(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		app.handleError(w, r, errConfirmationMissing)
		return
	}
	id := r.PathValue("id")
	if err := app.store.Reset(r.Context(), id); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.patientResponse(w, r, http.StatusOK, id)
}

func (app *application) deletePatient(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		app.handleError(w, r, errConfirmationMissing)
		return
	}
	if err := app.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, app.store.Snapshot())
}
