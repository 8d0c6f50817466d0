package main

import (
	"net/http"
)

func (app *application) getLayoutSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := app.prefs.LayoutSettings(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, settings)
}

// putLayoutSettings merges a partial settings object over the stored settings.
func (app *application) putLayoutSettings(w http.ResponseWriter, r *http.Request) {
	patch, err := readBody(w, r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	settings, err := app.prefs.UpdateLayoutSettings(r.Context(), patch)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, settings)
}

type styleExemplar struct {
	Text string `json:"text"`
}

func (app *application) getStyleExemplar(w http.ResponseWriter, r *http.Request) {
	text, err := app.prefs.StyleExemplar(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, styleExemplar{Text: text})
}

func (app *application) putStyleExemplar(w http.ResponseWriter, r *http.Request) {
	var req styleExemplar
	if err := app.readJSON(w, r, &req, false); err != nil {
		app.handleError(w, r, err)
		return
	}
	if err := app.prefs.SetStyleExemplar(r.Context(), req.Text); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, req)
}

type styleTestRequest struct {
	// Exemplar defaults to the stored style exemplar.
	Exemplar string `json:"exemplar"`
	Input    string `json:"input" validate:"required"`
}

type textResponse struct {
	Text string `json:"text"`
}

// testStyle rewrites a sample text in the exemplar's style so the nurse can judge the exemplar
// before saving it.
func (app *application) testStyle(w http.ResponseWriter, r *http.Request) {
	var req styleTestRequest
	if err := app.readJSON(w, r, &req, false); err != nil {
		app.handleError(w, r, err)
		return
	}
	exemplar := req.Exemplar
	if exemplar == "" {
		var err error
		if exemplar, err = app.prefs.StyleExemplar(r.Context()); err != nil {
			app.handleError(w, r, err)
			return
		}
	}
	text, err := app.narrator.TestStyle(r.Context(), exemplar, req.Input)
	app.metrics.observeGeneration(generationStyleTest, err)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, textResponse{Text: text})
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required"`
}

func (app *application) getTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := app.prefs.Theme(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, themeRequest{Theme: theme})
}

func (app *application) putTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := app.readJSON(w, r, &req, false); err != nil {
		app.handleError(w, r, err)
		return
	}
	if err := app.prefs.SetTheme(r.Context(), req.Theme); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, req)
}
