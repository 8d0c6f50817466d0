package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/chartnote/internal/contexthelpers"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/preferences"
)

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	CSRFToken     string `json:"csrfToken"`
}

// sessionStatus tells the client whether the access gate is passed and hands out the CSRF token
// for the mutating requests.
func (app *application) sessionStatus(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, sessionResponse{
		Authenticated: contexthelpers.IsAuthenticated(r.Context()),
		CSRFToken:     contexthelpers.CSRFToken(r.Context()),
	})
}

type accessRequest struct {
	Code string `json:"code" validate:"required"`
}

func (app *application) access(w http.ResponseWriter, r *http.Request) {
	var req accessRequest
	if err := app.readJSON(w, r, &req, false); err != nil {
		app.handleError(w, r, err)
		return
	}
	ok, err := app.prefs.Verify(r.Context(), req.Code)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if !ok {
		app.logger.LogAttrs(r.Context(), slog.LevelInfo, "access denied")
		app.handleError(w, r, preferences.ErrWrongAccessCode)
		return
	}
	if err = app.sessionManager.RenewToken(r.Context()); err != nil {
		app.serverError(w, r, errors.Wrap(err, "renew session token"))
		return
	}
	app.sessionManager.Put(r.Context(), string(authenticatedSessionKey), true)
	app.writeJSON(w, r, http.StatusOK, sessionResponse{
		Authenticated: true,
		CSRFToken:     contexthelpers.CSRFToken(r.Context()),
	})
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		app.serverError(w, r, errors.Wrap(err, "destroy session"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, sessionResponse{
		Authenticated: false,
		CSRFToken:     contexthelpers.CSRFToken(r.Context()),
	})
}

type changeAccessCodeRequest struct {
	Current string `json:"current" validate:"required"`
	Next    string `json:"next" validate:"required"`
}

func (app *application) changeAccessCode(w http.ResponseWriter, r *http.Request) {
	var req changeAccessCodeRequest
	if err := app.readJSON(w, r, &req, false); err != nil {
		app.handleError(w, r, err)
		return
	}
	if err := app.prefs.Change(r.Context(), req.Current, req.Next); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
