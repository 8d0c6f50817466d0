package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/myrjola/chartnote/internal/ai"
	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/export"
	"github.com/myrjola/chartnote/internal/narrative"
	"github.com/myrjola/chartnote/internal/preferences"
	"github.com/myrjola/chartnote/internal/session"
)

const maxBodyBytes = 1 << 20

var (
	errBadRequest          = errors.NewSentinel("malformed request body")
	errConfirmationMissing = errors.NewSentinel("destructive action requires confirm=true")
)

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// readBody returns the raw request body, at most maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Join(errBadRequest, errors.Wrap(err, "read body"))
	}
	return data, nil
}

// readJSON decodes the body into dst and validates it with the struct's validate tags. An empty
// body is accepted when optional is set.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		if !optional {
			return errors.Wrap(errBadRequest, "body must not be empty")
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err = dec.Decode(dst); err != nil {
			return errors.Join(errBadRequest, errors.Wrap(err, "decode body"))
		}
	}
	if err = app.validate.Struct(dst); err != nil {
		return errors.Join(errBadRequest, errors.Wrap(err, "validate body"))
	}
	return nil
}

// confirmed guards destructive endpoints.
func confirmed(r *http.Request) bool {
	return r.URL.Query().Get("confirm") == "true"
}

// errorStatus maps domain errors to a status code and the message safe to show to the user.
func errorStatus(err error) (int, string) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, validationErrs.Error()
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, errBadRequest.Error()
	case errors.Is(err, errConfirmationMissing):
		return http.StatusPreconditionRequired, errConfirmationMissing.Error()
	case errors.Is(err, session.ErrPatientNotFound),
		errors.Is(err, session.ErrNoteNotFound),
		errors.Is(err, session.ErrTemplateNotFound),
		errors.Is(err, clinical.ErrUnknownScenario):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, session.ErrPatientExists),
		errors.Is(err, session.ErrLastPatient):
		return http.StatusConflict, err.Error()
	case errors.Is(err, session.ErrInvalidPatientID),
		errors.Is(err, session.ErrInvalidTemplateName),
		errors.Is(err, clinical.ErrInvalidForm),
		errors.Is(err, clinical.ErrInvalidScore),
		errors.Is(err, export.ErrInvalidSettings),
		errors.Is(err, export.ErrUnsupportedImage),
		errors.Is(err, preferences.ErrCodeTooShort),
		errors.Is(err, preferences.ErrCodeTooLong),
		errors.Is(err, preferences.ErrInvalidTheme),
		errors.Is(err, narrative.ErrMissingStyleInput),
		errors.Is(err, narrative.ErrUnknownShift):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, preferences.ErrWrongAccessCode):
		return http.StatusForbidden, preferences.ErrWrongAccessCode.Error()
	case errors.Is(err, narrative.ErrEmptyForm),
		errors.Is(err, export.ErrNothingToExport):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, ai.ErrMissingCredential):
		return http.StatusServiceUnavailable, ai.ErrMissingCredential.Error()
	case errors.Is(err, narrative.ErrGeneration):
		return http.StatusBadGateway, narrative.ErrGeneration.Error()
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

// handleError answers with the status the error maps to. Server-side failures are logged with
// their details, the client only sees a generic message.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
			slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()), errors.SlogError(err))
	} else {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
			slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()), errors.SlogError(err))
	}
	app.writeJSON(w, r, status, errorResponse{Error: msg})
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()))
	app.writeJSON(w, r, status, errorResponse{Error: http.StatusText(status)})
}
