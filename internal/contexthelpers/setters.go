package contexthelpers

import (
	"context"
	"net/http"
)

func AuthenticateContext(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), isAuthenticatedContextKey, true)
	return r.WithContext(ctx)
}

func SetCSRFToken(r *http.Request, csrfToken string) *http.Request {
	ctx := context.WithValue(r.Context(), csrfTokenContextKey, csrfToken)
	return r.WithContext(ctx)
}

func SetPatientID(r *http.Request, patientID string) *http.Request {
	ctx := context.WithValue(r.Context(), patientIDContextKey, patientID)
	return r.WithContext(ctx)
}
