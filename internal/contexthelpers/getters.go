package contexthelpers

import (
	"context"
)

func IsAuthenticated(ctx context.Context) bool {
	isAuthenticated, ok := ctx.Value(isAuthenticatedContextKey).(bool)
	if !ok {
		return false
	}

	return isAuthenticated
}

func CSRFToken(ctx context.Context) string {
	csrfToken, ok := ctx.Value(csrfTokenContextKey).(string)
	if !ok {
		return ""
	}

	return csrfToken
}

// PatientID returns the patient the request operates on, "" outside patient-scoped routes.
func PatientID(ctx context.Context) string {
	patientID, ok := ctx.Value(patientIDContextKey).(string)
	if !ok {
		return ""
	}

	return patientID
}
