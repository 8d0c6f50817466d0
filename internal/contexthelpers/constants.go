package contexthelpers

type contextKey string

const isAuthenticatedContextKey = contextKey("isAuthenticated")
const csrfTokenContextKey = contextKey("csrfToken")
const patientIDContextKey = contextKey("patientID")
