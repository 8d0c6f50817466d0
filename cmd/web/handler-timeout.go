package main

import (
	"net/http"
	"time"
)

const timeoutBody = `{"error":"request timed out"}`

// timeoutHandler responds with a 503 Service Unavailable error when the handler does not meet the deadline.
func timeoutHandler(h http.Handler, requestTimeout time.Duration) http.Handler {
	return http.TimeoutHandler(h, requestTimeout, timeoutBody)
}
