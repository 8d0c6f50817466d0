package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/myrjola/chartnote/internal/e2etest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccessCode = "19960213"

// fakeModel answers every chat completion with content and counts the calls.
func fakeModel(t *testing.T, content string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return slowFakeModel(t, content, calls, 0)
}

// slowFakeModel is fakeModel taking delay to answer.
func slowFakeModel(t *testing.T, content string, calls *atomic.Int32, delay time.Duration) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		calls.Add(1)
		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":`+
			content+`},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5}}`)
	}))
	t.Cleanup(server.Close)
	return server
}

// lookupEnv returns a lookup for an isolated in-memory server, overridden by env.
func lookupEnv(env map[string]string) func(string) (string, bool) {
	defaults := map[string]string{
		"CHARTNOTE_ADDR":             "localhost:0",
		"CHARTNOTE_SQLITE_URL":       ":memory:",
		"CHARTNOTE_INSECURE_COOKIES": "true",
	}
	return func(key string) (string, bool) {
		if v, ok := env[key]; ok {
			return v, true
		}
		v, ok := defaults[key]
		return v, ok
	}
}

func startServer(t *testing.T, env map[string]string) *e2etest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, lookupEnv(env), run)
	require.NoError(t, err)
	return server
}

func loggedIn(t *testing.T, env map[string]string) *e2etest.Client {
	t.Helper()
	client := startServer(t, env).Client()
	require.NoError(t, client.Login(context.Background(), testAccessCode))
	return client
}
