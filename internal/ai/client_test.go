package ai_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/myrjola/chartnote/internal/ai"
	"github.com/myrjola/chartnote/internal/testhelpers"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest is the part of a chat completion request the tests inspect.
type recordedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type       string         `json:"type"`
		JSONSchema map[string]any `json:"json_schema"`
	} `json:"response_format"`
}

// fakeOpenAI answers chat completions with content and records the last request.
func fakeOpenAI(t *testing.T, content string, last *recordedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(last))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{ //nolint:exhaustruct // test
			Choices: []openai.ChatCompletionChoice{{ //nolint:exhaustruct // test
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCompleteJSON(t *testing.T) {
	var req recordedRequest
	server := fakeOpenAI(t, ` {"content":"ok"} `, &req)
	client := ai.NewClient(ai.Config{APIKey: "test", BaseURL: server.URL + "/v1"}, testhelpers.NewLogger(io.Discard))

	got, err := client.CompleteJSON(context.Background(), "gpt-4o-mini", "prompt", ai.Schema{
		Name: "note",
		Definition: jsonschema.Definition{
			Type:       jsonschema.Object,
			Properties: map[string]jsonschema.Definition{"content": {Type: jsonschema.String}},
			Required:   []string{"content"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, `{"content":"ok"}`, got)
	require.Equal(t, "gpt-4o-mini", req.Model)
	require.Equal(t, "prompt", req.Messages[0].Content)
	require.NotNil(t, req.ResponseFormat)
	require.Equal(t, string(openai.ChatCompletionResponseFormatTypeJSONSchema), req.ResponseFormat.Type)
	require.Equal(t, "note", req.ResponseFormat.JSONSchema["name"])
	require.Equal(t, true, req.ResponseFormat.JSONSchema["strict"])
}

func TestComplete(t *testing.T) {
	var req recordedRequest
	server := fakeOpenAI(t, "Texte brut", &req)
	client := ai.NewClient(ai.Config{APIKey: "test", BaseURL: server.URL + "/v1"}, testhelpers.NewLogger(io.Discard))

	got, err := client.Complete(context.Background(), "gpt-4o", "prompt")
	require.NoError(t, err)
	require.Equal(t, "Texte brut", got)
	require.Nil(t, req.ResponseFormat)
}

func TestMissingCredential(t *testing.T) {
	client := ai.NewClient(ai.Config{}, testhelpers.NewLogger(io.Discard))
	_, err := client.Complete(context.Background(), "gpt-4o", "prompt")
	require.ErrorIs(t, err, ai.ErrMissingCredential)
}

func TestUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	client := ai.NewClient(ai.Config{APIKey: "test", BaseURL: server.URL + "/v1"}, testhelpers.NewLogger(io.Discard))
	_, err := client.Complete(context.Background(), "gpt-4o", "prompt")
	require.Error(t, err)
}
