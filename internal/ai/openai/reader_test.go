package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/ai"
)

type chatRequest struct {
	Model          string `json:"model"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, status int, reply string, seen *chatRequest) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"invalid key","type":"invalid_request_error"}}`))
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17},
		})
	}))
	t.Cleanup(server.Close)

	return server
}

func TestReaderUnderstandPlainTextDocument(t *testing.T) {
	var seen chatRequest
	server := newTestServer(t, http.StatusOK, `{"skills":["Go"]}`, &seen)

	reader, err := NewReader(&Config{APIKey: "test-key", BaseURL: server.URL, Model: "test-model", Logger: zap.NewNop()})
	require.NoError(t, err)

	out, err := reader.Understand(context.Background(), "extract the profile", &ai.Document{
		Data:     []byte("  Senior Go engineer  \n\n  Kubernetes  "),
		MimeType: "text/plain",
		Name:     "cv.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"skills":["Go"]}`, out)

	assert.Equal(t, "test-model", seen.Model)
	assert.Equal(t, "json_object", seen.ResponseFormat.Type)
	require.Len(t, seen.Messages, 1)
	assert.True(t, strings.HasPrefix(seen.Messages[0].Content, "extract the profile"))
	assert.Contains(t, seen.Messages[0].Content, "Senior Go engineer\nKubernetes")
}

func TestReaderUnderstandQueryOnly(t *testing.T) {
	var seen chatRequest
	server := newTestServer(t, http.StatusOK, `{}`, &seen)

	reader, err := NewReader(&Config{APIKey: "test-key", BaseURL: server.URL, Logger: zap.NewNop()})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", reader.Model())

	_, err = reader.Understand(context.Background(), "only the query", nil)
	require.NoError(t, err)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, "only the query", seen.Messages[0].Content)
}

func TestReaderUnderstandAPIError(t *testing.T) {
	server := newTestServer(t, http.StatusUnauthorized, "", nil)

	reader, err := NewReader(&Config{APIKey: "test-key", BaseURL: server.URL, Logger: zap.NewNop()})
	require.NoError(t, err)

	_, err = reader.Understand(context.Background(), "extract", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestReaderRejectsBinaryDocument(t *testing.T) {
	reader, err := NewReader(&Config{APIKey: "test-key", BaseURL: "http://127.0.0.1:1", Logger: zap.NewNop()})
	require.NoError(t, err)

	_, err = reader.Understand(context.Background(), "extract", &ai.Document{
		Data:     []byte{0xff, 0xfe, 0x00, 0x81},
		MimeType: "application/msword",
	})
	require.Error(t, err)
}

func TestNewReaderRequiresKey(t *testing.T) {
	_, err := NewReader(&Config{})
	require.Error(t, err)
}
