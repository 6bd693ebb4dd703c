package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plan-generator/internal/core/ai/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama-test", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama-test","message":{"role":"assistant","content":"Twenty minutes of yoga"},"done":true}` + "\n"))
	}))
	defer server.Close()

	c, err := NewClient(provider.Config{BaseURL: server.URL, Model: "llama-test", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "llama-test", c.GetModel())

	resp, err := c.Generate(context.Background(), provider.NewPrompt("coach", "stretch idea", 40))
	require.NoError(t, err)
	assert.Equal(t, "Twenty minutes of yoga", resp.Content)
}

func TestClientGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer server.Close()

	c, err := NewClient(provider.Config{BaseURL: server.URL, Model: "llama-test"})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), provider.NewPrompt("", "anything", 0))
	assert.Error(t, err)
}
