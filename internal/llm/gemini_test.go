// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func serveGemini(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	origBase := geminiAPIBase
	geminiAPIBase = srv.URL
	t.Cleanup(func() { geminiAPIBase = origBase })

	c := NewGeminiClient(types.AIConfig{APIKey: "test-key", Model: "gemini-test"})
	c.Client = srv.Client()
	return c
}

func geminiReply(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{
				"role":  "model",
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiRequest
	c := serveGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(geminiReply(`all:"quantum error correction"`)))
	})

	text, err := c.Generate(context.Background(), "you are a strategist", "quantum codes")
	require.NoError(t, err)
	assert.Equal(t, `all:"quantum error correction"`, text)

	assert.Equal(t, "/gemini-test:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.NotNil(t, gotReq.SystemInstruction)
	assert.Equal(t, "you are a strategist", gotReq.SystemInstruction.Parts[0].Text)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "user", gotReq.Contents[0].Role)
	assert.Equal(t, "quantum codes", gotReq.Contents[0].Parts[0].Text)
}

func TestGenerateNoSystemPrompt(t *testing.T) {
	var gotReq geminiRequest
	c := serveGemini(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(geminiReply("ok")))
	})

	_, err := c.Generate(context.Background(), "", "hello")
	require.NoError(t, err)
	assert.Nil(t, gotReq.SystemInstruction)
}

func TestGenerateConcatenatesParts(t *testing.T) {
	c := serveGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"all:"},{"text":"transformers"}]}}]}`))
	})

	text, err := c.Generate(context.Background(), "", "x")
	require.NoError(t, err)
	assert.Equal(t, "all:transformers", text)
}

func TestGenerateAPIError(t *testing.T) {
	c := serveGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"invalid key"}}`))
	})

	_, err := c.Generate(context.Background(), "", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "invalid key")
}

func TestGenerateRetriesServerError(t *testing.T) {
	var calls int
	c := serveGemini(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(geminiReply("recovered")))
	})

	text, err := c.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 3, calls)
}

func TestGenerateNoCandidates(t *testing.T) {
	c := serveGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := c.Generate(context.Background(), "", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGenerateEmptyText(t *testing.T) {
	c := serveGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiReply("   ")))
	})

	_, err := c.Generate(context.Background(), "", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty text")
}

func TestNewGeminiClientDefaults(t *testing.T) {
	c := NewGeminiClient(types.AIConfig{APIKey: "k"})
	assert.Equal(t, defaultGeminiModel, c.Model)
	require.NotNil(t, c.Client)
	assert.Equal(t, float64(120), c.Client.Timeout.Seconds())
}
