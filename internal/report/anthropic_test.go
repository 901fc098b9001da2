package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicBackend_Complete(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int64  `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
			"content":[{"type":"text","text":"AAPL "},{"type":"text","text":"report"}],
			"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":2}}`))
	}))
	defer srv.Close()

	b := NewAnthropicBackend("sk-test", "claude-test", 0, option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	out, err := b.Complete(context.Background(), []Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "Analyze AAPL"},
		{Role: "assistant", Content: "earlier report"},
		{Role: "user", Content: "and now?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "AAPL report", out)
	assert.Equal(t, "anthropic/claude-test", b.Name())

	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, int64(1024), got.MaxTokens)
	require.Len(t, got.System, 1)
	assert.Equal(t, "sys", got.System[0].Text)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "earlier report", got.Messages[1].Content[0].Text)
	assert.Equal(t, "and now?", got.Messages[2].Content[0].Text)
}

func TestAnthropicBackend_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	b := NewAnthropicBackend("bad", "claude-test", 100, option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	_, err := b.Complete(context.Background(), []Message{{Role: "user", Content: "hello"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic API error")
}
