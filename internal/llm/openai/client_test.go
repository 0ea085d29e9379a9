package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rfp-extractor/internal/llm"
)

func newTestClient(url string, retries int) *Client {
	return NewClient(Config{
		APIKey:             "test-key",
		BaseURL:            url,
		Model:              "test-model",
		RateLimitPerMinute: 60_000,
		MaxRetries:         retries,
		BaseBackoff:        time.Millisecond,
	}, nil)
}

func chatReply(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"content": content}}},
	})
	return b
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "instructions", body.Messages[0].Content)
		assert.Equal(t, "source", body.Messages[1].Content)
		_, _ = w.Write(chatReply(`{"clientName":"Acme"}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, 0).Complete(context.Background(), "instructions", "source")
	require.NoError(t, err)
	assert.JSONEq(t, `{"clientName":"Acme"}`, got)
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(chatReply(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 2).Complete(context.Background(), "i", "s")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestComplete_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).Complete(context.Background(), "i", "s")
	var se *llm.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).Complete(context.Background(), "i", "s")
	assert.ErrorIs(t, err, llm.ErrEmptyReply)
}

func TestComplete_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := newTestClient(srv.URL, 2).Complete(ctx, "i", "s")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	c := NewClient(Config{}, nil)
	assert.False(t, c.Available())
	assert.Equal(t, defaultModel, c.cfg.Model)
	assert.Equal(t, defaultTimeout, c.cfg.Timeout)
}
