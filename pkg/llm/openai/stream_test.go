package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-insight-be/pkg/llm"
)

func writeSSE(t *testing.T, w http.ResponseWriter, data string) {
	t.Helper()
	_, err := fmt.Fprintf(w, "data: %s\n\n", data)
	require.NoError(t, err)
	w.(http.Flusher).Flush()
}

func TestChatStream_DecodesDeltasAndStopsOnDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(t, w, `{"choices": [{"delta": {"content": "補助金の"}}]}`)
		writeSSE(t, w, `not json at all`)
		writeSSE(t, w, `{"choices": [{"delta": {"content": "申請方法"}}]}`)
		writeSSE(t, w, `{"choices": []}`)
		writeSSE(t, w, `[DONE]`)
		// Frames after the sentinel must never surface.
		writeSSE(t, w, `{"choices": [{"delta": {"content": "無視"}}]}`)
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	deltas, err := provider.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "補助金"}})
	require.NoError(t, err)

	var content string
	var done llm.Delta
	for d := range deltas {
		if d.Done {
			done = d
			continue
		}
		content += d.Content
	}

	assert.Equal(t, "補助金の申請方法", content)
	assert.True(t, done.Done)
	assert.NoError(t, done.Err)
}

func TestChatStream_UpstreamErrorBeforeStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	_, err := provider.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "補助金"}})

	require.Error(t, err)
	upstream, ok := err.(*llm.UpstreamError)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
}

func TestChatStream_AbandonedConsumerReleasesStream(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(t, w, `{"choices": [{"delta": {"content": "途中"}}]}`)
		// Hold the stream open until the client gives up.
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := newTestProvider(t, server.URL)
	deltas, err := provider.ChatStream(ctx, []llm.Message{{Role: "user", Content: "補助金"}})
	require.NoError(t, err)

	first := <-deltas
	assert.Equal(t, "途中", first.Content)

	// Cancel and stop reading, as a disconnecting caller does. The reader
	// goroutine must still wind down and close the channel.
	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-deltas:
			return !open
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
