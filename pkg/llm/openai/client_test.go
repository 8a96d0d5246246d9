package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-insight-be/internal/config"
	"grant-insight-be/pkg/cache"
	"grant-insight-be/pkg/llm"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newTestProvider(t *testing.T, serverURL string) *OpenAIProvider {
	t.Helper()
	p := NewOpenAIProvider(config.OpenAIConfig{
		APIKey:      "test-key",
		Model:       "gpt-4",
		MaxTokens:   100,
		Temperature: 0.7,
		TimeoutSecs: 5,
		MaxRetries:  3,
		RPMLimit:    60,
	}, cache.NewMemoryCache(), nopLogger{}, nil)
	p.backoffUnit = time.Millisecond
	return p.WithBaseURL(serverURL)
}

const successBody = `{
	"model": "gpt-4",
	"choices": [{"message": {"role": "assistant", "content": "補助金の申請についてご案内します。まず対象条件をご確認ください。"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 50, "completion_tokens": 30, "total_tokens": 80}
}`

func TestChat_RetriesTransientErrorsThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
			return
		}
		w.Write([]byte(successBody))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	result, err := provider.Chat(context.Background(), []llm.Message{{Role: "user", Content: "補助金について教えて"}})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 80, result.TokensUsed)
	assert.Equal(t, "stop", result.FinishReason)
	assert.NotEmpty(t, result.Content)
}

func TestChat_DoesNotRetryAuthErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	_, err := provider.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hello"}})

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	upstream, ok := err.(*llm.UpstreamError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.False(t, upstream.Retryable)
}

func TestChat_FailsWithoutAPIKey(t *testing.T) {
	provider := NewOpenAIProvider(config.OpenAIConfig{MaxRetries: 3}, cache.NewMemoryCache(), nopLogger{}, nil)

	_, err := provider.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hello"}})

	require.Error(t, err)
	_, ok := err.(*llm.ConfigurationError)
	assert.True(t, ok)
}

func TestChat_LocalRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(successBody))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	provider.rpmLimit = 2

	history := []llm.Message{{Role: "user", Content: "test"}}
	for i := 0; i < 2; i++ {
		_, err := provider.Chat(context.Background(), history)
		require.NoError(t, err)
	}

	_, err := provider.Chat(context.Background(), history)
	require.Error(t, err)
	_, ok := err.(*llm.RateLimitError)
	assert.True(t, ok)
}

func TestChat_RejectsEmptyEnvelopeWithoutRetrying(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"model": "gpt-4", "choices": []}`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	_, err := provider.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hello"}})

	require.Error(t, err)
	_, ok := err.(*llm.InvalidResponseError)
	assert.True(t, ok)
	// A broken success envelope replays identically; one attempt is enough.
	assert.Equal(t, 1, calls)
}

func TestChat_MissingContentFieldIsInvalid(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"model": "gpt-4", "choices": [{"message": {"role": "assistant"}, "finish_reason": "stop"}]}`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	_, err := provider.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hello"}})

	require.Error(t, err)
	_, ok := err.(*llm.InvalidResponseError)
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
}

func TestChat_NearEmptyContentKeepsResultWithLowQuality(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"model": "gpt-4",
			"choices": [{"message": {"role": "assistant", "content": "  "}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 1, "total_tokens": 11}
		}`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	result, err := provider.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hello"}})

	require.NoError(t, err)
	assert.Equal(t, "  ", result.Content)
	assert.LessOrEqual(t, result.QualityScore, 0.5)
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantConfig bool
		wantErr    bool
	}{
		{name: "valid key", status: http.StatusOK, wantErr: false},
		{name: "rejected key", status: http.StatusUnauthorized, wantConfig: true, wantErr: true},
		{name: "upstream down", status: http.StatusServiceUnavailable, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			provider := newTestProvider(t, server.URL)
			err := provider.ValidateAPIKey(context.Background())

			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			_, isConfig := err.(*llm.ConfigurationError)
			assert.Equal(t, tc.wantConfig, isConfig)
		})
	}
}

func TestAvailableModels_FiltersChatModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"id": "gpt-4"}, {"id": "whisper-1"}, {"id": "gpt-3.5-turbo"}]}`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	models, err := provider.AvailableModels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4", "gpt-3.5-turbo"}, models)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	// 10 Japanese runes at 1.5 tokens each
	assert.Equal(t, 15, EstimateTokens("補助金の申請方法とは"))
	// 4 Latin words at 1.3 tokens each, rounded up
	assert.Equal(t, 6, EstimateTokens("how to apply grants"))
}
