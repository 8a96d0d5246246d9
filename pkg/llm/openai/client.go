package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"grant-insight-be/internal/config"
	"grant-insight-be/internal/pkg/logger"
	"grant-insight-be/pkg/cache"
	"grant-insight-be/pkg/llm"
)

// UsageRecorder receives the token count of every successful call so daily
// budgets can be enforced outside this package.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, totalTokens int) error
}

type OpenAIProvider struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	maxRetries  int
	rpmLimit    int
	client      *http.Client
	cache       cache.Cache
	log         logger.ILogger
	recorder    UsageRecorder
	backoffUnit time.Duration
}

// Ensure OpenAIProvider implements Provider
var _ llm.Provider = &OpenAIProvider{}

func NewOpenAIProvider(cfg config.OpenAIConfig, store cache.Cache, log logger.ILogger, recorder UsageRecorder) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:      cfg.APIKey,
		baseURL:     "https://api.openai.com/v1",
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		rpmLimit:    cfg.RPMLimit,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		},
		cache:       store,
		log:         log,
		recorder:    recorder,
		backoffUnit: time.Second,
	}
}

// WithBaseURL overrides the API endpoint. Used by tests and proxies.
func (o *OpenAIProvider) WithBaseURL(baseURL string) *OpenAIProvider {
	o.baseURL = strings.TrimRight(baseURL, "/")
	return o
}

// --- Request/Response structs (Internal to this package) ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatChoice struct {
	Message struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatResponse struct {
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// --- Interface Implementation ---

func (o *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (*llm.Result, error) {
	if o.apiKey == "" {
		return nil, &llm.ConfigurationError{Reason: "API key not configured"}
	}

	options := o.resolveOptions(history, opts)

	if err := o.checkRateLimit(ctx); err != nil {
		return nil, err
	}

	payload := o.buildPayload(history, options, false)

	var lastErr error
	for attempt := 0; attempt < o.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 2s, 4s, 8s, ...
			if err := sleepCtx(ctx, time.Duration(1<<attempt)*o.backoffUnit); err != nil {
				return nil, err
			}
		}

		result, err := o.doChatRequest(ctx, payload)
		if err == nil {
			o.logCall(history, result, attempt+1)
			o.recordUsage(ctx, result)
			return result, nil
		}

		lastErr = err
		if !isRetryable(err) {
			break
		}
		o.log.Warn("openai", "retrying after transient failure", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	o.log.Error("openai", "chat completion failed", map[string]interface{}{
		"attempts": o.maxRetries,
		"error":    lastErr.Error(),
	})
	return nil, lastErr
}

func (o *OpenAIProvider) resolveOptions(history []llm.Message, opts []llm.Option) *llm.Options {
	options := &llm.Options{
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
		Model:       o.model,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Japanese input generates better with slightly higher temperature,
	// capped so answers stay grounded.
	if containsJapanese(lastUserContent(history)) {
		options.Temperature = minFloat(0.8, options.Temperature+0.1)
	}
	return options
}

func (o *OpenAIProvider) buildPayload(history []llm.Message, options *llm.Options, stream bool) chatRequest {
	messages := make([]chatMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		messages[i] = chatMessage{Role: role, Content: msg.Content}
	}

	return chatRequest{
		Model:       options.Model,
		Messages:    messages,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
		Stream:      stream,
	}
}

func (o *OpenAIProvider) checkRateLimit(ctx context.Context) error {
	if o.rpmLimit <= 0 || o.cache == nil {
		return nil
	}

	now := time.Now()
	key := "openai:rpm:" + now.Format("200601021504")
	count, err := o.cache.Increment(ctx, key, 1, time.Minute)
	if err != nil {
		// A broken cache must not take down generation.
		o.log.Warn("openai", "rate limit counter unavailable", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if count > int64(o.rpmLimit) {
		retryAfter := time.Minute - time.Duration(now.Second())*time.Second
		return &llm.RateLimitError{RetryAfter: retryAfter}
	}
	return nil
}

func (o *OpenAIProvider) doChatRequest(ctx context.Context, payload chatRequest) (*llm.Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		// Network failures are always worth a retry.
		return nil, &llm.UpstreamError{StatusCode: 0, Type: "network", Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.UpstreamError{StatusCode: resp.StatusCode, Type: "network", Message: err.Error(), Retryable: true}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(resp.StatusCode, raw)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &llm.InvalidResponseError{Reason: "unparsable body: " + err.Error()}
	}
	if len(parsed.Choices) == 0 {
		return nil, &llm.InvalidResponseError{Reason: "no choices in response"}
	}

	if parsed.Choices[0].Message.Content == nil {
		return nil, &llm.InvalidResponseError{Reason: "missing message content"}
	}
	// Near-empty content is not an envelope defect; it surfaces through the
	// quality score instead.
	content := *parsed.Choices[0].Message.Content

	result := &llm.Result{
		Content:          content,
		FinishReason:     parsed.Choices[0].FinishReason,
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
		TokensUsed:       parsed.Usage.TotalTokens,
		ModelUsed:        parsed.Model,
	}
	result.QualityScore = ScoreQuality(content)

	if result.QualityScore < 0.3 {
		o.log.Warn("openai", "low quality response", map[string]interface{}{
			"score":  result.QualityScore,
			"length": len(content),
		})
	}
	return result, nil
}

func classifyHTTPError(status int, raw []byte) error {
	var apiErr apiErrorResponse
	_ = json.Unmarshal(raw, &apiErr)

	retryable := false
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		retryable = true
	}
	switch apiErr.Error.Type {
	case "server_error", "rate_limit_exceeded", "model_overloaded":
		retryable = true
	}

	return &llm.UpstreamError{
		StatusCode: status,
		Type:       apiErr.Error.Type,
		Message:    apiErr.Error.Message,
		Retryable:  retryable,
	}
}

func isRetryable(err error) bool {
	if upstream, ok := err.(*llm.UpstreamError); ok {
		return upstream.Retryable
	}
	// A malformed success envelope is permanent; retrying replays the same
	// broken response.
	return false
}

func (o *OpenAIProvider) recordUsage(ctx context.Context, result *llm.Result) {
	if o.recorder == nil || result.TokensUsed == 0 {
		return
	}
	if err := o.recorder.RecordUsage(ctx, result.TokensUsed); err != nil {
		o.log.Warn("openai", "failed to record token usage", map[string]interface{}{"error": err.Error()})
	}
}

func (o *OpenAIProvider) logCall(history []llm.Message, result *llm.Result, attempts int) {
	o.log.Info("openai", "chat completion succeeded", map[string]interface{}{
		"model":         result.ModelUsed,
		"history_turns": len(history),
		"tokens_used":   result.TokensUsed,
		"quality_score": result.QualityScore,
		"finish_reason": result.FinishReason,
		"attempts":      attempts,
	})
}

// ValidateAPIKey performs a cheap authenticated call so operators can verify
// credentials without spending completion tokens.
func (o *OpenAIProvider) ValidateAPIKey(ctx context.Context) error {
	if o.apiKey == "" {
		return &llm.ConfigurationError{Reason: "API key not configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return &llm.UpstreamError{StatusCode: 0, Type: "network", Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return &llm.ConfigurationError{Reason: "API key rejected"}
	default:
		raw, _ := io.ReadAll(resp.Body)
		return classifyHTTPError(resp.StatusCode, raw)
	}
}

// AvailableModels lists the chat-capable models the credentials can reach.
func (o *OpenAIProvider) AvailableModels(ctx context.Context) ([]string, error) {
	if o.apiKey == "" {
		return nil, &llm.ConfigurationError{Reason: "API key not configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &llm.UpstreamError{StatusCode: 0, Type: "network", Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.UpstreamError{StatusCode: resp.StatusCode, Type: "network", Message: err.Error(), Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(resp.StatusCode, raw)
	}

	var parsed struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &llm.InvalidResponseError{Reason: "unparsable models list: " + err.Error()}
	}

	models := make([]string, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		if strings.HasPrefix(m.ID, "gpt-") {
			models = append(models, m.ID)
		}
	}
	return models, nil
}

// --- helpers ---

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func lastUserContent(history []llm.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return history[i].Content
		}
	}
	return ""
}

func containsJapanese(text string) bool {
	for _, r := range text {
		if (r >= 0x3040 && r <= 0x309F) || // hiragana
			(r >= 0x30A0 && r <= 0x30FF) || // katakana
			(r >= 0x4E00 && r <= 0x9FFF) { // kanji
			return true
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
