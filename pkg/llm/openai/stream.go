package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"grant-insight-be/pkg/llm"
)

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// ChatStream opens a server-sent-events stream and forwards content deltas.
// Streaming does not retry: a broken stream surfaces as the final delta's Err
// and the caller decides whether to fall back to a blocking call.
func (o *OpenAIProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.Delta, error) {
	if o.apiKey == "" {
		return nil, &llm.ConfigurationError{Reason: "API key not configured"}
	}

	options := o.resolveOptions(history, opts)

	if err := o.checkRateLimit(ctx); err != nil {
		return nil, err
	}

	payload := o.buildPayload(history, options, true)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &llm.UpstreamError{StatusCode: 0, Type: "network", Message: err.Error(), Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return nil, classifyHTTPError(resp.StatusCode, buf.Bytes())
	}

	deltas := make(chan llm.Delta)
	go o.consumeStream(ctx, resp, deltas)
	return deltas, nil
}

func (o *OpenAIProvider) consumeStream(ctx context.Context, resp *http.Response, deltas chan<- llm.Delta) {
	defer resp.Body.Close()
	defer close(deltas)

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Malformed frames happen mid-stream; skip rather than abort.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		full.WriteString(content)

		select {
		case deltas <- llm.Delta{Content: content}:
		case <-ctx.Done():
			sendFinal(ctx, deltas, llm.Delta{Done: true, Err: ctx.Err()})
			return
		}
	}

	if err := scanner.Err(); err != nil {
		sendFinal(ctx, deltas, llm.Delta{Done: true, Err: err})
		return
	}

	text := full.String()
	o.log.Info("openai", "stream completed", map[string]interface{}{
		"estimated_tokens": EstimateTokens(text),
		"quality_score":    ScoreQuality(text),
	})
	sendFinal(ctx, deltas, llm.Delta{Done: true})
}

// sendFinal delivers the terminal delta without blocking forever when the
// consumer cancelled and walked away from the channel.
func sendFinal(ctx context.Context, deltas chan<- llm.Delta, d llm.Delta) {
	select {
	case deltas <- d:
	case <-ctx.Done():
	}
}

// EstimateTokens approximates the token cost of text the usage API never
// reported, as happens with streamed responses. Japanese text runs about
// 1.5 tokens per character, Latin text about 1.3 tokens per word.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	if containsJapanese(text) {
		runes := 0
		for range text {
			runes++
		}
		return int(math.Ceil(float64(runes) * 1.5))
	}
	words := len(strings.Fields(text))
	return int(math.Ceil(float64(words) * 1.3))
}
