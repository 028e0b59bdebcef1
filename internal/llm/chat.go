package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Default endpoints for OpenAI-compatible evaluator providers.
const (
	GroqBaseURL       = "https://api.groq.com/openai/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// DefaultJudgeModel is the evaluator model used when none is configured.
	DefaultJudgeModel = "llama-3.3-70b-versatile"

	// judgeTemperature keeps verdicts deterministic.
	judgeTemperature = 0.1
)

// ChatConfig holds configuration for an OpenAI-compatible chat client.
type ChatConfig struct {
	Provider  Provider
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// ChatClient implements Evaluator against any OpenAI-compatible chat
// completions endpoint (Groq, OpenRouter, Together).
type ChatClient struct {
	config     ChatConfig
	httpClient *http.Client
}

// NewChatClient creates a chat completions client for the judge provider.
func NewChatClient(config ChatConfig) (*ChatClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = GroqBaseURL
	}
	if config.Provider == "" {
		config.Provider = ProviderGroq
	}
	if config.Model == "" {
		config.Model = DefaultJudgeModel
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 1000
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &ChatClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// chatMessage is a single message in a chat completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the wire format of a chat completions request.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// chatCompletionResponse is the wire format of a chat completions response.
type chatCompletionResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// EvaluateJSON sends a prompt to the chat completions endpoint and returns the
// raw response text. Callers parse and validate the JSON themselves.
func (c *ChatClient) EvaluateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(chatCompletionRequest{
		Model:       c.config.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: judgeTemperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return "", &GenerationError{Provider: c.config.Provider, Message: "failed to marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", &GenerationError{Provider: c.config.Provider, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &GenerationError{Provider: c.config.Provider, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GenerationError{Provider: c.config.Provider, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &GenerationError{
			Provider: c.config.Provider,
			Message:  fmt.Sprintf("API request failed with status %d: %s", resp.StatusCode, truncate(string(respBody), 200)),
		}
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", &GenerationError{Provider: c.config.Provider, Message: "failed to unmarshal response", Cause: err}
	}

	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", &EmptyResponseError{Provider: c.config.Provider, Message: "no choices in response"}
	}

	return chatResp.Choices[0].Message.Content, nil
}

// Model returns the evaluator's model name for verdict metadata.
func (c *ChatClient) Model() string {
	return c.config.Model
}

// truncate limits provider error bodies so they stay readable in logs.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
