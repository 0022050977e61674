package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/HartBrook/keyfit/internal/errors"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	defaultAnthropicModel   = "claude-sonnet-4-20250514"
	defaultMaxTokens        = 8192
	apiVersion              = "2023-06-01"
)

// AnthropicClient calls the Claude Messages API.
type AnthropicClient struct {
	apiKey string
	cfg    clientConfig
}

// NewAnthropicClient creates a Claude API client.
// It reads the API key from the ANTHROPIC_API_KEY environment variable.
func NewAnthropicClient(opts ...ClientOption) (*AnthropicClient, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, errors.ProviderAuthFailed("Anthropic", "ANTHROPIC_API_KEY")
	}
	return &AnthropicClient{
		apiKey: apiKey,
		cfg:    newClientConfig(defaultAnthropicModel, defaultAnthropicBaseURL, opts),
	}, nil
}

// Model returns the model name requests are sent to.
func (c *AnthropicClient) Model() string {
	return c.cfg.model
}

// Message represents a message in the Claude API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	Messages    []Message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate implements Generator.
func (c *AnthropicClient) Generate(ctx context.Context, p Prompt) (string, error) {
	temp := p.Temperature
	req := messagesRequest{
		Model:       c.cfg.model,
		MaxTokens:   budget(c.cfg.countTok, p, defaultMaxTokens),
		System:      p.System,
		Temperature: &temp,
		Messages:    []Message{{Role: "user", Content: p.User}},
	}

	resp, err := c.sendRequest(ctx, req)
	if err != nil {
		return "", err
	}

	var result string
	for _, block := range resp.Content {
		if block.Type == "text" {
			result += block.Text
		}
	}
	if result == "" {
		return "", errors.GenerationFatal("response contained no text", nil)
	}
	return result, nil
}

func (c *AnthropicClient) sendRequest(ctx context.Context, req messagesRequest) (*messagesResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.GenerationFatal("failed to encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.cfg.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, errors.GenerationFatal("failed to create request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.cfg.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.GenerationFatal("request cancelled", ctx.Err())
		}
		return nil, errors.GenerationTransient("API request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.GenerationTransient("failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, classify(resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, classify(resp.StatusCode, "", "")
	}

	var result messagesResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, errors.GenerationFatal("failed to decode response", err)
	}

	return &result, nil
}
