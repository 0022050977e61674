package llm

import (
	"net/http"
	"time"
)

type clientConfig struct {
	model      string
	baseURL    string
	httpClient *http.Client
	countTok   TokenCounter
}

// ClientOption configures a provider client.
type ClientOption func(*clientConfig)

// WithModel sets the model to use.
func WithModel(model string) ClientOption {
	return func(c *clientConfig) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTokenCounter replaces the tokenizer used to budget max_tokens.
func WithTokenCounter(fn TokenCounter) ClientOption {
	return func(c *clientConfig) {
		c.countTok = fn
	}
}

func newClientConfig(model, baseURL string, opts []ClientOption) clientConfig {
	cfg := clientConfig{
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		countTok:   EstimateTokens,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// budget sizes the response from the prompt: a rewrite is roughly as long as
// its input, so allow twice the prompt plus headroom.
func budget(count TokenCounter, p Prompt, ceiling int) int {
	if p.MaxTokens > 0 {
		return p.MaxTokens
	}
	n := count(p.User)*2 + 512
	if n < 1024 {
		n = 1024
	}
	if n > ceiling {
		n = ceiling
	}
	return n
}
