package llm

import (
	"context"
	stderrors "errors"
	"os"

	"github.com/sashabaranov/go-openai"

	"github.com/HartBrook/keyfit/internal/errors"
)

const (
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultOpenAIMaxTokens = 8192
)

// OpenAIClient calls an OpenAI-compatible chat completions API.
type OpenAIClient struct {
	client *openai.Client
	cfg    clientConfig
}

// NewOpenAIClient creates a chat completions client.
// It reads the API key from the OPENAI_API_KEY environment variable.
func NewOpenAIClient(opts ...ClientOption) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.ProviderAuthFailed("OpenAI", "OPENAI_API_KEY")
	}
	cfg := newClientConfig(defaultOpenAIModel, "", opts)

	oc := openai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		oc.BaseURL = cfg.baseURL
	}
	oc.HTTPClient = cfg.httpClient

	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		cfg:    cfg,
	}, nil
}

// Model returns the model name requests are sent to.
func (o *OpenAIClient) Model() string {
	return o.cfg.model
}

// Generate implements Generator.
func (o *OpenAIClient) Generate(ctx context.Context, p Prompt) (string, error) {
	var msgs []openai.ChatCompletionMessage
	if p.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})

	req := openai.ChatCompletionRequest{
		Model:               o.cfg.model,
		Messages:            msgs,
		Temperature:         float32(p.Temperature),
		MaxCompletionTokens: budget(o.cfg.countTok, p, defaultOpenAIMaxTokens),
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", o.wrapError(ctx, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.GenerationFatal("response contained no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIClient) wrapError(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return classify(apiErr.HTTPStatusCode, apiErr.Type, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return classify(reqErr.HTTPStatusCode, "", "")
	}
	if ctx.Err() != nil {
		return errors.GenerationFatal("request cancelled", ctx.Err())
	}
	return errors.GenerationTransient("API request failed", err)
}
