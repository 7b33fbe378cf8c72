// Package llm provides a chat-completion client for the hosted inference
// providers. Both OpenAI and Cerebras expose the same OpenAI-compatible
// endpoint, so a single client serves them with different base URLs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"sci-cast/internal/errs"
)

// CerebrasBaseURL is the OpenAI-compatible Cerebras inference endpoint.
const CerebrasBaseURL = "https://api.cerebras.ai/v1"

// Request is a single-turn completion request.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// Client issues chat completions against one model on one provider.
type Client struct {
	client   oai.Client
	provider string
	model    string
}

type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Client.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a Client. The provider name is used in error reporting
// only.
func New(apiKey, provider, model string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("llm: model must not be empty")
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Client{
		client:   oai.NewClient(reqOpts...),
		provider: provider,
		model:    model,
	}, nil
}

// Complete issues one chat completion and returns the first choice's
// content. A non-success response or an empty completion yields a
// ProviderError carrying whatever the provider reported.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	var messages []oai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, oai.SystemMessage(req.System))
	}
	messages = append(messages, oai.UserMessage(req.User))

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
	}
	if req.Temperature != 0 {
		params.Temperature = param.NewOpt(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = param.NewOpt(int64(req.MaxTokens))
	}
	if req.TopP != 0 {
		params.TopP = param.NewOpt(req.TopP)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apierr *oai.Error
		if errors.As(err, &apierr) {
			return "", &errs.ProviderError{
				Provider:   c.provider,
				StatusCode: apierr.StatusCode,
				Body:       apierr.Error(),
				Err:        err,
			}
		}
		return "", &errs.ProviderError{Provider: c.provider, Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &errs.ProviderError{
			Provider: c.provider,
			Err:      fmt.Errorf("empty completion for model %s", c.model),
		}
	}
	return resp.Choices[0].Message.Content, nil
}
