package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/0Calories/kotoba-plus/internal/domain/lexicon"
	"github.com/0Calories/kotoba-plus/internal/infra/ai/prompt"
	"github.com/0Calories/kotoba-plus/internal/logger"
)

const defaultModel = "gpt-4o"

// Client implements lexicon.Client on the OpenAI chat completions API.
type Client struct {
	*openai.Client
	Model string
}

// NewClient builds a client. baseURL may be empty for the public API; hc carries the timeout.
func NewClient(apiKey, baseURL, model string, hc *http.Client) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if hc != nil {
		cfg.HTTPClient = hc
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

// Execute sends one chat completion and returns the first choice's content.
func (c *Client) Execute(ctx context.Context, q lexicon.ExternalRequest) (lexicon.RawPayload, error) {
	p, err := prompt.Render(q)
	if err != nil {
		return "", fmt.Errorf("%w: %w", lexicon.ErrTransport, err)
	}

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
	}
	// reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens and a fixed temperature
	if isReasoningModel(c.Model) {
		req.MaxCompletionTokens = p.MaxTokens
	} else {
		req.MaxTokens = p.MaxTokens
		req.Temperature = p.Temperature
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}

	logger.Named(ctx, "openai").Debug().
		Str("provider", "openai").
		Str("model", resp.Model).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("chat completion done")

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", lexicon.ErrEmptyResponse)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: blank content (finish_reason=%s)", lexicon.ErrEmptyResponse, resp.Choices[0].FinishReason)
	}
	return lexicon.RawPayload(content), nil
}

// Name identifies the provider in logs and history
func (c *Client) Name() string { return "openai" }

// ModelName is the configured model
func (c *Client) ModelName() string { return c.Model }

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// classify maps go-openai errors onto the lexicon taxonomy.
// *openai.APIError means the provider answered with a decodable error body;
// everything else (network, timeout, *openai.RequestError, bad envelope) is transport.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &lexicon.ServiceError{
			Status:  apiErr.HTTPStatusCode,
			Code:    apiCode(apiErr),
			Message: apiErr.Message,
		}
	}
	return fmt.Errorf("%w: %w", lexicon.ErrTransport, err)
}

func apiCode(e *openai.APIError) string {
	switch v := e.Code.(type) {
	case string:
		if v != "" {
			return v
		}
	case nil:
	default:
		return fmt.Sprint(v)
	}
	if e.Type != "" {
		return e.Type
	}
	return strconv.Itoa(e.HTTPStatusCode)
}
