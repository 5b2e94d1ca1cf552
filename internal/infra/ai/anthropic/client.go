package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"

	"github.com/0Calories/kotoba-plus/internal/domain/lexicon"
	"github.com/0Calories/kotoba-plus/internal/infra/ai/prompt"
	"github.com/0Calories/kotoba-plus/internal/logger"
)

const defaultModel = "claude-sonnet-4-5"

// Client implements lexicon.Client on the Anthropic Messages API.
type Client struct {
	api   anthropic.Client
	Model string
}

// NewClient builds a client with SDK retries disabled: one Execute, one request.
func NewClient(apiKey, baseURL, model string, hc *http.Client) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{api: anthropic.NewClient(opts...), Model: model}
}

// Execute sends one message and returns the concatenated text blocks of the reply.
func (c *Client) Execute(ctx context.Context, q lexicon.ExternalRequest) (lexicon.RawPayload, error) {
	p, err := prompt.Render(q)
	if err != nil {
		return "", fmt.Errorf("%w: %w", lexicon.ErrTransport, err)
	}

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.Model),
		MaxTokens:   int64(p.MaxTokens),
		Temperature: anthropic.Float(float64(p.Temperature)),
		System:      []anthropic.TextBlockParam{{Text: p.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
	})
	if err != nil {
		return "", classify(err)
	}

	logger.Named(ctx, "anthropic").Debug().
		Str("provider", "anthropic").
		Str("model", string(msg.Model)).
		Int64("output_tokens", msg.Usage.OutputTokens).
		Msg("message done")

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: no text content (stop_reason=%s)", lexicon.ErrEmptyResponse, msg.StopReason)
	}
	return lexicon.RawPayload(b.String()), nil
}

// Name identifies the provider in logs and history
func (c *Client) Name() string { return "anthropic" }

// ModelName is the configured model
func (c *Client) ModelName() string { return c.Model }

// classify maps SDK errors onto the lexicon taxonomy. Only a non-2xx answer
// carrying an Anthropic error object counts as a service failure.
func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		raw := apiErr.RawJSON()
		kind := gjson.Get(raw, "error.type")
		if gjson.Valid(raw) && kind.Exists() {
			code := kind.String()
			if code == "" {
				code = strconv.Itoa(apiErr.StatusCode)
			}
			return &lexicon.ServiceError{
				Status:  apiErr.StatusCode,
				Code:    code,
				Message: gjson.Get(raw, "error.message").String(),
			}
		}
	}
	return fmt.Errorf("%w: %w", lexicon.ErrTransport, err)
}
