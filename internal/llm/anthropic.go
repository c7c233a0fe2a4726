package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"govjobs/harvester-service/internal/model"
)

const (
	defaultAnthropicModel = "claude-3-5-haiku-latest"
	maxOutputTokens       = 2048
)

// AnthropicClient calls the Anthropic Messages API through the official SDK.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClient builds a client. The SDK's own retries are disabled:
// a failed call goes to the fallback extractor instead.
func NewAnthropicClient(apiKey, baseURL, modelName string, hc *http.Client) *AnthropicClient {
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
	if modelName == "" {
		modelName = defaultAnthropicModel
	}
	return &AnthropicClient{client: anthropic.NewClient(opts...), model: modelName}
}

// Name identifies the backend in logs and traces.
func (c *AnthropicClient) Name() string { return "anthropic:" + c.model }

// ExtractJob sends one extraction request.
func (c *AnthropicClient) ExtractJob(ctx context.Context, req Request) (*model.ParsedJob, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   maxOutputTokens,
		Temperature: anthropic.Float(0.1),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("%w: no text content", ErrMalformed)
	}
	return Decode(sb.String())
}
