package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
	"github.com/bryanwahyu/sentinel-ai/internal/infra/ai/prompt"
)

const (
	// GeminiBaseURL is Gemini's OpenAI-compatible endpoint.
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultModel  = "gemini-2.5-flash"

	defaultTemperature = 0.1
	defaultTimeout     = 60 * time.Second
	maxTokens          = 2048
)

// Options tunes the client. Zero values fall back to the defaults above;
// a nil Temperature means defaultTemperature, a pointer to 0 is kept.
type Options struct {
	BaseURL     string
	Model       string
	Temperature *float32
	Timeout     time.Duration
}

// Client relays prompts to the external model. It holds no per-request
// state and is safe for concurrent use.
type Client struct {
	*openai.Client
	Model       string
	Temperature float32
}

func NewClient(apiKey string, opts Options) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = GeminiBaseURL
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	c := &Client{Client: openai.NewClientWithConfig(cfg), Model: opts.Model, Temperature: defaultTemperature}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if opts.Temperature != nil {
		c.Temperature = max(*opts.Temperature, 0)
	}
	return c
}

// Complete implements analysis.Model.
func (c *Client) Complete(ctx context.Context, p domain.Prompt) (string, error) {
	schema := prompt.ResultSchema()
	req := openai.ChatCompletionRequest{
		Model:       c.Model,
		Temperature: wireTemperature(c.Temperature),
		MaxTokens:   maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   prompt.SchemaName,
				Schema: &schema,
				Strict: true,
			},
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			userMessage(p),
		},
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", errors.New("model returned empty content")
	}
	return content, nil
}

// wireTemperature keeps an explicit 0 on the wire. go-openai drops a zero
// temperature via omitempty and the endpoint would then use its own default.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

func userMessage(p domain.Prompt) openai.ChatCompletionMessage {
	if p.Image == nil {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.Text}
	}
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: p.Text},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL(*p.Image),
					Detail: openai.ImageURLDetailAuto,
				},
			},
		},
	}
}

func dataURL(img domain.Image) string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
