// Package genai talks to OpenAI-compatible chat completion endpoints. It is
// the engine's only outbound network adapter.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/weft-dev/weft/internal/core"
	"github.com/weft-dev/weft/internal/logging"
)

const maxErrorBody = 4 << 10

// Client implements core.Generator over HTTP.
type Client struct {
	httpClient *http.Client
	logger     *logging.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger attaches a logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client. The timeout bounds each generation call on top of
// whatever deadline the caller's context carries.
func New(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chatRequest is the OpenAI-compatible request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	TopP           *float64        `json:"top_p,omitempty"`
	TopK           *int            `json:"top_k,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatMessage carries either plain text content or a parts array when the
// message has attachments.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate implements core.Generator.
func (c *Client) Generate(ctx context.Context, req core.GenerateRequest) (*core.GenerateResult, error) {
	if req.Model == nil {
		return nil, core.ErrValidation("MODEL_REQUIRED", "generation request carries no model configuration")
	}
	if req.Model.Endpoint == "" {
		return nil, core.ErrValidation("ENDPOINT_REQUIRED",
			fmt.Sprintf("model %q has no endpoint", req.Model.ID))
	}

	body, err := json.Marshal(buildChatRequest(req))
	if err != nil {
		return nil, core.ErrGeneration("encoding generation request").WithCause(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Model.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, core.ErrGeneration("building generation request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Model.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Model.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, core.ErrCancelled("generation cancelled").WithCause(ctx.Err())
		}
		return nil, core.ErrGeneration(fmt.Sprintf("calling %s: %v", req.Model.Endpoint, err)).WithCause(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.providerError(resp)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, core.ErrGeneration("decoding generation response").WithCause(err)
	}
	if len(parsed.Choices) == 0 {
		return nil, core.ErrGeneration("generation response carries no choices")
	}

	model := parsed.Model
	if model == "" {
		model = req.Model.Model
	}
	c.logger.Debug("generation completed",
		"model", model,
		"tokens_in", parsed.Usage.PromptTokens,
		"tokens_out", parsed.Usage.CompletionTokens,
		"latency", time.Since(start))

	return &core.GenerateResult{
		Text:      parsed.Choices[0].Message.Content,
		TokensIn:  parsed.Usage.PromptTokens,
		TokensOut: parsed.Usage.CompletionTokens,
		Model:     model,
	}, nil
}

// providerError surfaces the provider's own message verbatim so the run log
// shows what the backend actually said.
func (c *Client) providerError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var parsed errorResponse
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error.Message != "" {
		return core.ErrGeneration(parsed.Error.Message)
	}
	if msg := strings.TrimSpace(string(data)); msg != "" {
		return core.ErrGeneration(msg)
	}
	return core.ErrGeneration(fmt.Sprintf("generation backend returned %s", resp.Status))
}

func buildChatRequest(req core.GenerateRequest) chatRequest {
	out := chatRequest{Model: req.Model.Model}

	if req.System != "" {
		out.Messages = append(out.Messages, chatMessage{Role: core.RoleSystem, Content: req.System})
	}
	if len(req.Messages) > 0 {
		for _, m := range req.Messages {
			out.Messages = append(out.Messages, chatMessage{Role: m.Role, Content: m.Content})
		}
	} else {
		out.Messages = append(out.Messages, chatMessage{Role: core.RoleUser, Content: req.Prompt})
	}

	if len(req.Attachments) > 0 {
		attachToLastUser(out.Messages, req.Attachments)
	}

	p := req.Params
	if p.Temperature != 0 {
		out.Temperature = &p.Temperature
	}
	if p.TopP != 0 {
		out.TopP = &p.TopP
	}
	if p.TopK != 0 {
		out.TopK = &p.TopK
	}
	if p.MaxTokens != 0 {
		out.MaxTokens = &p.MaxTokens
	}
	if p.ResponseFormat != "" {
		out.ResponseFormat = &responseFormat{Type: p.ResponseFormat}
	}
	return out
}

// attachToLastUser rewrites the last user message into a parts array
// carrying the text plus each attachment as a data URL.
func attachToLastUser(messages []chatMessage, attachments []core.Attachment) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != core.RoleUser {
			continue
		}
		text, _ := messages[i].Content.(string)
		parts := []contentPart{{Type: "text", Text: text}}
		for _, a := range attachments {
			parts = append(parts, contentPart{
				Type: "image_url",
				ImageURL: &imageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", a.MediaType, base64.StdEncoding.EncodeToString(a.Data)),
				},
			})
		}
		messages[i].Content = parts
		return
	}
}

var _ core.Generator = (*Client)(nil)
