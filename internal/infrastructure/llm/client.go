package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsLabeler/internal/ports"
)

// Error classes the retry policy reacts to. Rate limits trigger an extra
// cooldown; transient errors follow the normal backoff schedule. Everything
// else is retried the same way since the service does not let us reliably
// tell a permanent failure apart from a transient one.
var (
	ErrRateLimited = errors.New("rate limited")
	ErrTransient   = errors.New("transient service error")
)

const chatCompletionsPath = "/chat/completions"

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	probeModel string
	httpClient *http.Client
}

var _ ports.Completer = (*Client)(nil)

// NewClient builds a reusable client for the configured gateway. probeModel
// is the model id used by connectivity checks.
func NewClient(baseURL, apiKey, probeModel string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		probeModel: probeModel,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []ports.Message `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete posts the ordered turns and returns the first choice's text with
// reported token usage.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (ports.CompletionResult, error) {
	if c.apiKey == "" || c.baseURL == "" {
		return ports.CompletionResult{}, fmt.Errorf("completion client misconfigured")
	}

	payload := chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ports.CompletionResult{}, fmt.Errorf("marshal completion payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return ports.CompletionResult{}, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ports.CompletionResult{}, fmt.Errorf("completion request: %w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.CompletionResult{}, statusError(resp)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ports.CompletionResult{}, fmt.Errorf("decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return ports.CompletionResult{}, fmt.Errorf("completion response has no choices")
	}

	modelUsed := parsed.Model
	if modelUsed == "" {
		modelUsed = req.Model
	}

	return ports.CompletionResult{
		Text:         parsed.Choices[0].Message.Content,
		ModelUsed:    modelUsed,
		InputTokens:  parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
	}, nil
}

// Probe issues a minimal completion to verify connectivity and credentials.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.Complete(ctx, ports.CompletionRequest{
		Model:     c.probeModel,
		Messages:  []ports.Message{{Role: ports.RoleUser, Content: "Hello, this is a test."}},
		MaxTokens: 10,
	})
	return err
}

func statusError(resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	detail := strings.TrimSpace(string(payload))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("completion service %s: %w: %s", resp.Status, ErrRateLimited, detail)
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("completion service %s: %w: %s", resp.Status, ErrTransient, detail)
	default:
		return fmt.Errorf("completion service %s: %s", resp.Status, detail)
	}
}
