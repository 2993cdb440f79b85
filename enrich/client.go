package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	openaiEndpoint = "https://api.openai.com/v1/chat/completions"

	// LLM calls regularly take tens of seconds for long bulletins.
	llmTimeout = 90 * time.Second
)

// CompletionRequest is one chat completion call.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
}

// CompletionResult carries the raw response text and the token usage the
// API reported, which the ledger is reconciled with.
type CompletionResult struct {
	Text       string
	TokensUsed int64
}

// Client is the LLM dependency of all enrichment stages. Tests substitute
// a fake.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// OpenAIClient talks to the OpenAI chat completions API.
type OpenAIClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ Client = (*OpenAIClient)(nil)

func NewOpenAIClient() *OpenAIClient {
	return &OpenAIClient{
		endpoint: openaiEndpoint,
		apiKey:   os.Getenv("OPENAI_API_KEY"),
		httpClient: &http.Client{
			Timeout: llmTimeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int64 `json:"total_tokens"`
	} `json:"usage"`
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if c.apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}

	body, err := json.Marshal(chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, errors.Wrap(err, "fail to marshal completion request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "fail to build completion request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "completion request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.Errorf("llm error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "fail to decode completion response")
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("completion response has no choices")
	}

	return &CompletionResult{
		Text:       parsed.Choices[0].Message.Content,
		TokensUsed: parsed.Usage.TotalTokens,
	}, nil
}
