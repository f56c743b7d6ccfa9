package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"gostatcheck/internal"
	apperrors "gostatcheck/internal/errors"
	"gostatcheck/ports"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Config holds the transport settings of the OpenAI client
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// OpenAIClient implements ports.LLMClient with the official SDK. Retries are
// done here with exponential backoff, so the SDK's own retry loop is disabled.
type OpenAIClient struct {
	client     openai.Client
	maxRetries int
	logger     *internal.Logger
}

// NewClient creates an OpenAI client from config
func NewClient(config Config) (*OpenAIClient, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, apperrors.ConfigInvalid("missing OpenAI API key")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(config.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	return &OpenAIClient{
		client:     openai.NewClient(opts...),
		maxRetries: config.MaxRetries,
		logger:     internal.DefaultLogger.WithComponent("OpenAI"),
	}, nil
}

// ChatCompletion sends a system + user message pair and returns the first choice.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ports.ChatRequest) (*ports.LLMResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, apperrors.ConfigInvalid("missing model")
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}

	var completion *openai.ChatCompletion
	attempt := 0
	operation := func() error {
		attempt++
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			c.logger.Warn("attempt %d for %s failed: %v", attempt, req.Model, err)
			return err
		}
		completion = resp
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 2 * time.Minute
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(max(c.maxRetries, 0))), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, apperrors.ExternalServiceError("openai", err)
	}

	if len(completion.Choices) == 0 {
		return nil, apperrors.ExternalServiceError("openai", errors.New("response missing choices"))
	}

	return &ports.LLMResponse{
		Content: completion.Choices[0].Message.Content,
		Usage: &ports.UsageData{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
			Model:            completion.Model,
			Provider:         "openai",
		},
	}, nil
}

// retryable is true for rate limits, server errors and transport failures
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}

// MockLLMClient is a mock LLM client for testing
type MockLLMClient struct {
	Response  string   // returned when Responses is exhausted
	Responses []string // returned in order, one per call
	Error     error    // Set this to simulate errors
	Requests  []ports.ChatRequest
}

func (m *MockLLMClient) ChatCompletion(ctx context.Context, req ports.ChatRequest) (*ports.LLMResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.Error != nil {
		return nil, m.Error
	}
	content := m.Response
	if n := len(m.Requests); n <= len(m.Responses) {
		content = m.Responses[n-1]
	}
	return &ports.LLMResponse{
		Content: content,
		Usage:   &ports.UsageData{Model: req.Model, Provider: "mock"},
	}, nil
}

var _ ports.LLMClient = (*OpenAIClient)(nil)
var _ ports.LLMClient = (*MockLLMClient)(nil)
