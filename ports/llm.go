package ports

import "context"

// UsageData represents raw usage data from LLM provider APIs
type UsageData struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
}

// ChatRequest is a single system + user exchange
type ChatRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
}

// LLMResponse is the model's text with the usage it cost
type LLMResponse struct {
	Content string
	Usage   *UsageData
}

// LLMClient sends one chat completion and returns the first choice
type LLMClient interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*LLMResponse, error)
}
