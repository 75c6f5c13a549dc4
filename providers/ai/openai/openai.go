package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/leofalp/flowlab/internal/utils"
	"github.com/leofalp/flowlab/providers/ai"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	defaultModel            = "gpt-4o"
	chatCompletionsEndpoint = "/chat/completions"
)

// Provider implements ai.Completer and ai.StreamCompleter against the
// OpenAI chat-completions API (and any API compatible with it, via
// WithBaseURL).
type Provider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewProvider creates an OpenAI provider with defaults drawn from the
// environment: OPENAI_API_KEY, OPENAI_API_BASE_URL, and OPENAI_MODEL.
func NewProvider() *Provider {
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultModel
	}

	return &Provider{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider.
func (provider *Provider) WithAPIKey(apiKey string) *Provider {
	provider.apiKey = apiKey
	return provider
}

// WithBaseURL overrides the default base URL, enabling OpenAI-compatible
// endpoints (proxies, local inference servers).
func (provider *Provider) WithBaseURL(baseURL string) *Provider {
	provider.baseURL = baseURL
	return provider
}

// WithModel sets the default model used when a request does not name one.
func (provider *Provider) WithModel(model string) *Provider {
	provider.model = model
	return provider
}

// WithHttpClient sets a custom HTTP client.
func (provider *Provider) WithHttpClient(httpClient *http.Client) *Provider {
	provider.client = httpClient
	return provider
}

// Complete implements ai.Completer.
func (provider *Provider) Complete(ctx context.Context, request ai.Request) (string, error) {
	if provider.apiKey == "" {
		return "", fmt.Errorf("API key is not set")
	}

	wireRequest := provider.wireRequest(request, false)

	httpResponse, decoded, err := utils.DoPostSync[chatCompletionsResponse](ctx, provider.client, provider.baseURL+chatCompletionsEndpoint, provider.apiKey, wireRequest)
	if err != nil {
		return "", err
	}

	if decoded == nil {
		return "", fmt.Errorf("empty response from OpenAI API: %s", httpResponse.Status)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return decoded.Choices[0].Message.Content, nil
}

// wireRequest converts the generic request into the chat-completions wire
// format, filling in the provider's default model.
func (provider *Provider) wireRequest(request ai.Request, stream bool) chatCompletionsRequest {
	model := request.Model
	if model == "" {
		model = provider.model
	}

	var messages []chatMessage
	if request.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: request.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: request.Prompt})

	return chatCompletionsRequest{
		Model:       model,
		Messages:    messages,
		Temperature: request.Temperature,
		MaxTokens:   request.MaxTokens,
		Stream:      stream,
	}
}
