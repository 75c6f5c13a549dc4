package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/flowlab/providers/ai"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Provider) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewProvider().
		WithAPIKey("test-key").
		WithBaseURL(server.URL).
		WithModel("test-model")

	return server, provider
}

func TestCompleteReturnsMessageContent(t *testing.T) {
	var captured chatCompletionsRequest

	_, provider := newTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		if got := request.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		if err := json.NewDecoder(request.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hello from the model"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 4, "total_tokens": 9}
		}`))
	})

	text, err := provider.Complete(context.Background(), ai.Request{
		SystemPrompt: "be brief",
		Prompt:       "say hello",
		Temperature:  ai.TemperatureOf(0.2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello from the model" {
		t.Errorf("unexpected text: %q", text)
	}

	if captured.Model != "test-model" {
		t.Errorf("expected default model to be filled in, got %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("unexpected messages: %+v", captured.Messages)
	}
	if captured.Temperature == nil || *captured.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", captured.Temperature)
	}
	if captured.Stream {
		t.Error("synchronous completion must not set stream")
	}
}

func TestCompleteRequestModelOverridesDefault(t *testing.T) {
	var captured chatCompletionsRequest

	_, provider := newTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
		json.NewDecoder(request.Body).Decode(&captured)
		writer.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "ok"}, "finish_reason": "stop"}]}`))
	})

	if _, err := provider.Complete(context.Background(), ai.Request{Model: "other-model", Prompt: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Model != "other-model" {
		t.Errorf("expected per-request model, got %q", captured.Model)
	}
}

func TestCompleteWithoutAPIKey(t *testing.T) {
	provider := &Provider{baseURL: defaultBaseURL, model: defaultModel, client: &http.Client{}}

	if _, err := provider.Complete(context.Background(), ai.Request{Prompt: "hi"}); err == nil {
		t.Error("expected an error when the API key is missing")
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	_, provider := newTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		writer.Write([]byte(`{"error": {"message": "invalid key"}}`))
	})

	_, err := provider.Complete(context.Background(), ai.Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
	if !strings.Contains(err.Error(), "invalid key") {
		t.Errorf("expected the API error body in the message, got %v", err)
	}
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	_, provider := newTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{"choices": []}`))
	})

	if _, err := provider.Complete(context.Background(), ai.Request{Prompt: "hi"}); err == nil {
		t.Error("expected an error for a response with no choices")
	}
}
