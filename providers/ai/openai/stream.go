package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/leofalp/flowlab/internal/utils"
	"github.com/leofalp/flowlab/providers/ai"
)

// StreamComplete implements ai.StreamCompleter: it sends the request with
// stream=true and yields text fragments as SSE chunks arrive. Pre-stream
// errors (auth, bad request, network) are returned directly; mid-stream
// errors are yielded through the iterator. The response body is closed when
// the iterator finishes or the caller breaks out of the loop.
func (provider *Provider) StreamComplete(ctx context.Context, request ai.Request) (*ai.Stream, error) {
	if provider.apiKey == "" {
		return nil, fmt.Errorf("API key is not set")
	}

	wireRequest := provider.wireRequest(request, true)

	httpResponse, err := utils.DoPostStream(ctx, provider.client, provider.baseURL+chatCompletionsEndpoint, provider.apiKey, wireRequest)
	if err != nil {
		return nil, err
	}

	iterator := func(yield func(string, error) bool) {
		defer utils.CloseWithLog(httpResponse.Body)

		scanner := utils.NewSSEScanner(httpResponse.Body)
		for {
			payload, err := scanner.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}

			var chunk chatCompletionsChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				yield("", fmt.Errorf("error decoding stream chunk: %w", err))
				return
			}

			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !yield(choice.Delta.Content, nil) {
					return
				}
			}
		}
	}

	return ai.NewStream(iterator), nil
}
