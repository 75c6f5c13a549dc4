package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// HeaderOption is an extra HTTP header applied to an outbound request.
// Options are applied after the defaults, so they can override Authorization
// when a provider uses a non-Bearer scheme.
type HeaderOption struct {
	Key   string
	Value string
}

// maxResponseBodySize is the maximum response body size (10 MB). Enforced via
// io.LimitReader to prevent unbounded memory allocation from rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// DoPostSync performs a synchronous HTTP POST with a JSON body and decodes the
// JSON response into OutputStruct.
//
// Error handling strategy:
//   - Context errors (timeout, cancellation) are propagated immediately
//   - HTTP errors (connection failures, non-2xx status) return the error
//   - Response body close errors are logged but don't override primary errors
//   - JSON decoding errors include a response preview for debugging
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return res, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return res, nil, fmt.Errorf("error reading response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, nil, fmt.Errorf("non-2xx status %d: %s", res.StatusCode, string(respBody))
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return res, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s", res.StatusCode, err, TruncatePreview(string(respBody)))
	}

	return res, &resStruct, nil
}

// CloseWithLog closes the given closer, logging the close error rather than
// returning it so it never overrides a primary error already in flight.
func CloseWithLog(closer io.Closer) {
	if err := closer.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}

// previewLength caps the response preview included in decode errors.
const previewLength = 500

// TruncatePreview shortens a response body for inclusion in error messages.
func TruncatePreview(s string) string {
	if len(s) <= previewLength {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:previewLength], len(s))
}
