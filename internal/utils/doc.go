// Package utils contains shared HTTP plumbing for provider implementations:
// synchronous JSON POST helpers and an SSE scanner for streaming responses.
package utils
