package middleware

import (
	"context"
	"time"

	"github.com/leofalp/flowlab/providers/ai"
	"github.com/leofalp/flowlab/providers/observability"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs only the model name and total duration. Use this
	// when you want lightweight audit trails without noise.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard logs everything in Minimal plus the prompt length.
	// This is the recommended default for most applications.
	LogLevelStandard

	// LogLevelVerbose logs everything in Standard plus the prompt and the
	// full response content, each truncated to 500 characters.
	//
	// WARNING: DO NOT use LogLevelVerbose in production. It will log raw
	// prompt and response text, which may contain sensitive user data,
	// secrets, or PII. It is intended solely for local debugging.
	LogLevelVerbose
)

// truncateLen is the maximum content length included in verbose log output.
const truncateLen = 500

// NewLoggingMiddleware creates a Middleware that logs every completion
// through the given observer: one entry before the provider call and one
// after, carrying the duration and outcome.
func NewLoggingMiddleware(observer observability.Provider, level LogLevel) Middleware {
	if observer == nil {
		observer = observability.Nop()
	}

	return func(next ai.Completer) ai.Completer {
		return completerFunc(func(ctx context.Context, request ai.Request) (string, error) {
			observer.Info("llm complete", requestAttributes(request, level)...)

			start := time.Now()
			content, err := next.Complete(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				observer.Error("llm complete failed",
					observability.String("model", request.Model),
					observability.Duration("duration", elapsed),
					observability.Error(err),
				)
				return "", err
			}

			observer.Info("llm complete succeeded", responseAttributes(request, content, elapsed, level)...)
			return content, nil
		})
	}
}

// requestAttributes returns the log attributes for an outgoing completion
// request, expanding detail according to the requested verbosity level.
func requestAttributes(request ai.Request, level LogLevel) []observability.Attribute {
	attributes := []observability.Attribute{
		observability.String("model", request.Model),
	}

	if level >= LogLevelStandard {
		attributes = append(attributes, observability.Int("prompt_length", len(request.Prompt)))
	}

	if level >= LogLevelVerbose {
		attributes = append(attributes,
			observability.String("system_prompt", observability.TruncateString(request.SystemPrompt, truncateLen)),
			observability.String("prompt", observability.TruncateString(request.Prompt, truncateLen)),
		)
	}

	return attributes
}

// responseAttributes returns the log attributes for a completed request.
func responseAttributes(request ai.Request, content string, elapsed time.Duration, level LogLevel) []observability.Attribute {
	attributes := []observability.Attribute{
		observability.String("model", request.Model),
		observability.Duration("duration", elapsed),
	}

	if level >= LogLevelStandard {
		attributes = append(attributes, observability.Int("response_length", len(content)))
	}

	if level >= LogLevelVerbose {
		attributes = append(attributes,
			observability.String("response", observability.TruncateString(content, truncateLen)),
		)
	}

	return attributes
}
