package observability

import (
	"fmt"
	"time"
)

// Provider is the structured logging interface used across flowlab.
// The engine, providers, and front ends log through a Provider so that host
// applications can plug in their own logging backend. The default
// implementation is [NewSlogProvider]; use [Nop] to disable logging entirely.
type Provider interface {
	Debug(msg string, attrs ...Attribute)
	Info(msg string, attrs ...Attribute)
	Warn(msg string, attrs ...Attribute)
	Error(msg string, attrs ...Attribute)
}

// Attribute represents a key-value pair attached to a log record.
type Attribute struct {
	Key   string
	Value interface{}
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// StringSlice creates a string-slice attribute.
func StringSlice(key string, value []string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error creates an error attribute. A nil error produces an empty value.
func Error(err error) Attribute {
	if err == nil {
		return Attribute{Key: "error", Value: ""}
	}
	return Attribute{Key: "error", Value: err.Error()}
}

// DefaultMaxStringLength is the default maximum length for truncated strings.
const DefaultMaxStringLength = 500

// TruncateString truncates a string to maxLen characters, adding a suffix
// with the original length so log readers know content was elided.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// nopProvider discards all log records.
type nopProvider struct{}

func (nopProvider) Debug(string, ...Attribute) {}
func (nopProvider) Info(string, ...Attribute)  {}
func (nopProvider) Warn(string, ...Attribute)  {}
func (nopProvider) Error(string, ...Attribute) {}

// Nop returns a Provider that discards everything. It is the zero-overhead
// default when no observer is configured.
func Nop() Provider {
	return nopProvider{}
}
