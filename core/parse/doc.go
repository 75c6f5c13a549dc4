// Package parse converts raw LLM text output into structured Go values.
// Models frequently wrap JSON in markdown code fences or emit slightly
// malformed JSON (single quotes, unquoted keys, trailing commas); the generic
// [StringAs] entry point strips fences and repairs the JSON before giving up
// with a clear error.
package parse
