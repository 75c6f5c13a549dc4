// Package openai implements the ai.Completer and ai.StreamCompleter
// interfaces over the OpenAI chat-completions HTTP API. Configuration comes
// from the environment (OPENAI_API_KEY, OPENAI_API_BASE_URL, OPENAI_MODEL)
// with chainable With* overrides; the same client works against any
// OpenAI-compatible endpoint.
package openai
