// Package ai defines the provider-agnostic LLM interfaces workflow nodes
// build against. [Completer] covers synchronous completions; providers that
// speak SSE additionally implement [StreamCompleter] and yield text fragments
// through a [Stream]. Concrete implementations live in subpackages (openai);
// tests use hand-rolled stubs.
package ai
