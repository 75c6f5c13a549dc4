// Package observability defines the structured logging contract used by the
// flowlab engine and its providers.
//
// The [Provider] interface is intentionally small: leveled log methods taking
// typed [Attribute] pairs. [NewSlogProvider] adapts the standard library's
// log/slog, [Nop] disables logging, and context helpers propagate the active
// observer into node handlers.
package observability
