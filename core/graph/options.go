package graph

import "github.com/leofalp/flowlab/providers/observability"

// Option configures graph-level execution behavior, applied at NewBuilder.
type Option func(*config)

// WithErrorStrategy selects how a run reacts to a node failure while sibling
// fan-out branches are in flight. The default is FailSlow.
func WithErrorStrategy(strategy ErrorStrategy) Option {
	return func(builderConfig *config) {
		builderConfig.errorStrategy = strategy
	}
}

// WithMaxConcurrency bounds the number of node handlers running at once.
// Zero or negative means unlimited (the default).
func WithMaxConcurrency(limit int) Option {
	return func(builderConfig *config) {
		if limit > 0 {
			builderConfig.maxConcurrency = limit
		}
	}
}

// WithObserver sets the logging provider for every run of the graph. When
// unset, each run resolves its observer from the run context and falls back
// to a no-op.
func WithObserver(observer observability.Provider) Option {
	return func(builderConfig *config) {
		builderConfig.observer = observer
	}
}
