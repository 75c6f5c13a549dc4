package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/leofalp/flowlab/providers/ai"
	"github.com/leofalp/flowlab/providers/ai/middleware"
	"github.com/leofalp/flowlab/providers/ai/openai"
	"github.com/leofalp/flowlab/providers/observability"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flowlab",
	Short: "flowlab runs LLM workflow graphs",
	Long: `flowlab is a workflow-graph execution engine for LLM pipelines.
It ships a set of runnable labs (sequential review, triage handoff,
concurrent translation, web research), an interactive chat mode, and a
LINE webhook server.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// newObserver builds the logging provider for a command invocation,
// honoring the --verbose flag.
func newObserver(command *cobra.Command) observability.Provider {
	verbose, _ := command.Flags().GetBool("verbose")

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return observability.NewSlogProvider(slog.New(handler))
}

// newCompleter builds the LLM provider for a command invocation: the
// OpenAI-compatible provider wrapped with a per-request timeout, retries on
// transient failures, and request logging.
func newCompleter(observer observability.Provider) ai.Completer {
	return middleware.Chain(openai.NewProvider(),
		middleware.NewTimeoutMiddleware(2*time.Minute),
		middleware.NewRetryMiddleware(middleware.RetryConfig{}),
		middleware.NewLoggingMiddleware(observer, middleware.LogLevelStandard),
	)
}
