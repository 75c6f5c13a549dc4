package main

import (
	"context"
	"fmt"
	"os"

	"github.com/leofalp/flowlab/core/graph"
	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/labs"
	"github.com/leofalp/flowlab/providers/fetch"
	"github.com/spf13/cobra"
)

var labCmd = &cobra.Command{
	Use:   "lab <sequential|handoff|concurrent|research>",
	Short: "Run one of the workflow labs",
	Long: `Runs a single workflow lab against the configured OpenAI-compatible
provider (OPENAI_API_KEY, optionally OPENAI_API_BASE_URL and OPENAI_MODEL).

  sequential  three-stage contract review pipeline (--input: contract text)
  handoff     support question triage to a specialist (--input: the question)
  concurrent  fan-out translation to three languages (--input: source text)
  research    fetch a web page and summarize it (--input: the page URL)`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"sequential", "handoff", "concurrent", "research"},
	Run: func(command *cobra.Command, args []string) {
		input, _ := command.Flags().GetString("input")
		if input == "" {
			fmt.Fprintln(os.Stderr, "the --input flag is required")
			os.Exit(1)
		}

		observer := newObserver(command)
		completer := newCompleter(observer)
		options := []graph.Option{graph.WithObserver(observer)}

		var workflow *graph.Graph
		var initial state.Record
		var finalField string
		var err error

		switch args[0] {
		case "sequential":
			workflow, err = labs.ContractReview(completer, options...)
			initial = state.Record{labs.FieldContractContent: input}
			finalField = labs.FieldRevisionSuggestions
		case "handoff":
			workflow, err = labs.Support(completer, options...)
			initial = state.Record{labs.FieldUserQuestion: input}
			finalField = labs.FieldAgentResponse
		case "concurrent":
			workflow, err = labs.Translation(completer, options...)
			initial = state.Record{labs.FieldSourceContent: input}
			finalField = labs.FieldFinalReport
		case "research":
			workflow, err = labs.Research(completer, fetch.NewReader(), options...)
			initial = state.Record{labs.FieldPageURL: input}
			finalField = labs.FieldSummary
		default:
			fmt.Fprintf(os.Stderr, "unknown lab %q\n", args[0])
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to build the workflow: %v\n", err)
			os.Exit(1)
		}

		finalRecord, err := workflow.Run(context.Background(), initial)
		if err != nil {
			fmt.Fprintf(os.Stderr, "workflow run failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(finalRecord.String(finalField))
	},
}

func init() {
	rootCmd.AddCommand(labCmd)
	labCmd.Flags().StringP("input", "i", "", "Input for the lab (contract text, question, source text, or URL)")
}
