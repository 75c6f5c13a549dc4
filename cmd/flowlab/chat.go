package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/leofalp/flowlab/core/conversation"
	"github.com/leofalp/flowlab/core/graph"
	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/labs"
	"github.com/leofalp/flowlab/providers/memory/inmemory"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the support workflow from the terminal",
	Long: `Starts an interactive conversation with the support triage workflow.
Each message is routed to the matching specialist (HR, IT, or compliance)
and the conversation state carries across turns. Exit with "quit" or Ctrl-D.`,
	Run: func(command *cobra.Command, args []string) {
		observer := newObserver(command)
		completer := newCompleter(observer)

		workflow, err := labs.Support(completer, graph.WithObserver(observer))
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to build the workflow: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		manager := conversation.NewManager(workflow, inmemory.New())
		conversationID, err := manager.Start(ctx, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start the conversation: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Support chat. Ask a question, or type \"quit\" to exit.")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}
			if question == "quit" || question == "exit" {
				break
			}

			finalRecord, err := manager.Continue(ctx, conversationID, state.Update{labs.FieldUserQuestion: question})
			if err != nil {
				fmt.Fprintf(os.Stderr, "turn failed: %v\n", err)
				continue
			}

			category := finalRecord.String(labs.FieldQuestionCategory)
			fmt.Printf("[%s] %s\n", category, finalRecord.String(labs.FieldAgentResponse))
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
