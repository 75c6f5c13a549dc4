package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leofalp/flowlab/core/conversation"
	"github.com/leofalp/flowlab/core/graph"
	"github.com/leofalp/flowlab/internal/webhook"
	"github.com/leofalp/flowlab/labs"
	"github.com/leofalp/flowlab/providers/memory"
	"github.com/leofalp/flowlab/providers/memory/inmemory"
	"github.com/leofalp/flowlab/providers/memory/redismem"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the LINE webhook server",
	Long: `Starts the HTTP server answering LINE webhook events with the support
triage workflow. Requires LINE_CHANNEL_SECRET and LINE_CHANNEL_ACCESS_TOKEN.
Conversations are held in memory by default; pass --redis to persist them
(REDIS_PASSWORD is read from the environment when set).`,
	Run: func(command *cobra.Command, args []string) {
		channelSecret := os.Getenv("LINE_CHANNEL_SECRET")
		if channelSecret == "" {
			fmt.Fprintln(os.Stderr, "LINE_CHANNEL_SECRET is not set")
			os.Exit(1)
		}

		observer := newObserver(command)
		completer := newCompleter(observer)

		workflow, err := labs.Support(completer, graph.WithObserver(observer))
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to build the workflow: %v\n", err)
			os.Exit(1)
		}

		var store memory.Store
		if redisAddress, _ := command.Flags().GetString("redis"); redisAddress != "" {
			redisStore := redismem.New(redisAddress, os.Getenv("REDIS_PASSWORD"), 0)
			defer redisStore.Close()
			store = redisStore
		} else {
			store = inmemory.New()
		}

		manager := conversation.NewManager(workflow, store,
			conversation.WithInputField(labs.FieldUserQuestion),
			conversation.WithFinalField(labs.FieldAgentResponse),
		)

		server := webhook.NewServer(channelSecret, manager, webhook.NewLineReplier(),
			webhook.WithObserver(observer),
			webhook.WithFields(labs.FieldUserQuestion, labs.FieldAgentResponse),
		)

		port := os.Getenv("PORT")
		if port == "" {
			port = "8000"
		}
		httpServer := &http.Server{
			Addr:              ":" + port,
			Handler:           server.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Listening on %s\n", httpServer.Addr)
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("shutting down (%v)\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "graceful shutdown did not complete in %v: %v\n", shutdownTimeout, err)
				if err := httpServer.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "failed to close the server: %v\n", err)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("redis", "", "Redis address for conversation persistence (e.g. localhost:6379)")
}
