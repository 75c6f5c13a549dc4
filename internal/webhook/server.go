package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leofalp/flowlab/core/conversation"
	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/providers/memory"
	"github.com/leofalp/flowlab/providers/observability"
)

// maxWebhookBodySize caps the webhook request body (1 MB).
const maxWebhookBodySize = 1 * 1024 * 1024

// fallbackReply is sent when a workflow run fails for a turn. The committed
// conversation state is untouched, so the user can simply try again.
const fallbackReply = "Sorry, the system ran into a problem. Please try again later."

// Server is the chat-bot front end: it receives LINE webhook events,
// threads each user's messages through a conversation.Manager (one
// conversation per user id), and replies with the workflow's answer.
type Server struct {
	channelSecret string
	manager       *conversation.Manager
	replier       Replier
	observer      observability.Provider

	inputField string
	finalField string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithObserver sets the logging provider. The default is a no-op.
func WithObserver(observer observability.Provider) ServerOption {
	return func(server *Server) {
		server.observer = observer
	}
}

// WithFields names the state record fields carrying the user's message and
// the workflow's answer. The defaults match the support workflow
// ("user_question", "agent_response").
func WithFields(inputField, finalField string) ServerOption {
	return func(server *Server) {
		server.inputField = inputField
		server.finalField = finalField
	}
}

// NewServer creates the webhook server. channelSecret is the LINE channel
// secret used to validate request signatures.
func NewServer(channelSecret string, manager *conversation.Manager, replier Replier, opts ...ServerOption) *Server {
	server := &Server{
		channelSecret: channelSecret,
		manager:       manager,
		replier:       replier,
		observer:      observability.Nop(),
		inputField:    "user_question",
		finalField:    "agent_response",
	}
	for _, opt := range opts {
		opt(server)
	}
	return server
}

// Router returns the HTTP handler: GET / for health checks and
// POST /webhook for LINE events.
func (server *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Get("/", server.handleHealth)
	router.Post("/webhook", server.handleWebhook)
	return router
}

func (server *Server) handleHealth(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(map[string]string{
		"status":  "running",
		"service": "flowlab support bot",
	})
}

func (server *Server) handleWebhook(writer http.ResponseWriter, request *http.Request) {
	body, err := io.ReadAll(io.LimitReader(request.Body, maxWebhookBodySize))
	if err != nil {
		http.Error(writer, "failed to read body", http.StatusBadRequest)
		return
	}

	signature := request.Header.Get("X-Line-Signature")
	if !ValidSignature(server.channelSecret, body, signature) {
		server.observer.Warn("webhook signature validation failed")
		http.Error(writer, "invalid signature", http.StatusBadRequest)
		return
	}

	var decoded webhookRequest
	if err := json.Unmarshal(body, &decoded); err != nil {
		http.Error(writer, "invalid body", http.StatusBadRequest)
		return
	}

	for _, event := range decoded.Events {
		server.handleEvent(request, event)
	}

	writer.WriteHeader(http.StatusOK)
	writer.Write([]byte("OK"))
}

// handleEvent processes one webhook event: run the workflow for text
// messages and reply with the answer, or the fallback text when the run
// fails.
func (server *Server) handleEvent(request *http.Request, event Event) {
	if event.Type != "message" || event.Message.Type != "text" || event.Source.UserID == "" {
		return
	}

	ctx := request.Context()
	userID := event.Source.UserID

	server.observer.Info("webhook message received",
		observability.String("user", observability.TruncateString(userID, 8)),
		observability.Int("message_length", len(event.Message.Text)),
	)

	answer := server.answerFor(ctx, userID, event.Message.Text)

	if err := server.replier.Reply(ctx, event.ReplyToken, answer); err != nil {
		server.observer.Error("failed to reply", observability.Error(err))
	}
}

// answerFor runs one conversation turn for a user, starting the conversation
// on first contact.
func (server *Server) answerFor(ctx context.Context, userID, text string) string {
	input := state.Update{server.inputField: text}

	finalRecord, err := server.manager.Continue(ctx, userID, input)
	if errors.Is(err, memory.ErrUnknownConversation) {
		if _, startErr := server.manager.Start(ctx, userID); startErr != nil {
			server.observer.Error("failed to start conversation", observability.Error(startErr))
			return fallbackReply
		}
		finalRecord, err = server.manager.Continue(ctx, userID, input)
	}
	if err != nil {
		server.observer.Error("workflow run failed", observability.Error(err))
		return fallbackReply
	}

	answer := finalRecord.String(server.finalField)
	if answer == "" {
		return fallbackReply
	}
	return answer
}
