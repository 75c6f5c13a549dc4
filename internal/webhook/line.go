package webhook

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/leofalp/flowlab/internal/utils"
)

const defaultLineAPIBaseURL = "https://api.line.me"

// Replier sends the workflow's answer back to the chat platform. The LINE
// implementation is [LineReplier]; tests use stubs.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// LineReplier answers webhook events through the LINE reply API.
type LineReplier struct {
	accessToken string
	baseURL     string
	client      *http.Client
}

// NewLineReplier creates a replier authenticated with the channel access
// token from the LINE_CHANNEL_ACCESS_TOKEN environment variable.
func NewLineReplier() *LineReplier {
	return &LineReplier{
		accessToken: os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		baseURL:     defaultLineAPIBaseURL,
		client:      &http.Client{},
	}
}

// WithAccessToken sets the channel access token.
func (replier *LineReplier) WithAccessToken(accessToken string) *LineReplier {
	replier.accessToken = accessToken
	return replier
}

// WithBaseURL overrides the LINE API base URL (tests point it at a local
// server).
func (replier *LineReplier) WithBaseURL(baseURL string) *LineReplier {
	replier.baseURL = baseURL
	return replier
}

// WithHttpClient sets a custom HTTP client.
func (replier *LineReplier) WithHttpClient(client *http.Client) *LineReplier {
	replier.client = client
	return replier
}

// replyRequest is the wire format of POST /v2/bot/message/reply.
type replyRequest struct {
	ReplyToken string         `json:"replyToken"`
	Messages   []replyMessage `json:"messages"`
}

type replyMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply implements Replier.
func (replier *LineReplier) Reply(ctx context.Context, replyToken, text string) error {
	if replier.accessToken == "" {
		return fmt.Errorf("channel access token is not set")
	}

	body := replyRequest{
		ReplyToken: replyToken,
		Messages:   []replyMessage{{Type: "text", Text: text}},
	}

	_, _, err := utils.DoPostSync[struct{}](ctx, replier.client, replier.baseURL+"/v2/bot/message/reply", replier.accessToken, body)
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}
