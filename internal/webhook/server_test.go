package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/leofalp/flowlab/core/conversation"
	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/providers/memory/inmemory"
)

const testChannelSecret = "test-channel-secret"

// stubRunner answers every run with a fixed response, counting the turns it
// has seen in the state record.
type stubRunner struct {
	response string
	failure  error
}

func (runner *stubRunner) Run(ctx context.Context, initial state.Record) (state.Record, error) {
	if runner.failure != nil {
		return initial, runner.failure
	}
	final := initial.Clone()
	turns, _ := final["turns_seen"].(int)
	final["turns_seen"] = turns + 1
	final["agent_response"] = fmt.Sprintf("%s #%d", runner.response, turns+1)
	return final, nil
}

// recordingReplier captures every reply for assertions.
type recordingReplier struct {
	mu      sync.Mutex
	replies []string
	tokens  []string
}

func (replier *recordingReplier) Reply(ctx context.Context, replyToken, text string) error {
	replier.mu.Lock()
	defer replier.mu.Unlock()
	replier.tokens = append(replier.tokens, replyToken)
	replier.replies = append(replier.replies, text)
	return nil
}

func (replier *recordingReplier) last(t *testing.T) string {
	t.Helper()
	replier.mu.Lock()
	defer replier.mu.Unlock()
	if len(replier.replies) == 0 {
		t.Fatal("expected at least one reply")
	}
	return replier.replies[len(replier.replies)-1]
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testChannelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func textMessageBody(t *testing.T, userID, text string) []byte {
	t.Helper()
	body, err := json.Marshal(webhookRequest{
		Destination: "bot-destination",
		Events: []Event{{
			Type:       "message",
			ReplyToken: "reply-token-1",
			Source:     Source{Type: "user", UserID: userID},
			Message:    Message{Type: "text", ID: "msg-1", Text: text},
		}},
	})
	if err != nil {
		t.Fatalf("failed to marshal webhook body: %v", err)
	}
	return body
}

func newTestServer(runner conversation.Runner, replier Replier) *Server {
	manager := conversation.NewManager(runner, inmemory.New())
	return NewServer(testChannelSecret, manager, replier)
}

func postWebhook(t *testing.T, handler http.Handler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	request.Header.Set("X-Line-Signature", signature)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(&stubRunner{response: "hello"}, &recordingReplier{})

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode health payload: %v", err)
	}
	if payload["status"] != "running" {
		t.Errorf("expected a running status, got %q", payload["status"])
	}
}

func TestWebhookRepliesWithWorkflowAnswer(t *testing.T) {
	replier := &recordingReplier{}
	server := newTestServer(&stubRunner{response: "the answer"}, replier)

	body := textMessageBody(t, "user-1", "how do I reset my laptop?")
	recorder := postWebhook(t, server.Router(), body, signBody(body))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if got := replier.last(t); got != "the answer #1" {
		t.Errorf("unexpected reply: %q", got)
	}
	if replier.tokens[0] != "reply-token-1" {
		t.Errorf("expected the event's reply token, got %q", replier.tokens[0])
	}
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	replier := &recordingReplier{}
	server := newTestServer(&stubRunner{response: "the answer"}, replier)

	body := textMessageBody(t, "user-1", "hello")
	recorder := postWebhook(t, server.Router(), body, "bm90LXRoZS1zaWduYXR1cmU=")

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "invalid signature") {
		t.Errorf("expected an invalid-signature body, got %q", recorder.Body.String())
	}
	if len(replier.replies) != 0 {
		t.Errorf("expected no replies, got %v", replier.replies)
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	server := newTestServer(&stubRunner{response: "the answer"}, &recordingReplier{})

	body := []byte("{not json")
	recorder := postWebhook(t, server.Router(), body, signBody(body))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestWebhookThreadsConversationAcrossMessages(t *testing.T) {
	replier := &recordingReplier{}
	server := newTestServer(&stubRunner{response: "answer"}, replier)
	router := server.Router()

	for _, text := range []string{"first question", "second question"} {
		body := textMessageBody(t, "user-1", text)
		recorder := postWebhook(t, router, body, signBody(body))
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
	}

	replier.mu.Lock()
	defer replier.mu.Unlock()
	if len(replier.replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(replier.replies))
	}
	// turns_seen survives commits, so the second run sees the first turn.
	if replier.replies[0] != "answer #1" || replier.replies[1] != "answer #2" {
		t.Errorf("expected threaded turns, got %v", replier.replies)
	}
}

func TestWebhookSendsFallbackWhenRunFails(t *testing.T) {
	replier := &recordingReplier{}
	server := newTestServer(&stubRunner{failure: errors.New("provider down")}, replier)

	body := textMessageBody(t, "user-1", "hello")
	recorder := postWebhook(t, server.Router(), body, signBody(body))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 even on run failure, got %d", recorder.Code)
	}
	if got := replier.last(t); got != fallbackReply {
		t.Errorf("expected the fallback reply, got %q", got)
	}
}

func TestWebhookSkipsNonTextEvents(t *testing.T) {
	replier := &recordingReplier{}
	server := newTestServer(&stubRunner{response: "answer"}, replier)

	body, err := json.Marshal(webhookRequest{
		Events: []Event{
			{Type: "follow", Source: Source{Type: "user", UserID: "user-1"}},
			{Type: "message", ReplyToken: "rt", Source: Source{Type: "user", UserID: "user-1"}, Message: Message{Type: "sticker", ID: "s-1"}},
		},
	})
	if err != nil {
		t.Fatalf("failed to marshal webhook body: %v", err)
	}

	recorder := postWebhook(t, server.Router(), body, signBody(body))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if len(replier.replies) != 0 {
		t.Errorf("expected no replies for non-text events, got %v", replier.replies)
	}
}

func TestValidSignature(t *testing.T) {
	body := []byte(`{"events":[]}`)
	if !ValidSignature(testChannelSecret, body, signBody(body)) {
		t.Error("expected the computed signature to validate")
	}
	if ValidSignature(testChannelSecret, body, "bogus") {
		t.Error("expected a bogus signature to be rejected")
	}
	if ValidSignature("other-secret", body, signBody(body)) {
		t.Error("expected a signature under a different secret to be rejected")
	}
}
