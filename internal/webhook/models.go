package webhook

// webhookRequest is the body LINE posts to the webhook endpoint.
type webhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one LINE webhook event. Only text message events from users are
// processed; everything else (follows, stickers, group joins) is skipped.
type Event struct {
	Type       string  `json:"type"`
	ReplyToken string  `json:"replyToken"`
	Source     Source  `json:"source"`
	Message    Message `json:"message"`
}

// Source identifies the sender of an event.
type Source struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// Message is the message payload of a message event.
type Message struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Text string `json:"text"`
}
