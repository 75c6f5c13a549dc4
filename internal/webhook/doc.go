// Package webhook is the LINE chat-bot front end. It validates webhook
// signatures, threads each user's text messages through a multi-turn
// conversation backed by a workflow, and sends the answer back through the
// LINE reply API.
package webhook
