package messaging

import (
	"net/http"
)

// Config holds configuration for the Telegram notifier
type Config struct {
	// BotToken authenticates the main bot identity
	BotToken string

	// HTTPClient defaults to one with a 10s timeout
	HTTPClient *http.Client

	// APIBase overrides the Telegram API base URL, for tests
	APIBase string
}

// NotifyInput contains parameters for one outbound message
type NotifyInput struct {
	// ChatID is the destination chat or account
	ChatID string

	// Text is the message body
	Text string
}
