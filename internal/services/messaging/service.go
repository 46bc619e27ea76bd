package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTelegramAPIBase = "https://api.telegram.org"

// service implements the Notifier interface over the Telegram Bot API
type service struct {
	botToken string
	client   *http.Client
	apiBase  string
}

// New creates a new Telegram notifier
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.BotToken == "" {
		return nil, errors.New("bot token cannot be empty")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = defaultTelegramAPIBase
	}

	return &service{
		botToken: cfg.BotToken,
		client:   client,
		apiBase:  apiBase,
	}, nil
}

// apiResponse is the subset of the Telegram response we read
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends a text message to a chat
func (s *service) Notify(ctx context.Context, input *NotifyInput) error {
	if input == nil || input.ChatID == "" {
		return errors.New("input and chat ID cannot be empty")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.botToken)

	params := url.Values{}
	params.Set("chat_id", input.ChatID)
	params.Set("text", input.Text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to decode sendMessage response: %w", err)
	}

	if !parsed.OK {
		return fmt.Errorf("sendMessage rejected: %s", parsed.Description)
	}

	return nil
}
