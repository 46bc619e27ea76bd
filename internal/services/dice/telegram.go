package dice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultTelegramAPIBase = "https://api.telegram.org"

// TelegramProviderConfig holds configuration for the Telegram provider
type TelegramProviderConfig struct {
	// HTTPClient defaults to one with a 10s timeout
	HTTPClient *http.Client

	// APIBase overrides the Telegram API base URL, for tests
	APIBase string
}

// telegramProvider requests throws via the Telegram sendDice method,
// one bot token per throw identity
type telegramProvider struct {
	client  *http.Client
	apiBase string
}

// NewTelegramProvider creates a Provider backed by the Telegram Bot API
func NewTelegramProvider(cfg *TelegramProviderConfig) *telegramProvider {
	client := &http.Client{Timeout: 10 * time.Second}
	apiBase := defaultTelegramAPIBase

	if cfg != nil {
		if cfg.HTTPClient != nil {
			client = cfg.HTTPClient
		}
		if cfg.APIBase != "" {
			apiBase = cfg.APIBase
		}
	}

	return &telegramProvider{
		client:  client,
		apiBase: apiBase,
	}
}

// sendDiceResponse is the subset of the Telegram response we read
type sendDiceResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		Dice struct {
			Value int `json:"value"`
		} `json:"dice"`
	} `json:"result"`
}

// RequestThrow posts a sendDice call for the given identity and
// returns the animated value Telegram chose
func (p *telegramProvider) RequestThrow(ctx context.Context, input *RequestThrowInput) (int, error) {
	if input == nil || input.IdentityToken == "" {
		return 0, errors.New("input and identity token cannot be empty")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendDice", p.apiBase, input.IdentityToken)

	params := url.Values{}
	params.Set("chat_id", input.Channel)
	if input.Emoji != "" {
		params.Set("emoji", input.Emoji)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build sendDice request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sendDice request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("sendDice returned status %d", resp.StatusCode)
	}

	var parsed sendDiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode sendDice response: %w", err)
	}

	if !parsed.OK {
		return 0, errors.New("sendDice response not ok")
	}

	return parsed.Result.Dice.Value, nil
}
