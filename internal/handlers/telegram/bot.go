package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	ledgerRepo "github.com/rollhouse/rollhouse/internal/repositories/ledger"
	"github.com/rollhouse/rollhouse/internal/services/game"
	"github.com/rollhouse/rollhouse/internal/services/messaging"
)

const defaultTelegramAPIBase = "https://api.telegram.org"

// Config holds the configuration for the bot
type Config struct {
	// BotToken authenticates the main bot identity
	BotToken string

	// GameService runs the wagering flows
	GameService game.Service

	// LedgerRepo backs balance and gift commands
	LedgerRepo ledgerRepo.Repository

	// Notifier sends replies
	Notifier messaging.Notifier

	// PollTimeout is the long-poll wait; defaults to 30s
	PollTimeout time.Duration

	// HTTPClient defaults to one sized for long polling
	HTTPClient *http.Client

	// APIBase overrides the Telegram API base URL, for tests
	APIBase string

	// Logger defaults to a nop logger
	Logger *zap.Logger
}

// Bot long-polls Telegram for updates and dispatches chat commands
type Bot struct {
	botToken    string
	gameService game.Service
	ledgerRepo  ledgerRepo.Repository
	notifier    messaging.Notifier
	pollTimeout time.Duration
	client      *http.Client
	apiBase     string
	logger      *zap.Logger

	// offset is the next update id to request
	offset int64
}

// New creates a new Telegram bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.BotToken == "" {
		return nil, errors.New("bot token cannot be empty")
	}
	if cfg.GameService == nil {
		return nil, errors.New("game service cannot be nil")
	}
	if cfg.LedgerRepo == nil {
		return nil, errors.New("ledger repository cannot be nil")
	}
	if cfg.Notifier == nil {
		return nil, errors.New("notifier cannot be nil")
	}

	pollTimeout := cfg.PollTimeout
	if pollTimeout == 0 {
		pollTimeout = 30 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: pollTimeout + 10*time.Second}
	}

	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = defaultTelegramAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Bot{
		botToken:    cfg.BotToken,
		gameService: cfg.GameService,
		ledgerRepo:  cfg.LedgerRepo,
		notifier:    cfg.Notifier,
		pollTimeout: pollTimeout,
		client:      client,
		apiBase:     apiBase,
		logger:      logger,
	}, nil
}

// update mirrors the subset of a Telegram update the bot reads
type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		From *struct {
			ID        int64  `json:"id"`
			Username  string `json:"username"`
			FirstName string `json:"first_name"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
	CallbackQuery *struct {
		From struct {
			ID        int64  `json:"id"`
			Username  string `json:"username"`
			FirstName string `json:"first_name"`
		} `json:"from"`
		Message *struct {
			Chat struct {
				ID int64 `json:"id"`
			} `json:"chat"`
		} `json:"message"`
		Data string `json:"data"`
	} `json:"callback_query"`
}

// getUpdatesResponse is the envelope of a getUpdates call
type getUpdatesResponse struct {
	OK     bool     `json:"ok"`
	Result []update `json:"result"`
}

// Run polls for updates until the context is cancelled
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.getUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Warn("getUpdates failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, u := range updates {
			b.handleUpdate(ctx, u)
			if u.UpdateID >= b.offset {
				b.offset = u.UpdateID + 1
			}
		}
	}
}

// getUpdates performs one long-poll request
func (b *Bot) getUpdates(ctx context.Context) ([]update, error) {
	endpoint := fmt.Sprintf("%s/bot%s/getUpdates", b.apiBase, b.botToken)

	params := url.Values{}
	params.Set("offset", strconv.FormatInt(b.offset, 10))
	params.Set("timeout", strconv.Itoa(int(b.pollTimeout.Seconds())))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build getUpdates request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed getUpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode getUpdates response: %w", err)
	}
	if !parsed.OK {
		return nil, errors.New("getUpdates rejected")
	}

	return parsed.Result, nil
}

func (b *Bot) handleUpdate(ctx context.Context, u update) {
	if u.CallbackQuery != nil && u.CallbackQuery.Message != nil {
		gameID, ok := ParseJoinCallback(u.CallbackQuery.Data)
		if !ok {
			return
		}
		from := u.CallbackQuery.From
		chatID := strconv.FormatInt(u.CallbackQuery.Message.Chat.ID, 10)
		b.handleJoin(ctx, chatID, strconv.FormatInt(from.ID, 10), displayName(from.Username, from.FirstName), gameID)
		return
	}

	if u.Message == nil || u.Message.From == nil {
		return
	}

	cmd, ok := ParseCommand(u.Message.Text)
	if !ok {
		return
	}

	from := u.Message.From
	chatID := strconv.FormatInt(u.Message.Chat.ID, 10)
	accountID := strconv.FormatInt(from.ID, 10)
	name := displayName(from.Username, from.FirstName)

	switch cmd.Action {
	case ActionCreate:
		b.handleCreate(ctx, chatID, accountID, name, cmd)
	case ActionJoin:
		b.handleJoin(ctx, chatID, accountID, name, cmd.GameID)
	case ActionBalance:
		b.handleBalance(ctx, chatID, accountID, name)
	case ActionCancel:
		b.handleCancel(ctx, chatID, accountID)
	case ActionGift:
		b.handleGift(ctx, chatID, accountID, cmd)
	case ActionGames:
		b.handleGames(ctx, chatID)
	}
}

func (b *Bot) handleCreate(ctx context.Context, chatID, accountID, name string, cmd *Command) {
	output, err := b.gameService.CreateGame(ctx, &game.CreateGameInput{
		CreatorID:   accountID,
		CreatorName: name,
		ChatID:      chatID,
		Kind:        cmd.Kind,
		Mode:        cmd.Mode,
		Bet:         cmd.Bet,
	})
	if err != nil {
		b.reply(ctx, chatID, renderError(err))
		return
	}
	b.reply(ctx, chatID, renderLobby(output.Game))
}

func (b *Bot) handleJoin(ctx context.Context, chatID, accountID, name, gameID string) {
	output, err := b.gameService.JoinGame(ctx, &game.JoinGameInput{
		GameID:      gameID,
		AccountID:   accountID,
		AccountName: name,
	})
	if err != nil {
		b.reply(ctx, chatID, renderError(err))
		return
	}
	if !output.Started {
		b.reply(ctx, chatID, renderLobby(output.Game))
	}
}

func (b *Bot) handleBalance(ctx context.Context, chatID, accountID, name string) {
	account, err := b.ledgerRepo.GetOrCreateAccount(ctx, &ledgerRepo.GetOrCreateAccountInput{
		AccountID: accountID,
		Username:  name,
	})
	if err != nil {
		b.reply(ctx, chatID, renderError(err))
		return
	}
	b.reply(ctx, chatID, renderBalance(account))
}

func (b *Bot) handleCancel(ctx context.Context, chatID, accountID string) {
	output, err := b.gameService.CancelLastGame(ctx, &game.CancelLastGameInput{
		CreatorID: accountID,
	})
	if err != nil {
		b.reply(ctx, chatID, renderError(err))
		return
	}
	b.reply(ctx, chatID, renderCancel(output))
}

func (b *Bot) handleGames(ctx context.Context, chatID string) {
	output, err := b.gameService.ListGames(ctx, &game.ListGamesInput{})
	if err != nil {
		b.reply(ctx, chatID, renderError(err))
		return
	}
	b.reply(ctx, chatID, renderGames(output.Games))
}

func (b *Bot) handleGift(ctx context.Context, chatID, accountID string, cmd *Command) {
	_, err := b.ledgerRepo.Transfer(ctx, &ledgerRepo.TransferInput{
		FromAccountID: accountID,
		ToAccountID:   cmd.TargetID,
		Amount:        cmd.Amount,
	})
	if err != nil {
		b.reply(ctx, chatID, renderError(err))
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("Sent %s to %s", cmd.Amount.String(), cmd.TargetID))
}

// reply sends a message, logging any failure
func (b *Bot) reply(ctx context.Context, chatID, text string) {
	if err := b.notifier.Notify(ctx, &messaging.NotifyInput{ChatID: chatID, Text: text}); err != nil {
		b.logger.Warn("failed to send reply",
			zap.String("chat_id", chatID),
			zap.Error(err))
	}
}

func displayName(username, firstName string) string {
	if username != "" {
		return username
	}
	return firstName
}
