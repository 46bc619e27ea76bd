package game

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rollhouse/rollhouse/internal/common/clock"
	"github.com/rollhouse/rollhouse/internal/models"
	gameRepo "github.com/rollhouse/rollhouse/internal/repositories/game"
	ledgerRepo "github.com/rollhouse/rollhouse/internal/repositories/ledger"
	diceService "github.com/rollhouse/rollhouse/internal/services/dice"
	"github.com/rollhouse/rollhouse/internal/services/messaging"
)

var defaultMinBet = decimal.NewFromInt(10)

// service implements the Service interface
type service struct {
	gameRepo    gameRepo.Repository
	ledgerRepo  ledgerRepo.Repository
	diceService diceService.Service
	notifier    messaging.Notifier
	clock       clock.Clock
	minBet      decimal.Decimal
	logger      *zap.Logger

	// startRun launches play for a freshly filled game; tests replace
	// it to keep joins synchronous
	startRun func(gameID string)
}

// New creates a new game service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.GameRepo == nil {
		return nil, ErrNilGameRepo
	}
	if cfg.LedgerRepo == nil {
		return nil, ErrNilLedgerRepo
	}
	if cfg.DiceService == nil {
		return nil, ErrNilDiceService
	}
	if cfg.Notifier == nil {
		return nil, ErrNilNotifier
	}

	c := cfg.Clock
	if c == nil {
		c = &clock.DefaultClock{}
	}

	minBet := cfg.MinBet
	if minBet.IsZero() {
		minBet = defaultMinBet
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &service{
		gameRepo:    cfg.GameRepo,
		ledgerRepo:  cfg.LedgerRepo,
		diceService: cfg.DiceService,
		notifier:    cfg.Notifier,
		clock:       c,
		minBet:      minBet,
		logger:      logger,
	}

	s.startRun = func(gameID string) {
		go func() {
			if _, err := s.Run(context.Background(), &RunInput{GameID: gameID}); err != nil {
				s.logger.Error("game run failed",
					zap.String("game_id", gameID),
					zap.Error(err))
			}
		}()
	}

	return s, nil
}

// CreateGame debits the creator's bet and opens a waiting lobby.
// The debit comes first: an account that cannot cover the stake never
// produces a game record.
func (s *service) CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if input.Bet.LessThan(s.minBet) {
		return nil, ErrInvalidBet
	}

	_, err := s.ledgerRepo.GetOrCreateAccount(ctx, &ledgerRepo.GetOrCreateAccountInput{
		AccountID: input.CreatorID,
		Username:  input.CreatorName,
	})
	if err != nil {
		return nil, err
	}

	_, err = s.ledgerRepo.Debit(ctx, &ledgerRepo.DebitInput{
		AccountID: input.CreatorID,
		Amount:    input.Bet,
		Kind:      models.TransactionKindGameBet,
	})
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	now := s.clock.Now()
	game := &models.Game{
		Kind:      input.Kind,
		Mode:      input.Mode.Mode,
		ChatID:    input.ChatID,
		CreatorID: input.CreatorID,
		Bet:       input.Bet,
		Players: []*models.PlayerState{
			{AccountID: input.CreatorID, Name: input.CreatorName},
		},
		Status:       models.GameStatusWaiting,
		MaxPlayers:   input.Mode.MaxPlayers,
		DicePerTurn:  input.Mode.DicePerTurn,
		TotalRounds:  input.Mode.TotalRounds,
		TargetWins:   input.Mode.TargetWins,
		CurrentRound: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.gameRepo.CreateGame(ctx, &gameRepo.CreateGameInput{Game: game})
	if err != nil {
		// The stake is already held; hand it back before failing.
		s.refund(ctx, input.CreatorID, input.Bet, "")
		return nil, err
	}

	return &CreateGameOutput{Game: created.Game}, nil
}

// JoinGame debits the joiner's bet and adds them to the roster. The
// roster checks run twice: once up front so callers get a clean error
// before any money moves, and again inside the atomic update in case a
// competing join landed in between.
func (s *service) JoinGame(ctx context.Context, input *JoinGameInput) (*JoinGameOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	game, err := s.gameRepo.GetGame(ctx, &gameRepo.GetGameInput{GameID: input.GameID})
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	if err := joinable(game, input.AccountID); err != nil {
		return nil, err
	}

	_, err = s.ledgerRepo.GetOrCreateAccount(ctx, &ledgerRepo.GetOrCreateAccountInput{
		AccountID: input.AccountID,
		Username:  input.AccountName,
	})
	if err != nil {
		return nil, err
	}

	_, err = s.ledgerRepo.Debit(ctx, &ledgerRepo.DebitInput{
		AccountID: input.AccountID,
		Amount:    game.Bet,
		Kind:      models.TransactionKindGameBet,
		Metadata:  map[string]string{"game_id": game.ID},
	})
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	started := false
	updated, err := s.gameRepo.UpdateGame(ctx, &gameRepo.UpdateGameInput{
		GameID: input.GameID,
		Mutate: func(g *models.Game) error {
			if err := joinable(g, input.AccountID); err != nil {
				return err
			}
			g.Players = append(g.Players, &models.PlayerState{
				AccountID: input.AccountID,
				Name:      input.AccountName,
			})
			if g.IsFull() {
				g.Status = models.GameStatusPlaying
				started = true
			}
			return nil
		},
	})
	if err != nil {
		// The debit already landed; give the stake back.
		s.refund(ctx, input.AccountID, game.Bet, game.ID)
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	if started {
		s.startRun(updated.ID)
	}

	return &JoinGameOutput{Game: updated, Started: started}, nil
}

// CancelLastGame removes the creator's most recent waiting lobby.
// Deletion happens before the refunds so no join can slip in while
// money is being handed back.
func (s *service) CancelLastGame(ctx context.Context, input *CancelLastGameInput) (*CancelLastGameOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	game, err := s.gameRepo.LastWaitingByCreator(ctx, &gameRepo.LastWaitingByCreatorInput{
		CreatorID: input.CreatorID,
	})
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return &CancelLastGameOutput{Cancelled: false}, nil
		}
		return nil, err
	}

	if err := s.gameRepo.DeleteGame(ctx, &gameRepo.DeleteGameInput{GameID: game.ID}); err != nil {
		return nil, err
	}

	refunded := decimal.Zero
	for _, p := range game.Players {
		s.refund(ctx, p.AccountID, game.Bet, game.ID)
		refunded = refunded.Add(game.Bet)
	}

	return &CancelLastGameOutput{
		Cancelled: true,
		GameID:    game.ID,
		Refunded:  refunded,
	}, nil
}

// ListGames returns all live games, waiting lobbies before playing
// games, each group ordered by ID
func (s *service) ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	output, err := s.gameRepo.GetActiveGames(ctx, &gameRepo.GetActiveGamesInput{})
	if err != nil {
		return nil, err
	}

	games := output.Games
	sort.Slice(games, func(i, j int) bool {
		if games[i].Status != games[j].Status {
			return games[i].Status == models.GameStatusWaiting
		}
		return gameIDLess(games[i].ID, games[j].ID)
	})

	return &ListGamesOutput{Games: games}, nil
}

// gameIDLess orders numeric string IDs by magnitude
func gameIDLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// joinable reports why an account cannot join a game, or nil
func joinable(game *models.Game, accountID string) error {
	if game.HasPlayer(accountID) {
		return ErrAlreadyJoined
	}
	if game.IsFull() {
		return ErrGameFull
	}
	if game.Status != models.GameStatusWaiting {
		return ErrAlreadyStarted
	}
	return nil
}

// refund returns a held stake to a player. A failure here means the
// ledger rejected a credit, which it only does for malformed input, so
// it is logged loudly rather than retried.
func (s *service) refund(ctx context.Context, accountID string, amount decimal.Decimal, gameID string) {
	var metadata map[string]string
	if gameID != "" {
		metadata = map[string]string{"game_id": gameID}
	}

	_, err := s.ledgerRepo.Credit(ctx, &ledgerRepo.CreditInput{
		AccountID: accountID,
		Amount:    amount,
		Kind:      models.TransactionKindGameWin,
		Metadata:  metadata,
	})
	if err != nil {
		s.logger.Error("failed to refund stake",
			zap.String("account_id", accountID),
			zap.String("game_id", gameID),
			zap.String("amount", amount.String()),
			zap.Error(err))
	}
}

// notify announces a message to the game's chat, logging any failure
func (s *service) notify(ctx context.Context, chatID, text string) {
	if err := s.notifier.Notify(ctx, &messaging.NotifyInput{ChatID: chatID, Text: text}); err != nil {
		s.logger.Warn("failed to send notification",
			zap.String("chat_id", chatID),
			zap.Error(err))
	}
}

// kindEmoji maps a game kind to the dice animation it throws
func kindEmoji(kind models.GameKind) string {
	switch kind {
	case models.GameKindDart:
		return "🎯"
	case models.GameKindBasketball:
		return "🏀"
	case models.GameKindBowling:
		return "🎳"
	case models.GameKindFootball:
		return "⚽"
	default:
		return "🎲"
	}
}
