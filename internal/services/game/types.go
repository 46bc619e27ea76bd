package game

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rollhouse/rollhouse/internal/common/clock"
	"github.com/rollhouse/rollhouse/internal/models"
	"github.com/rollhouse/rollhouse/internal/modes"
	gameRepo "github.com/rollhouse/rollhouse/internal/repositories/game"
	ledgerRepo "github.com/rollhouse/rollhouse/internal/repositories/ledger"
	diceService "github.com/rollhouse/rollhouse/internal/services/dice"
	"github.com/rollhouse/rollhouse/internal/services/messaging"
)

// Config holds configuration for the game service
type Config struct {
	// GameRepo persists live games
	GameRepo gameRepo.Repository

	// LedgerRepo holds balances and the transaction log
	LedgerRepo ledgerRepo.Repository

	// DiceService produces throw values
	DiceService diceService.Service

	// Notifier announces results; failures are logged, never fatal
	Notifier messaging.Notifier

	// Clock provides timestamps; defaults to the system clock
	Clock clock.Clock

	// MinBet is the smallest accepted stake; defaults to 10
	MinBet decimal.Decimal

	// Logger defaults to a nop logger
	Logger *zap.Logger
}

// CreateGameInput contains parameters for opening a lobby
type CreateGameInput struct {
	// CreatorID is the account opening the lobby
	CreatorID string

	// CreatorName is the creator's display name
	CreatorName string

	// ChatID is the chat the game plays in
	ChatID string

	// Kind is the dice variant to play
	Kind models.GameKind

	// Mode is the resolved game configuration
	Mode modes.GameConfig

	// Bet is the stake each player puts up
	Bet decimal.Decimal
}

// CreateGameOutput contains the result of opening a lobby
type CreateGameOutput struct {
	// Game is the persisted waiting game
	Game *models.Game
}

// JoinGameInput contains parameters for joining a lobby
type JoinGameInput struct {
	// GameID is the lobby to join
	GameID string

	// AccountID is the joining account
	AccountID string

	// AccountName is the joiner's display name
	AccountName string
}

// JoinGameOutput contains the result of a join
type JoinGameOutput struct {
	// Game is the game after the join
	Game *models.Game

	// Started indicates the join filled the roster and play has begun
	Started bool
}

// CancelLastGameInput contains parameters for cancelling a lobby
type CancelLastGameInput struct {
	// CreatorID is the account whose latest waiting lobby to cancel
	CreatorID string
}

// CancelLastGameOutput contains the result of a cancellation
type CancelLastGameOutput struct {
	// Cancelled indicates a waiting lobby was found and removed
	Cancelled bool

	// GameID is the removed game, when one was found
	GameID string

	// Refunded is the total amount returned to players
	Refunded decimal.Decimal
}

// ListGamesInput contains parameters for listing live games
type ListGamesInput struct{}

// ListGamesOutput contains the live games
type ListGamesOutput struct {
	// Games holds waiting lobbies first, then playing games, each
	// group ordered by ID
	Games []*models.Game
}

// RunInput contains parameters for driving a game to settlement
type RunInput struct {
	// GameID is the playing game to drive
	GameID string
}

// RunOutput contains the result of a completed game
type RunOutput struct {
	// Settlement describes where the pot went
	Settlement *Settlement
}

// Settlement describes the final payout of a game
type Settlement struct {
	// GameID is the settled game
	GameID string

	// Pot is the total amount that was at stake
	Pot decimal.Decimal

	// Winners holds the account IDs paid the pot; empty on a refund
	Winners []string

	// Refunded indicates every player got their own bet back
	Refunded bool

	// Scores maps account ID to final cumulative score
	Scores map[string]int
}
