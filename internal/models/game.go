package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GameStatus represents the current state of a game
type GameStatus string

const (
	// GameStatusWaiting indicates a game is waiting for players to join
	GameStatusWaiting GameStatus = "waiting"

	// GameStatusPlaying indicates a game is in progress
	GameStatusPlaying GameStatus = "playing"
)

// GameKind identifies which dice variant a game plays
type GameKind string

const (
	GameKindCube       GameKind = "cube"
	GameKindDart       GameKind = "dart"
	GameKindBasketball GameKind = "basketball"
	GameKindBowling    GameKind = "bowling"
	GameKindFootball   GameKind = "football"
	GameKindTwentyOne  GameKind = "twentyone"
)

// GameMode determines how rounds and winners are resolved
type GameMode string

const (
	// GameModeClassic is a single round, one die per player
	GameModeClassic GameMode = "classic"

	// GameModeWins repeats rounds until a player reaches the target round-win count
	GameModeWins GameMode = "wins"

	// GameModeTotal is a single round, each player summing several dice
	GameModeTotal GameMode = "total"

	// GameModePlayers is classic play with a configurable roster size
	GameModePlayers GameMode = "players"

	// GameModeTwentyOne is total play with scores over 21 busting
	GameModeTwentyOne GameMode = "twentyone"
)

// PlayerState holds the per-player mutable state within a game
type PlayerState struct {
	// AccountID is the account of the player
	AccountID string

	// Name is the display name of the player
	Name string

	// Score is the player's cumulative score across rounds
	Score int

	// Dice is the ordered history of the player's recorded throw values
	Dice []int

	// RoundWins counts rounds won; only the wins mode reads it
	RoundWins int
}

// RoundResult records the outcome of a single completed round
type RoundResult struct {
	// Round is the 1-based round number
	Round int

	// Scores maps account ID to that round's score
	Scores map[string]int

	// Winners holds the account IDs that tied for the round's maximum
	Winners []string
}

// Game represents one wagering session
type Game struct {
	// ID is the unique identifier for the game, monotonically assigned
	ID string

	// Kind is the dice variant being played
	Kind GameKind

	// Mode determines round and winner resolution
	Mode GameMode

	// ChatID is the chat where the game is being played
	ChatID string

	// CreatorID is the account that opened the lobby
	CreatorID string

	// Bet is the stake per player, fixed at creation
	Bet decimal.Decimal

	// Players is the join-ordered roster
	Players []*PlayerState

	// Status is the current state of the game
	Status GameStatus

	// MaxPlayers bounds the roster size
	MaxPlayers int

	// DicePerTurn is how many dice each player throws per turn
	DicePerTurn int

	// TotalRounds is how many rounds complete the game in fixed-round modes
	TotalRounds int

	// TargetWins is the round-win count that ends a wins-mode game
	TargetWins int

	// CurrentTurnIndex is the roster index of the player currently throwing
	CurrentTurnIndex int

	// CurrentRound is the 1-based round in progress
	CurrentRound int

	// RoundsCompleted counts fully resolved rounds
	RoundsCompleted int

	// RoundResults records each completed round
	RoundResults []RoundResult

	// CreatedAt is when the game was created
	CreatedAt time.Time

	// UpdatedAt is when the game was last updated
	UpdatedAt time.Time
}

// Player returns the roster entry for an account, or nil
func (g *Game) Player(accountID string) *PlayerState {
	for _, p := range g.Players {
		if p.AccountID == accountID {
			return p
		}
	}
	return nil
}

// HasPlayer reports whether an account is already on the roster
func (g *Game) HasPlayer(accountID string) bool {
	return g.Player(accountID) != nil
}

// IsFull reports whether the roster has reached capacity
func (g *Game) IsFull() bool {
	return len(g.Players) >= g.MaxPlayers
}

// Pot is the total amount at stake: bet times roster size
func (g *Game) Pot() decimal.Decimal {
	return g.Bet.Mul(decimal.NewFromInt(int64(len(g.Players))))
}
