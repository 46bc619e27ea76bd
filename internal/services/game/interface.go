package game

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/rollhouse/rollhouse/internal/services/game Service

import (
	"context"
)

// Service orchestrates the lifecycle of wagering dice games: lobby
// creation, joins, cancellation, and driving a full game from first
// throw to payout. Bets are debited up front, so money is only ever
// held by the ledger or by a live game's pot, never both.
type Service interface {
	// CreateGame debits the creator's bet and opens a waiting lobby
	CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error)

	// JoinGame debits the joiner's bet and adds them to the roster;
	// filling the roster starts play
	JoinGame(ctx context.Context, input *JoinGameInput) (*JoinGameOutput, error)

	// CancelLastGame deletes the creator's most recent waiting lobby
	// and refunds every joined player
	CancelLastGame(ctx context.Context, input *CancelLastGameInput) (*CancelLastGameOutput, error)

	// Run drives a playing game through its rounds to settlement
	Run(ctx context.Context, input *RunInput) (*RunOutput, error)

	// ListGames returns all live games, waiting lobbies first
	ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error)
}
