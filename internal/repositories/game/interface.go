package game

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/rollhouse/rollhouse/internal/repositories/game Repository

import (
	"context"

	"github.com/rollhouse/rollhouse/internal/models"
)

// Repository defines the interface for game persistence. A game is
// visible here only between creation and settlement.
type Repository interface {
	// CreateGame assigns the next sequential ID and persists a new game
	CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error)

	// GetGame retrieves a game by ID
	GetGame(ctx context.Context, input *GetGameInput) (*models.Game, error)

	// SaveGame persists a whole game record
	SaveGame(ctx context.Context, input *SaveGameInput) error

	// UpdateGame applies a mutator to a game as one atomic
	// read-modify-write; concurrent updates never lose writes
	UpdateGame(ctx context.Context, input *UpdateGameInput) (*models.Game, error)

	// DeleteGame removes a game
	DeleteGame(ctx context.Context, input *DeleteGameInput) error

	// LastWaitingByCreator retrieves the most recently created game
	// still waiting for players that was opened by the given account
	LastWaitingByCreator(ctx context.Context, input *LastWaitingByCreatorInput) (*models.Game, error)

	// GetActiveGames retrieves all live games
	GetActiveGames(ctx context.Context, input *GetActiveGamesInput) (*GetActiveGamesOutput, error)
}
