package game

import (
	"github.com/redis/go-redis/v9"

	"github.com/rollhouse/rollhouse/internal/common/clock"
	"github.com/rollhouse/rollhouse/internal/models"
)

// Config holds configuration for the Redis game repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// Clock provides timestamps; defaults to the system clock
	Clock clock.Clock
}

// CreateGameInput contains parameters for creating a new game
type CreateGameInput struct {
	// Game is the record to persist; its ID is assigned by the repository
	Game *models.Game
}

// CreateGameOutput contains the result of creating a game
type CreateGameOutput struct {
	// Game is the persisted record with its assigned ID
	Game *models.Game
}

// GetGameInput contains parameters for retrieving a game
type GetGameInput struct {
	// GameID is the game to retrieve
	GameID string
}

// SaveGameInput contains parameters for persisting a game
type SaveGameInput struct {
	// Game is the record to persist
	Game *models.Game
}

// UpdateGameInput contains parameters for atomically mutating a game
type UpdateGameInput struct {
	// GameID is the game to mutate
	GameID string

	// Mutate is applied to the freshly read record before it is
	// written back; returning an error aborts without writing
	Mutate func(game *models.Game) error
}

// DeleteGameInput contains parameters for removing a game
type DeleteGameInput struct {
	// GameID is the game to remove
	GameID string
}

// LastWaitingByCreatorInput contains parameters for the cancel lookup
type LastWaitingByCreatorInput struct {
	// CreatorID is the account that opened the lobby
	CreatorID string
}

// GetActiveGamesInput contains parameters for listing live games
type GetActiveGamesInput struct{}

// GetActiveGamesOutput contains all live games
type GetActiveGamesOutput struct {
	// Games are the live records, unordered
	Games []*models.Game
}
