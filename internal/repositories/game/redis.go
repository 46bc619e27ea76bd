package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rollhouse/rollhouse/internal/common/clock"
	"github.com/rollhouse/rollhouse/internal/models"
)

const (
	// Key prefixes for Redis
	gameKeyPrefix           = "game:"
	gameCounterKey          = "game_counter"
	liveGamesKey            = "live_games"
	creatorWaitingKeyPrefix = "creator_waiting:"

	// Attempts before giving up on an optimistic transaction
	maxTxRetries = 10
)

// Errors returned by the game repository
var (
	ErrGameNotFound = errors.New("game not found")
	ErrTxConflict   = errors.New("transaction conflict, retries exhausted")
)

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	clock  clock.Clock
}

// NewRedis creates a new Redis-backed game repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	clk := cfg.Clock
	if clk == nil {
		clk = &clock.DefaultClock{}
	}

	return &redisRepository{
		client: cfg.RedisClient,
		clock:  clk,
	}, nil
}

func gameKey(gameID string) string {
	return gameKeyPrefix + gameID
}

func creatorWaitingKey(creatorID string) string {
	return creatorWaitingKeyPrefix + creatorID
}

// CreateGame assigns the next sequential ID from a Redis counter and
// persists the game. The counter is the exclusivity boundary for ID
// assignment; ids are monotonically increasing and string-comparable
// by numeric value.
func (r *redisRepository) CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error) {
	if input == nil || input.Game == nil {
		return nil, errors.New("input and game cannot be nil")
	}

	nextID, err := r.client.Incr(ctx, gameCounterKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to assign game ID: %w", err)
	}

	game := input.Game
	game.ID = strconv.FormatInt(nextID, 10)

	now := r.clock.Now()
	game.CreatedAt = now
	game.UpdatedAt = now

	if err := r.SaveGame(ctx, &SaveGameInput{Game: game}); err != nil {
		return nil, err
	}

	return &CreateGameOutput{Game: game}, nil
}

// GetGame retrieves a game by ID from Redis
func (r *redisRepository) GetGame(ctx context.Context, input *GetGameInput) (*models.Game, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.New("input and game ID cannot be empty")
	}

	gameJSON, err := r.client.Get(ctx, gameKey(input.GameID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	var game models.Game
	if err := json.Unmarshal([]byte(gameJSON), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &game, nil
}

// SaveGame persists a game and maintains its indexes
func (r *redisRepository) SaveGame(ctx context.Context, input *SaveGameInput) error {
	if input == nil || input.Game == nil {
		return errors.New("input and game cannot be nil")
	}

	gameJSON, err := json.Marshal(input.Game)
	if err != nil {
		return fmt.Errorf("failed to marshal game: %w", err)
	}

	pipe := r.client.Pipeline()
	r.queueSave(ctx, pipe, input.Game, gameJSON)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}

	return nil
}

// queueSave adds the record write and index maintenance to a pipeline
func (r *redisRepository) queueSave(ctx context.Context, pipe redis.Pipeliner, game *models.Game, gameJSON []byte) {
	pipe.Set(ctx, gameKey(game.ID), gameJSON, 0)
	pipe.SAdd(ctx, liveGamesKey, game.ID)

	// The creator-waiting index serves the cancel-last-game lookup;
	// score by numeric ID so the newest lobby sorts last
	score, _ := strconv.ParseFloat(game.ID, 64)
	if game.Status == models.GameStatusWaiting {
		pipe.ZAdd(ctx, creatorWaitingKey(game.CreatorID), redis.Z{
			Score:  score,
			Member: game.ID,
		})
	} else {
		pipe.ZRem(ctx, creatorWaitingKey(game.CreatorID), game.ID)
	}
}

// UpdateGame applies a mutator to a game under an optimistic WATCH
// transaction, so two concurrent read-modify-writes of the same game
// can never lose an update
func (r *redisRepository) UpdateGame(ctx context.Context, input *UpdateGameInput) (*models.Game, error) {
	if input == nil || input.GameID == "" || input.Mutate == nil {
		return nil, errors.New("input, game ID and mutator cannot be empty")
	}

	key := gameKey(input.GameID)
	var updated *models.Game

	txf := func(tx *redis.Tx) error {
		gameJSON, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrGameNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get game: %w", err)
		}

		var game models.Game
		if err := json.Unmarshal([]byte(gameJSON), &game); err != nil {
			return fmt.Errorf("failed to unmarshal game: %w", err)
		}

		if err := input.Mutate(&game); err != nil {
			return err
		}
		game.UpdatedAt = r.clock.Now()

		updatedJSON, err := json.Marshal(&game)
		if err != nil {
			return fmt.Errorf("failed to marshal game: %w", err)
		}

		updated = &game
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			r.queueSave(ctx, pipe, &game, updatedJSON)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			if err != nil {
				return nil, err
			}
			return updated, nil
		}
	}
	return nil, ErrTxConflict
}

// DeleteGame removes a game and its index entries
func (r *redisRepository) DeleteGame(ctx context.Context, input *DeleteGameInput) error {
	if input == nil || input.GameID == "" {
		return errors.New("input and game ID cannot be empty")
	}

	// Read first to find the creator index entry
	game, err := r.GetGame(ctx, &GetGameInput{GameID: input.GameID})
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, gameKey(input.GameID))
	pipe.SRem(ctx, liveGamesKey, input.GameID)
	pipe.ZRem(ctx, creatorWaitingKey(game.CreatorID), input.GameID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}

// LastWaitingByCreator retrieves the creator's most recent lobby still
// waiting for players
func (r *redisRepository) LastWaitingByCreator(ctx context.Context, input *LastWaitingByCreatorInput) (*models.Game, error) {
	if input == nil || input.CreatorID == "" {
		return nil, errors.New("input and creator ID cannot be empty")
	}

	gameIDs, err := r.client.ZRevRange(ctx, creatorWaitingKey(input.CreatorID), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get waiting games: %w", err)
	}

	if len(gameIDs) == 0 {
		return nil, ErrGameNotFound
	}

	return r.GetGame(ctx, &GetGameInput{GameID: gameIDs[0]})
}

// GetActiveGames retrieves all live games from Redis
func (r *redisRepository) GetActiveGames(ctx context.Context, input *GetActiveGamesInput) (*GetActiveGamesOutput, error) {
	gameIDs, err := r.client.SMembers(ctx, liveGamesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get live game IDs: %w", err)
	}

	games := make([]*models.Game, 0, len(gameIDs))
	for _, gameID := range gameIDs {
		game, err := r.GetGame(ctx, &GetGameInput{GameID: gameID})
		if err != nil {
			// Settled between listing and fetching
			if errors.Is(err, ErrGameNotFound) {
				continue
			}
			return nil, err
		}
		games = append(games, game)
	}

	return &GetActiveGamesOutput{Games: games}, nil
}
