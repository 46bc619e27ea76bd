package game

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/rollhouse/rollhouse/internal/models"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	repo   Repository
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) newGame(creatorID string) *models.Game {
	return &models.Game{
		Kind:        models.GameKindCube,
		Mode:        models.GameModeClassic,
		ChatID:      "chat-1",
		CreatorID:   creatorID,
		Bet:         decimal.NewFromInt(50),
		Status:      models.GameStatusWaiting,
		MaxPlayers:  2,
		DicePerTurn: 1,
		TotalRounds: 1,
		TargetWins:  1,
		CurrentRound: 1,
		Players: []*models.PlayerState{
			{AccountID: creatorID, Name: creatorID},
		},
	}
}

func (s *RedisRepositoryTestSuite) TestCreateGameAssignsSequentialIDs() {
	first, err := s.repo.CreateGame(context.Background(), &CreateGameInput{Game: s.newGame("alice")})
	s.Require().NoError(err)
	s.Equal("1", first.Game.ID)

	second, err := s.repo.CreateGame(context.Background(), &CreateGameInput{Game: s.newGame("bob")})
	s.Require().NoError(err)
	s.Equal("2", second.Game.ID)
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetGame() {
	out, err := s.repo.CreateGame(context.Background(), &CreateGameInput{Game: s.newGame("alice")})
	s.Require().NoError(err)

	retrieved, err := s.repo.GetGame(context.Background(), &GetGameInput{GameID: out.Game.ID})
	s.Require().NoError(err)
	s.Equal(models.GameKindCube, retrieved.Kind)
	s.Equal(models.GameStatusWaiting, retrieved.Status)
	s.True(retrieved.Bet.Equal(decimal.NewFromInt(50)))
	s.Require().Len(retrieved.Players, 1)
	s.Equal("alice", retrieved.Players[0].AccountID)
}

func (s *RedisRepositoryTestSuite) TestGetGameNotFound() {
	_, err := s.repo.GetGame(context.Background(), &GetGameInput{GameID: "999"})
	s.Require().ErrorIs(err, ErrGameNotFound)
}

func (s *RedisRepositoryTestSuite) TestUpdateGameAppliesMutator() {
	out, err := s.repo.CreateGame(context.Background(), &CreateGameInput{Game: s.newGame("alice")})
	s.Require().NoError(err)

	updated, err := s.repo.UpdateGame(context.Background(), &UpdateGameInput{
		GameID: out.Game.ID,
		Mutate: func(game *models.Game) error {
			game.Players = append(game.Players, &models.PlayerState{AccountID: "bob", Name: "bob"})
			game.Status = models.GameStatusPlaying
			return nil
		},
	})
	s.Require().NoError(err)
	s.Len(updated.Players, 2)
	s.Equal(models.GameStatusPlaying, updated.Status)

	retrieved, err := s.repo.GetGame(context.Background(), &GetGameInput{GameID: out.Game.ID})
	s.Require().NoError(err)
	s.Len(retrieved.Players, 2)
}

func (s *RedisRepositoryTestSuite) TestUpdateGameMutatorErrorWritesNothing() {
	out, err := s.repo.CreateGame(context.Background(), &CreateGameInput{Game: s.newGame("alice")})
	s.Require().NoError(err)

	wantErr := context.Canceled
	_, err = s.repo.UpdateGame(context.Background(), &UpdateGameInput{
		GameID: out.Game.ID,
		Mutate: func(game *models.Game) error {
			game.Status = models.GameStatusPlaying
			return wantErr
		},
	})
	s.Require().ErrorIs(err, wantErr)

	retrieved, err := s.repo.GetGame(context.Background(), &GetGameInput{GameID: out.Game.ID})
	s.Require().NoError(err)
	s.Equal(models.GameStatusWaiting, retrieved.Status)
}

func (s *RedisRepositoryTestSuite) TestConcurrentUpdatesLoseNoWrites() {
	out, err := s.repo.CreateGame(context.Background(), &CreateGameInput{Game: s.newGame("alice")})
	s.Require().NoError(err)

	const writers = 8
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := s.repo.UpdateGame(context.Background(), &UpdateGameInput{
				GameID: out.Game.ID,
				Mutate: func(game *models.Game) error {
					game.RoundsCompleted++
					return nil
				},
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	retrieved, err := s.repo.GetGame(context.Background(), &GetGameInput{GameID: out.Game.ID})
	s.Require().NoError(err)
	s.Equal(writers, retrieved.RoundsCompleted)
}

func (s *RedisRepositoryTestSuite) TestDeleteGame() {
	out, err := s.repo.CreateGame(context.Background(), &CreateGameInput{Game: s.newGame("alice")})
	s.Require().NoError(err)

	err = s.repo.DeleteGame(context.Background(), &DeleteGameInput{GameID: out.Game.ID})
	s.Require().NoError(err)

	_, err = s.repo.GetGame(context.Background(), &GetGameInput{GameID: out.Game.ID})
	s.Require().ErrorIs(err, ErrGameNotFound)

	// Index entries are gone too
	_, err = s.repo.LastWaitingByCreator(context.Background(), &LastWaitingByCreatorInput{CreatorID: "alice"})
	s.Require().ErrorIs(err, ErrGameNotFound)

	live, err := s.repo.GetActiveGames(context.Background(), &GetActiveGamesInput{})
	s.Require().NoError(err)
	s.Len(live.Games, 0)
}

func (s *RedisRepositoryTestSuite) TestLastWaitingByCreator() {
	first, err := s.repo.CreateGame(context.Background(), &CreateGameInput{Game: s.newGame("alice")})
	s.Require().NoError(err)

	second, err := s.repo.CreateGame(context.Background(), &CreateGameInput{Game: s.newGame("alice")})
	s.Require().NoError(err)

	// Another creator's lobby does not interfere
	_, err = s.repo.CreateGame(context.Background(), &CreateGameInput{Game: s.newGame("bob")})
	s.Require().NoError(err)

	last, err := s.repo.LastWaitingByCreator(context.Background(), &LastWaitingByCreatorInput{CreatorID: "alice"})
	s.Require().NoError(err)
	s.Equal(second.Game.ID, last.ID)

	// A started game drops out of the waiting index
	_, err = s.repo.UpdateGame(context.Background(), &UpdateGameInput{
		GameID: second.Game.ID,
		Mutate: func(game *models.Game) error {
			game.Status = models.GameStatusPlaying
			return nil
		},
	})
	s.Require().NoError(err)

	last, err = s.repo.LastWaitingByCreator(context.Background(), &LastWaitingByCreatorInput{CreatorID: "alice"})
	s.Require().NoError(err)
	s.Equal(first.Game.ID, last.ID)
}

func (s *RedisRepositoryTestSuite) TestGetActiveGames() {
	_, err := s.repo.CreateGame(context.Background(), &CreateGameInput{Game: s.newGame("alice")})
	s.Require().NoError(err)
	_, err = s.repo.CreateGame(context.Background(), &CreateGameInput{Game: s.newGame("bob")})
	s.Require().NoError(err)

	live, err := s.repo.GetActiveGames(context.Background(), &GetActiveGamesInput{})
	s.Require().NoError(err)
	s.Len(live.Games, 2)
}
