package game

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	clockMocks "github.com/rollhouse/rollhouse/internal/common/clock/mocks"
	"github.com/rollhouse/rollhouse/internal/models"
	"github.com/rollhouse/rollhouse/internal/modes"
	gameRepo "github.com/rollhouse/rollhouse/internal/repositories/game"
	gameMocks "github.com/rollhouse/rollhouse/internal/repositories/game/mocks"
	ledgerRepo "github.com/rollhouse/rollhouse/internal/repositories/ledger"
	ledgerMocks "github.com/rollhouse/rollhouse/internal/repositories/ledger/mocks"
	diceService "github.com/rollhouse/rollhouse/internal/services/dice"
	diceMocks "github.com/rollhouse/rollhouse/internal/services/dice/mocks"
	messagingMocks "github.com/rollhouse/rollhouse/internal/services/messaging/mocks"
)

// creditCall records one ledger credit observed during a test
type creditCall struct {
	accountID string
	amount    decimal.Decimal
	kind      models.TransactionKind
}

type GameServiceTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockGameRepo *gameMocks.MockRepository
	mockLedger   *ledgerMocks.MockRepository
	mockDice     *diceMocks.MockService
	mockNotifier *messagingMocks.MockNotifier
	mockClock    *clockMocks.MockClock
	gameService  *service
	ctx          context.Context

	testTime time.Time
	bet      decimal.Decimal

	// game backs the stubbed repository; mutators apply to it directly
	game *models.Game

	// settledGame holds the final record captured at deletion
	settledGame *models.Game

	// startedGames records games handed to the run launcher
	startedGames []string

	// credits records every ledger credit the service issued
	credits []creditCall
}

func (s *GameServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockGameRepo = gameMocks.NewMockRepository(s.mockCtrl)
	s.mockLedger = ledgerMocks.NewMockRepository(s.mockCtrl)
	s.mockDice = diceMocks.NewMockService(s.mockCtrl)
	s.mockNotifier = messagingMocks.NewMockNotifier(s.mockCtrl)
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.ctx = context.Background()

	s.testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.bet = decimal.NewFromInt(50)
	s.game = nil
	s.settledGame = nil
	s.startedGames = nil
	s.credits = nil

	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()

	svc, err := New(&Config{
		GameRepo:    s.mockGameRepo,
		LedgerRepo:  s.mockLedger,
		DiceService: s.mockDice,
		Notifier:    s.mockNotifier,
		Clock:       s.mockClock,
	})
	s.Require().NoError(err)
	s.gameService = svc

	// Keep filled joins synchronous and observable
	s.gameService.startRun = func(gameID string) {
		s.startedGames = append(s.startedGames, gameID)
	}
}

func (s *GameServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// stubGameStore backs GetGame, UpdateGame and DeleteGame with s.game
func (s *GameServiceTestSuite) stubGameStore() {
	s.mockGameRepo.EXPECT().GetGame(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input *gameRepo.GetGameInput) (*models.Game, error) {
			if s.game == nil || s.game.ID != input.GameID {
				return nil, gameRepo.ErrGameNotFound
			}
			return s.game, nil
		}).AnyTimes()

	s.mockGameRepo.EXPECT().UpdateGame(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input *gameRepo.UpdateGameInput) (*models.Game, error) {
			if s.game == nil || s.game.ID != input.GameID {
				return nil, gameRepo.ErrGameNotFound
			}
			if err := input.Mutate(s.game); err != nil {
				return nil, err
			}
			return s.game, nil
		}).AnyTimes()

	s.mockGameRepo.EXPECT().DeleteGame(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input *gameRepo.DeleteGameInput) error {
			if s.game != nil && s.game.ID == input.GameID {
				s.settledGame = s.game
				s.game = nil
			}
			return nil
		}).AnyTimes()
}

// stubCredits accepts and records every credit
func (s *GameServiceTestSuite) stubCredits() {
	s.mockLedger.EXPECT().Credit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input *ledgerRepo.CreditInput) (*ledgerRepo.CreditOutput, error) {
			s.credits = append(s.credits, creditCall{
				accountID: input.AccountID,
				amount:    input.Amount,
				kind:      input.Kind,
			})
			return &ledgerRepo.CreditOutput{NewBalance: input.Amount}, nil
		}).AnyTimes()
}

// stubThrows feeds the given values to successive throws, in order
func (s *GameServiceTestSuite) stubThrows(values ...int) {
	queue := values
	s.mockDice.EXPECT().Throw(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *diceService.ThrowInput) (*diceService.ThrowOutput, error) {
			v := queue[0]
			queue = queue[1:]
			return &diceService.ThrowOutput{Value: v}, nil
		}).Times(len(values))
}

func (s *GameServiceTestSuite) stubNotifications() {
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

// newTestGame builds a two-player classic game in the given status
func (s *GameServiceTestSuite) newTestGame(status models.GameStatus, playerIDs ...string) *models.Game {
	players := make([]*models.PlayerState, 0, len(playerIDs))
	for _, id := range playerIDs {
		players = append(players, &models.PlayerState{AccountID: id, Name: "name-" + id})
	}
	return &models.Game{
		ID:           "7",
		Kind:         models.GameKindCube,
		Mode:         models.GameModeClassic,
		ChatID:       "chat-1",
		CreatorID:    playerIDs[0],
		Bet:          s.bet,
		Players:      players,
		Status:       status,
		MaxPlayers:   2,
		DicePerTurn:  1,
		TotalRounds:  1,
		TargetWins:   1,
		CurrentRound: 1,
		CreatedAt:    s.testTime,
		UpdatedAt:    s.testTime,
	}
}

func (s *GameServiceTestSuite) TestCreateGame() {
	s.mockLedger.EXPECT().GetOrCreateAccount(gomock.Any(), &ledgerRepo.GetOrCreateAccountInput{
		AccountID: "acct-1",
		Username:  "alice",
	}).Return(&models.Account{ID: "acct-1"}, nil)

	s.mockLedger.EXPECT().Debit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input *ledgerRepo.DebitInput) (*ledgerRepo.DebitOutput, error) {
			s.Equal("acct-1", input.AccountID)
			s.True(input.Amount.Equal(s.bet))
			s.Equal(models.TransactionKindGameBet, input.Kind)
			return &ledgerRepo.DebitOutput{}, nil
		})

	s.mockGameRepo.EXPECT().CreateGame(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input *gameRepo.CreateGameInput) (*gameRepo.CreateGameOutput, error) {
			input.Game.ID = "1"
			return &gameRepo.CreateGameOutput{Game: input.Game}, nil
		})

	cfg, ok := modes.Resolve("")
	s.Require().True(ok)

	output, err := s.gameService.CreateGame(s.ctx, &CreateGameInput{
		CreatorID:   "acct-1",
		CreatorName: "alice",
		ChatID:      "chat-1",
		Kind:        models.GameKindCube,
		Mode:        cfg,
		Bet:         s.bet,
	})
	s.Require().NoError(err)

	s.Equal("1", output.Game.ID)
	s.Equal(models.GameStatusWaiting, output.Game.Status)
	s.Len(output.Game.Players, 1)
	s.Equal("acct-1", output.Game.Players[0].AccountID)
	s.Equal(s.testTime, output.Game.CreatedAt)
}

func (s *GameServiceTestSuite) TestCreateGameBelowMinimumBet() {
	cfg, _ := modes.Resolve("")

	_, err := s.gameService.CreateGame(s.ctx, &CreateGameInput{
		CreatorID: "acct-1",
		Kind:      models.GameKindCube,
		Mode:      cfg,
		Bet:       decimal.NewFromInt(9),
	})
	s.Require().ErrorIs(err, ErrInvalidBet)
}

func (s *GameServiceTestSuite) TestCreateGameInsufficientFunds() {
	s.mockLedger.EXPECT().GetOrCreateAccount(gomock.Any(), gomock.Any()).
		Return(&models.Account{ID: "acct-1"}, nil)
	s.mockLedger.EXPECT().Debit(gomock.Any(), gomock.Any()).
		Return(nil, ledgerRepo.ErrInsufficientFunds)

	cfg, _ := modes.Resolve("")

	_, err := s.gameService.CreateGame(s.ctx, &CreateGameInput{
		CreatorID: "acct-1",
		Kind:      models.GameKindCube,
		Mode:      cfg,
		Bet:       s.bet,
	})
	s.Require().ErrorIs(err, ErrInsufficientFunds)
}

func (s *GameServiceTestSuite) TestJoinGameFillsRosterAndStarts() {
	s.game = s.newTestGame(models.GameStatusWaiting, "acct-1")
	s.stubGameStore()

	s.mockLedger.EXPECT().GetOrCreateAccount(gomock.Any(), gomock.Any()).
		Return(&models.Account{ID: "acct-2"}, nil)
	s.mockLedger.EXPECT().Debit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input *ledgerRepo.DebitInput) (*ledgerRepo.DebitOutput, error) {
			s.Equal("acct-2", input.AccountID)
			s.True(input.Amount.Equal(s.bet))
			return &ledgerRepo.DebitOutput{}, nil
		})

	output, err := s.gameService.JoinGame(s.ctx, &JoinGameInput{
		GameID:      "7",
		AccountID:   "acct-2",
		AccountName: "bob",
	})
	s.Require().NoError(err)

	s.True(output.Started)
	s.Equal(models.GameStatusPlaying, output.Game.Status)
	s.Len(output.Game.Players, 2)
	s.Equal([]string{"7"}, s.startedGames)
}

func (s *GameServiceTestSuite) TestJoinGameNotFound() {
	s.stubGameStore()

	_, err := s.gameService.JoinGame(s.ctx, &JoinGameInput{
		GameID:    "missing",
		AccountID: "acct-2",
	})
	s.Require().ErrorIs(err, ErrGameNotFound)
}

func (s *GameServiceTestSuite) TestJoinGameAlreadyJoined() {
	s.game = s.newTestGame(models.GameStatusWaiting, "acct-1")
	s.stubGameStore()

	_, err := s.gameService.JoinGame(s.ctx, &JoinGameInput{
		GameID:    "7",
		AccountID: "acct-1",
	})
	s.Require().ErrorIs(err, ErrAlreadyJoined)
	s.Empty(s.startedGames)
}

func (s *GameServiceTestSuite) TestJoinGameFull() {
	s.game = s.newTestGame(models.GameStatusPlaying, "acct-1", "acct-2")
	s.stubGameStore()

	_, err := s.gameService.JoinGame(s.ctx, &JoinGameInput{
		GameID:    "7",
		AccountID: "acct-3",
	})
	s.Require().ErrorIs(err, ErrGameFull)
}

func (s *GameServiceTestSuite) TestJoinGameRefundsWhenUpdateFails() {
	s.game = s.newTestGame(models.GameStatusWaiting, "acct-1")
	s.stubCredits()

	s.mockGameRepo.EXPECT().GetGame(gomock.Any(), gomock.Any()).Return(s.game, nil)
	s.mockLedger.EXPECT().GetOrCreateAccount(gomock.Any(), gomock.Any()).
		Return(&models.Account{ID: "acct-2"}, nil)
	s.mockLedger.EXPECT().Debit(gomock.Any(), gomock.Any()).
		Return(&ledgerRepo.DebitOutput{}, nil)
	s.mockGameRepo.EXPECT().UpdateGame(gomock.Any(), gomock.Any()).
		Return(nil, gameRepo.ErrTxConflict)

	_, err := s.gameService.JoinGame(s.ctx, &JoinGameInput{
		GameID:    "7",
		AccountID: "acct-2",
	})
	s.Require().Error(err)

	// The held stake came back
	s.Require().Len(s.credits, 1)
	s.Equal("acct-2", s.credits[0].accountID)
	s.True(s.credits[0].amount.Equal(s.bet))
	s.Empty(s.startedGames)
}

func (s *GameServiceTestSuite) TestCancelLastGameRefundsAllPlayers() {
	game := s.newTestGame(models.GameStatusWaiting, "acct-1", "acct-2")
	game.MaxPlayers = 3
	s.stubCredits()

	s.mockGameRepo.EXPECT().LastWaitingByCreator(gomock.Any(), &gameRepo.LastWaitingByCreatorInput{
		CreatorID: "acct-1",
	}).Return(game, nil)
	s.mockGameRepo.EXPECT().DeleteGame(gomock.Any(), &gameRepo.DeleteGameInput{GameID: "7"}).
		Return(nil)

	output, err := s.gameService.CancelLastGame(s.ctx, &CancelLastGameInput{CreatorID: "acct-1"})
	s.Require().NoError(err)

	s.True(output.Cancelled)
	s.Equal("7", output.GameID)
	s.True(output.Refunded.Equal(s.bet.Mul(decimal.NewFromInt(2))))

	s.Require().Len(s.credits, 2)
	for _, c := range s.credits {
		s.True(c.amount.Equal(s.bet))
		s.Equal(models.TransactionKindGameWin, c.kind)
	}
}

func (s *GameServiceTestSuite) TestCancelLastGameNothingWaiting() {
	s.mockGameRepo.EXPECT().LastWaitingByCreator(gomock.Any(), gomock.Any()).
		Return(nil, gameRepo.ErrGameNotFound)

	output, err := s.gameService.CancelLastGame(s.ctx, &CancelLastGameInput{CreatorID: "acct-1"})
	s.Require().NoError(err)
	s.False(output.Cancelled)
}

func (s *GameServiceTestSuite) TestListGamesWaitingFirst() {
	s.mockGameRepo.EXPECT().GetActiveGames(gomock.Any(), gomock.Any()).Return(&gameRepo.GetActiveGamesOutput{
		Games: []*models.Game{
			{ID: "10", Status: models.GameStatusPlaying},
			{ID: "2", Status: models.GameStatusWaiting},
			{ID: "3", Status: models.GameStatusPlaying},
			{ID: "12", Status: models.GameStatusWaiting},
		},
	}, nil)

	output, err := s.gameService.ListGames(s.ctx, &ListGamesInput{})
	s.Require().NoError(err)

	ids := make([]string, 0, len(output.Games))
	for _, g := range output.Games {
		ids = append(ids, g.ID)
	}
	s.Equal([]string{"2", "12", "3", "10"}, ids)
}

func (s *GameServiceTestSuite) TestNewRequiresDependencies() {
	_, err := New(nil)
	s.Require().ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{})
	s.Require().ErrorIs(err, ErrNilGameRepo)

	_, err = New(&Config{GameRepo: s.mockGameRepo})
	s.Require().ErrorIs(err, ErrNilLedgerRepo)
}

func TestGameServiceSuite(t *testing.T) {
	suite.Run(t, new(GameServiceTestSuite))
}
