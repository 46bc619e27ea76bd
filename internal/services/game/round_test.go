package game

import (
	"github.com/shopspring/decimal"

	"github.com/rollhouse/rollhouse/internal/models"
)

func (s *GameServiceTestSuite) TestRunClassicSingleWinnerTakesPot() {
	s.game = s.newTestGame(models.GameStatusPlaying, "acct-1", "acct-2")
	s.stubGameStore()
	s.stubCredits()
	s.stubNotifications()
	s.stubThrows(5, 3)

	output, err := s.gameService.Run(s.ctx, &RunInput{GameID: "7"})
	s.Require().NoError(err)

	settlement := output.Settlement
	s.Equal([]string{"acct-1"}, settlement.Winners)
	s.False(settlement.Refunded)
	s.True(settlement.Pot.Equal(s.bet.Mul(decimal.NewFromInt(2))))
	s.Equal(5, settlement.Scores["acct-1"])
	s.Equal(3, settlement.Scores["acct-2"])

	s.Require().Len(s.credits, 1)
	s.Equal("acct-1", s.credits[0].accountID)
	s.True(s.credits[0].amount.Equal(settlement.Pot))
	s.Equal(models.TransactionKindGameWin, s.credits[0].kind)

	// Settled games leave the store
	s.Nil(s.game)
}

func (s *GameServiceTestSuite) TestRunClassicTieRefundsEveryBet() {
	s.game = s.newTestGame(models.GameStatusPlaying, "acct-1", "acct-2")
	s.stubGameStore()
	s.stubCredits()
	s.stubNotifications()
	s.stubThrows(4, 4)

	output, err := s.gameService.Run(s.ctx, &RunInput{GameID: "7"})
	s.Require().NoError(err)

	s.True(output.Settlement.Refunded)
	s.Empty(output.Settlement.Winners)

	// Each player gets exactly their own bet back
	s.Require().Len(s.credits, 2)
	total := decimal.Zero
	for _, c := range s.credits {
		s.True(c.amount.Equal(s.bet))
		total = total.Add(c.amount)
	}
	s.True(total.Equal(output.Settlement.Pot))
}

func (s *GameServiceTestSuite) TestRunTotalModeSumsDicePerTurn() {
	s.game = s.newTestGame(models.GameStatusPlaying, "acct-1", "acct-2")
	s.game.Mode = models.GameModeTotal
	s.game.DicePerTurn = 2
	s.stubGameStore()
	s.stubCredits()
	s.stubNotifications()
	s.stubThrows(5, 3, 2, 2) // acct-1: 8, acct-2: 4

	output, err := s.gameService.Run(s.ctx, &RunInput{GameID: "7"})
	s.Require().NoError(err)

	s.Equal([]string{"acct-1"}, output.Settlement.Winners)
	s.Equal(8, output.Settlement.Scores["acct-1"])
	s.Equal(4, output.Settlement.Scores["acct-2"])
}

func (s *GameServiceTestSuite) TestRunWinsModeTiedRoundAdvancesNobody() {
	s.game = s.newTestGame(models.GameStatusPlaying, "acct-1", "acct-2")
	s.game.Mode = models.GameModeWins
	s.game.TargetWins = 1
	s.game.TotalRounds = 0
	s.stubGameStore()
	s.stubCredits()
	s.stubNotifications()
	// Round 1 ties, round 2 decides
	s.stubThrows(3, 3, 2, 5)

	output, err := s.gameService.Run(s.ctx, &RunInput{GameID: "7"})
	s.Require().NoError(err)

	s.Equal([]string{"acct-2"}, output.Settlement.Winners)
	s.False(output.Settlement.Refunded)

	s.Require().NotNil(s.settledGame)
	s.Equal(2, s.settledGame.RoundsCompleted)
	s.Require().Len(s.settledGame.RoundResults, 2)
	s.Len(s.settledGame.RoundResults[0].Winners, 2)
	s.Equal([]string{"acct-2"}, s.settledGame.RoundResults[1].Winners)
	s.Equal(1, s.settledGame.Player("acct-2").RoundWins)
	s.Equal(0, s.settledGame.Player("acct-1").RoundWins)
}

func (s *GameServiceTestSuite) TestRunWinsModeSettlesOnSecondRoundWin() {
	s.game = s.newTestGame(models.GameStatusPlaying, "acct-1", "acct-2")
	s.game.Mode = models.GameModeWins
	s.game.TargetWins = 2
	s.game.TotalRounds = 0
	s.stubGameStore()
	s.stubCredits()
	s.stubNotifications()
	// acct-1 takes round 1, acct-2 takes round 2, acct-1 takes round 3
	// for the second win that closes the game
	s.stubThrows(5, 3, 2, 6, 6, 1)

	output, err := s.gameService.Run(s.ctx, &RunInput{GameID: "7"})
	s.Require().NoError(err)

	s.Equal([]string{"acct-1"}, output.Settlement.Winners)
	s.False(output.Settlement.Refunded)

	// One round win is not enough; the pot moved exactly once, after
	// the third round
	s.Require().Len(s.credits, 1)
	s.Equal("acct-1", s.credits[0].accountID)
	s.True(s.credits[0].amount.Equal(output.Settlement.Pot))

	s.Require().NotNil(s.settledGame)
	s.Equal(3, s.settledGame.RoundsCompleted)
	s.Require().Len(s.settledGame.RoundResults, 3)
	s.Equal(2, s.settledGame.Player("acct-1").RoundWins)
	s.Equal(1, s.settledGame.Player("acct-2").RoundWins)
}

func (s *GameServiceTestSuite) TestRunTwentyOneBustLoses() {
	s.game = s.newTestGame(models.GameStatusPlaying, "acct-1", "acct-2")
	s.game.Kind = models.GameKindTwentyOne
	s.game.Mode = models.GameModeTwentyOne
	s.game.DicePerTurn = 5
	s.stubGameStore()
	s.stubCredits()
	s.stubNotifications()
	// acct-1 busts on 23, acct-2 stays at 18
	s.stubThrows(5, 5, 5, 5, 3, 4, 4, 4, 3, 3)

	output, err := s.gameService.Run(s.ctx, &RunInput{GameID: "7"})
	s.Require().NoError(err)

	s.Equal([]string{"acct-2"}, output.Settlement.Winners)
	s.Equal(23, output.Settlement.Scores["acct-1"])
	s.Equal(18, output.Settlement.Scores["acct-2"])

	s.Require().Len(s.credits, 1)
	s.Equal("acct-2", s.credits[0].accountID)
	s.True(s.credits[0].amount.Equal(output.Settlement.Pot))
}

func (s *GameServiceTestSuite) TestRunTwentyOneAllBustRefunds() {
	s.game = s.newTestGame(models.GameStatusPlaying, "acct-1", "acct-2")
	s.game.Kind = models.GameKindTwentyOne
	s.game.Mode = models.GameModeTwentyOne
	s.game.DicePerTurn = 5
	s.stubGameStore()
	s.stubCredits()
	s.stubNotifications()
	s.stubThrows(5, 5, 5, 5, 3, 6, 6, 6, 3, 3) // 23 and 24, both bust

	output, err := s.gameService.Run(s.ctx, &RunInput{GameID: "7"})
	s.Require().NoError(err)

	s.True(output.Settlement.Refunded)
	s.Empty(output.Settlement.Winners)
	s.Require().Len(s.credits, 2)
	for _, c := range s.credits {
		s.True(c.amount.Equal(s.bet))
	}
}

func (s *GameServiceTestSuite) TestRunRejectsWaitingGame() {
	s.game = s.newTestGame(models.GameStatusWaiting, "acct-1", "acct-2")
	s.stubGameStore()

	_, err := s.gameService.Run(s.ctx, &RunInput{GameID: "7"})
	s.Require().ErrorIs(err, ErrInvalidGameState)
}
