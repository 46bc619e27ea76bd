package game

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rollhouse/rollhouse/internal/models"
	"github.com/rollhouse/rollhouse/internal/modes"
	gameRepo "github.com/rollhouse/rollhouse/internal/repositories/game"
	ledgerRepo "github.com/rollhouse/rollhouse/internal/repositories/ledger"
)

// settle pays out a finished game and removes its record. A single
// winner takes the whole pot; anything else hands every player their
// own bet back, so the pot is always conserved exactly.
func (s *service) settle(ctx context.Context, game *models.Game) (*Settlement, error) {
	winners := s.decideWinners(game)

	settlement := &Settlement{
		GameID: game.ID,
		Pot:    game.Pot(),
		Scores: make(map[string]int, len(game.Players)),
	}
	for _, p := range game.Players {
		settlement.Scores[p.AccountID] = p.Score
	}

	if len(winners) == 1 {
		settlement.Winners = winners
		_, err := s.ledgerRepo.Credit(ctx, &ledgerRepo.CreditInput{
			AccountID: winners[0],
			Amount:    settlement.Pot,
			Kind:      models.TransactionKindGameWin,
			Metadata:  map[string]string{"game_id": game.ID},
		})
		if err != nil {
			return nil, err
		}
	} else {
		settlement.Refunded = true
		for _, p := range game.Players {
			s.refund(ctx, p.AccountID, game.Bet, game.ID)
		}
	}

	s.notify(ctx, game.ChatID, renderSettlement(game, settlement))

	if err := s.gameRepo.DeleteGame(ctx, &gameRepo.DeleteGameInput{GameID: game.ID}); err != nil {
		return nil, err
	}

	return settlement, nil
}

// decideWinners picks the pot winners for a finished game. Wins mode
// goes by accumulated round wins; twentyone drops busted scores first;
// everything else compares cumulative scores directly.
func (s *service) decideWinners(game *models.Game) []string {
	if game.Mode == models.GameModeWins {
		var winners []string
		for _, p := range game.Players {
			if p.RoundWins >= game.TargetWins {
				winners = append(winners, p.AccountID)
			}
		}
		sort.Strings(winners)
		return winners
	}

	scores := make(map[string]int, len(game.Players))
	for _, p := range game.Players {
		if game.Mode == models.GameModeTwentyOne && p.Score > modes.TwentyOneThreshold {
			continue
		}
		scores[p.AccountID] = p.Score
	}
	if len(scores) == 0 {
		// Everyone busted
		return nil
	}
	return maxScorers(scores)
}

// renderSettlement builds the chat announcement for a finished game
func renderSettlement(game *models.Game, settlement *Settlement) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Game #%s finished\n", game.ID)
	for _, p := range game.Players {
		if game.Mode == models.GameModeWins {
			fmt.Fprintf(&b, "%s: %d round wins\n", p.Name, p.RoundWins)
		} else if game.Mode == models.GameModeTwentyOne && p.Score > modes.TwentyOneThreshold {
			fmt.Fprintf(&b, "%s: %d (bust)\n", p.Name, p.Score)
		} else {
			fmt.Fprintf(&b, "%s: %d\n", p.Name, p.Score)
		}
	}

	if settlement.Refunded {
		b.WriteString("No winner, all bets refunded")
	} else {
		fmt.Fprintf(&b, "%s takes the pot of %s",
			nameOf(game, settlement.Winners[0]), settlement.Pot.String())
	}

	return b.String()
}
