package game

import (
	"context"
	"fmt"
	"sort"

	"github.com/rollhouse/rollhouse/internal/models"
	gameRepo "github.com/rollhouse/rollhouse/internal/repositories/game"
	diceService "github.com/rollhouse/rollhouse/internal/services/dice"
)

// Run drives a playing game through its rounds and settles the pot.
// Every turn is persisted as it lands, so the current player and round
// stay observable from the outside while play is in flight.
func (s *service) Run(ctx context.Context, input *RunInput) (*RunOutput, error) {
	if input == nil || input.GameID == "" {
		return nil, ErrGameNotFound
	}

	game, err := s.gameRepo.GetGame(ctx, &gameRepo.GetGameInput{GameID: input.GameID})
	if err != nil {
		return nil, ErrGameNotFound
	}
	if game.Status != models.GameStatusPlaying {
		return nil, ErrInvalidGameState
	}

	if game.Mode == models.GameModeWins {
		game, err = s.runToTargetWins(ctx, game)
	} else {
		game, err = s.runFixedRounds(ctx, game)
	}
	if err != nil {
		return nil, err
	}

	settlement, err := s.settle(ctx, game)
	if err != nil {
		return nil, err
	}

	return &RunOutput{Settlement: settlement}, nil
}

// runFixedRounds plays out a predetermined number of rounds. Classic,
// total, players and twentyone games all take this path.
func (s *service) runFixedRounds(ctx context.Context, game *models.Game) (*models.Game, error) {
	for game.RoundsCompleted < game.TotalRounds {
		updated, _, err := s.playRound(ctx, game)
		if err != nil {
			return nil, err
		}
		game = updated
	}
	return game, nil
}

// runToTargetWins repeats rounds until a player accumulates the target
// number of round wins. A tied round advances nobody.
func (s *service) runToTargetWins(ctx context.Context, game *models.Game) (*models.Game, error) {
	for {
		for _, p := range game.Players {
			if p.RoundWins >= game.TargetWins {
				return game, nil
			}
		}

		updated, winners, err := s.playRound(ctx, game)
		if err != nil {
			return nil, err
		}
		game = updated

		if len(winners) == 1 {
			s.notify(ctx, game.ChatID,
				fmt.Sprintf("Round %d goes to %s", game.RoundsCompleted, nameOf(game, winners[0])))
		} else {
			s.notify(ctx, game.ChatID,
				fmt.Sprintf("Round %d is a tie, nobody advances", game.RoundsCompleted))
		}
	}
}

// playRound gives every player one turn, then records the round result.
// It returns the refreshed game and the accounts that tied for the
// round's maximum score.
func (s *service) playRound(ctx context.Context, game *models.Game) (*models.Game, []string, error) {
	round := game.CurrentRound
	emoji := kindEmoji(game.Kind)
	roundScores := make(map[string]int, len(game.Players))

	for idx, player := range game.Players {
		values := make([]int, 0, game.DicePerTurn)
		turnScore := 0
		for offset := 0; offset < game.DicePerTurn; offset++ {
			out, err := s.diceService.Throw(ctx, &diceService.ThrowInput{
				Channel: game.ChatID,
				Emoji:   emoji,
				Round:   round,
				Offset:  offset,
			})
			if err != nil {
				return nil, nil, err
			}
			values = append(values, out.Value)
			turnScore += out.Value
		}
		roundScores[player.AccountID] = turnScore

		accountID := player.AccountID
		nextTurn := (idx + 1) % len(game.Players)
		updated, err := s.gameRepo.UpdateGame(ctx, &gameRepo.UpdateGameInput{
			GameID: game.ID,
			Mutate: func(g *models.Game) error {
				p := g.Player(accountID)
				if p == nil {
					return ErrInvalidGameState
				}
				p.Dice = append(p.Dice, values...)
				p.Score += turnScore
				g.CurrentTurnIndex = nextTurn
				return nil
			},
		})
		if err != nil {
			return nil, nil, err
		}
		game = updated
	}

	winners := maxScorers(roundScores)
	updated, err := s.gameRepo.UpdateGame(ctx, &gameRepo.UpdateGameInput{
		GameID: game.ID,
		Mutate: func(g *models.Game) error {
			g.RoundResults = append(g.RoundResults, models.RoundResult{
				Round:   round,
				Scores:  roundScores,
				Winners: winners,
			})
			if len(winners) == 1 {
				if p := g.Player(winners[0]); p != nil {
					p.RoundWins++
				}
			}
			g.RoundsCompleted++
			g.CurrentRound++
			g.CurrentTurnIndex = 0
			return nil
		},
	})
	if err != nil {
		return nil, nil, err
	}

	return updated, winners, nil
}

// maxScorers returns the account IDs tied for the highest score
func maxScorers(scores map[string]int) []string {
	best := 0
	first := true
	for _, score := range scores {
		if first || score > best {
			best = score
			first = false
		}
	}

	var winners []string
	for accountID, score := range scores {
		if score == best {
			winners = append(winners, accountID)
		}
	}
	sort.Strings(winners)
	return winners
}

// nameOf resolves an account ID to its roster display name
func nameOf(game *models.Game, accountID string) string {
	if p := game.Player(accountID); p != nil {
		return p.Name
	}
	return accountID
}
