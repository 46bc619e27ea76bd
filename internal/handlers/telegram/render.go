package telegram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rollhouse/rollhouse/internal/models"
	ledgerRepo "github.com/rollhouse/rollhouse/internal/repositories/ledger"
	"github.com/rollhouse/rollhouse/internal/services/game"
)

// renderLobby builds the waiting-room announcement for a game
func renderLobby(g *models.Game) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Game #%s: %s, bet %s\n", g.ID, g.Kind, g.Bet.String())
	fmt.Fprintf(&b, "Players %d/%d:\n", len(g.Players), g.MaxPlayers)
	for _, p := range g.Players {
		fmt.Fprintf(&b, "- %s\n", p.Name)
	}
	fmt.Fprintf(&b, "Join with /join %s", g.ID)

	return b.String()
}

// renderBalance builds the balance summary for an account
func renderBalance(account *models.Account) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Balance: %s\n", account.Balance.String())
	fmt.Fprintf(&b, "Wagered: %s, won: %s", account.TotalWagered.String(), account.TotalWon.String())
	if account.TotalReferralIncome.IsPositive() {
		fmt.Fprintf(&b, "\nReferral income: %s", account.TotalReferralIncome.String())
	}

	return b.String()
}

// renderGames builds the live-game listing
func renderGames(games []*models.Game) string {
	if len(games) == 0 {
		return "No live games right now"
	}

	var b strings.Builder
	b.WriteString("Live games:\n")
	for _, g := range games {
		fmt.Fprintf(&b, "#%s %s, bet %s, %d/%d players (%s)\n",
			g.ID, g.Kind, g.Bet.String(), len(g.Players), g.MaxPlayers, g.Status)
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderCancel builds the reply to a cancel command
func renderCancel(output *game.CancelLastGameOutput) string {
	if !output.Cancelled {
		return "No waiting game to cancel"
	}
	return fmt.Sprintf("Game #%s cancelled, %s refunded", output.GameID, output.Refunded.String())
}

// renderError maps service errors to user-facing replies
func renderError(err error) string {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, ledgerRepo.ErrInsufficientFunds):
		return "Not enough balance for that bet"
	case errors.Is(err, game.ErrInvalidBet):
		return "Bet is below the minimum"
	case errors.Is(err, game.ErrGameNotFound):
		return "That game no longer exists"
	case errors.Is(err, game.ErrAlreadyJoined):
		return "You are already in that game"
	case errors.Is(err, game.ErrGameFull):
		return "That game is already full"
	case errors.Is(err, game.ErrAlreadyStarted):
		return "That game has already started"
	default:
		return "Something went wrong, try again"
	}
}
