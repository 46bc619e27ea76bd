// Package modes resolves a wager command's mode suffix into a
// normalized game configuration.
package modes

import (
	"regexp"
	"strconv"

	"github.com/rollhouse/rollhouse/internal/models"
)

const (
	// MinPlayers and MaxPlayers bound the players-mode roster size
	MinPlayers = 2
	MaxPlayers = 5

	// TwentyOneThreshold is the bust limit in twentyone games
	TwentyOneThreshold = 21
)

// GameConfig is the normalized configuration a mode suffix resolves to
type GameConfig struct {
	// Mode determines round and winner resolution
	Mode models.GameMode

	// MaxPlayers bounds the roster size
	MaxPlayers int

	// DicePerTurn is how many dice each player throws per turn
	DicePerTurn int

	// TargetWins is the round-win count ending a wins-mode game
	TargetWins int

	// TotalRounds is how many rounds complete a fixed-round game
	TotalRounds int
}

// suffixPattern matches a trailing count plus mode letter, e.g. "3x", "5t", "4p"
var suffixPattern = regexp.MustCompile(`^(\d*)([xtp])$`)

// Resolve maps a command's trailing suffix to a game configuration.
// An empty suffix is classic play. A missing count defaults per mode
// (x: 1 win, t: 5 dice, p: 2 players); an out-of-range player count is
// clamped, never rejected. An unparsable suffix returns ok=false.
func Resolve(suffix string) (GameConfig, bool) {
	if suffix == "" {
		return classic(), true
	}

	m := suffixPattern.FindStringSubmatch(suffix)
	if m == nil {
		return GameConfig{}, false
	}

	n := 0
	if m[1] != "" {
		parsed, err := strconv.Atoi(m[1])
		if err != nil {
			return GameConfig{}, false
		}
		n = parsed
	}

	switch m[2] {
	case "x":
		if n == 0 {
			n = 1
		}
		return GameConfig{
			Mode:        models.GameModeWins,
			MaxPlayers:  2,
			DicePerTurn: 1,
			TargetWins:  n,
		}, true
	case "t":
		if n == 0 {
			n = 5
		}
		return GameConfig{
			Mode:        models.GameModeTotal,
			MaxPlayers:  2,
			DicePerTurn: n,
			TargetWins:  1,
			TotalRounds: 1,
		}, true
	case "p":
		if n == 0 {
			n = MinPlayers
		}
		return GameConfig{
			Mode:        models.GameModePlayers,
			MaxPlayers:  clamp(n, MinPlayers, MaxPlayers),
			DicePerTurn: 1,
			TargetWins:  1,
			TotalRounds: 1,
		}, true
	}

	return GameConfig{}, false
}

// TwentyOne is the fixed configuration of the dedicated twentyone command
func TwentyOne() GameConfig {
	return GameConfig{
		Mode:        models.GameModeTwentyOne,
		MaxPlayers:  2,
		DicePerTurn: 5,
		TargetWins:  1,
		TotalRounds: 1,
	}
}

func classic() GameConfig {
	return GameConfig{
		Mode:        models.GameModeClassic,
		MaxPlayers:  2,
		DicePerTurn: 1,
		TargetWins:  1,
		TotalRounds: 1,
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
