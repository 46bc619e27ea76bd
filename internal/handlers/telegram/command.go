package telegram

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rollhouse/rollhouse/internal/models"
	"github.com/rollhouse/rollhouse/internal/modes"
)

// Action identifies what a parsed command asks for
type Action string

const (
	ActionCreate  Action = "create"
	ActionJoin    Action = "join"
	ActionBalance Action = "balance"
	ActionCancel  Action = "cancel"
	ActionGift    Action = "gift"
	ActionGames   Action = "games"
)

// Command is a parsed chat command
type Command struct {
	Action Action

	// Kind and Mode apply to create commands
	Kind models.GameKind
	Mode modes.GameConfig

	// Bet applies to create commands
	Bet decimal.Decimal

	// GameID applies to join commands
	GameID string

	// TargetID and Amount apply to gift commands
	TargetID string
	Amount   decimal.Decimal
}

// wagerPattern matches a create command: a kind word, an optional mode
// suffix, an optional @botname mention, and the bet
var wagerPattern = regexp.MustCompile(`^/(cub|dart|basket|bowl|foot)(\d*[a-z]?)(?:@\w+)?\s+(\d+(?:\.\d+)?)$`)

// twentyOnePattern matches the fixed twentyone command
var twentyOnePattern = regexp.MustCompile(`^/21cub(?:@\w+)?\s+(\d+(?:\.\d+)?)$`)

// commandKinds maps command words to game kinds
var commandKinds = map[string]models.GameKind{
	"cub":    models.GameKindCube,
	"dart":   models.GameKindDart,
	"basket": models.GameKindBasketball,
	"bowl":   models.GameKindBowling,
	"foot":   models.GameKindFootball,
}

// ParseCommand parses a chat message into a command. ok is false when
// the text is not a recognized command; unrecognized text is simply
// ignored by the bot, never answered with an error.
func ParseCommand(text string) (*Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return nil, false
	}

	if m := wagerPattern.FindStringSubmatch(text); m != nil {
		kind := commandKinds[m[1]]
		cfg, ok := modes.Resolve(m[2])
		if !ok {
			return nil, false
		}
		bet, err := decimal.NewFromString(m[3])
		if err != nil {
			return nil, false
		}
		return &Command{Action: ActionCreate, Kind: kind, Mode: cfg, Bet: bet}, true
	}

	if m := twentyOnePattern.FindStringSubmatch(text); m != nil {
		bet, err := decimal.NewFromString(m[1])
		if err != nil {
			return nil, false
		}
		return &Command{
			Action: ActionCreate,
			Kind:   models.GameKindTwentyOne,
			Mode:   modes.TwentyOne(),
			Bet:    bet,
		}, true
	}

	fields := strings.Fields(text)
	word := strings.SplitN(fields[0], "@", 2)[0]

	switch word {
	case "/join":
		if len(fields) != 2 {
			return nil, false
		}
		return &Command{Action: ActionJoin, GameID: fields[1]}, true

	case "/bal":
		return &Command{Action: ActionBalance}, true

	case "/del":
		return &Command{Action: ActionCancel}, true

	case "/games":
		return &Command{Action: ActionGames}, true

	case "/gift":
		if len(fields) != 3 {
			return nil, false
		}
		amount, err := decimal.NewFromString(fields[2])
		if err != nil {
			return nil, false
		}
		return &Command{Action: ActionGift, TargetID: fields[1], Amount: amount}, true
	}

	return nil, false
}

// ParseJoinCallback parses an inline-button callback payload
func ParseJoinCallback(data string) (gameID string, ok bool) {
	const prefix = "join:"
	if !strings.HasPrefix(data, prefix) {
		return "", false
	}
	gameID = data[len(prefix):]
	return gameID, gameID != ""
}
