package game

// GameError is a custom error type for game-related errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrGameNotFound      GameError = "game not found"
	ErrInvalidBet        GameError = "bet is below the minimum"
	ErrInsufficientFunds GameError = "insufficient funds"
	ErrAlreadyJoined     GameError = "player already in game"
	ErrGameFull          GameError = "game is at maximum capacity"
	ErrAlreadyStarted    GameError = "game has already started"
	ErrInvalidGameState  GameError = "invalid game state"
	ErrNilConfig         GameError = "config cannot be nil"
	ErrNilGameRepo       GameError = "game repository cannot be nil"
	ErrNilLedgerRepo     GameError = "ledger repository cannot be nil"
	ErrNilDiceService    GameError = "dice service cannot be nil"
	ErrNilNotifier       GameError = "notifier cannot be nil"
	ErrNilClock          GameError = "clock cannot be nil"
)
