package dice

import (
	"time"

	"go.uber.org/zap"

	localdice "github.com/rollhouse/rollhouse/internal/dice"
)

// Config holds configuration for the dice service
type Config struct {
	// Identities is the fixed pool of throw-identity tokens
	Identities []string

	// Provider performs the external throws
	Provider Provider

	// Fallback produces local rolls when the provider fails
	Fallback localdice.Roller

	// PaceDelay is the enforced pause after each throw, spreading
	// calls under external rate limits; defaults to 1.2s
	PaceDelay time.Duration

	// Logger for recovered provider failures; defaults to a nop logger
	Logger *zap.Logger
}

// ThrowInput contains parameters for one dice throw
type ThrowInput struct {
	// Channel is where the external throw should land
	Channel string

	// Emoji selects the dice animation of the variant being played
	Emoji string

	// Round is the current round number, part of the rotation index
	Round int

	// Offset distinguishes successive throws within a turn, so one
	// turn spreads across identities
	Offset int
}

// ThrowOutput contains the result of a throw
type ThrowOutput struct {
	// Value is the dice value in [1,6]
	Value int

	// Recovered indicates the value came from the local fallback
	Recovered bool
}

// RequestThrowInput contains parameters for an external throw
type RequestThrowInput struct {
	// IdentityToken authenticates the throw identity to use
	IdentityToken string

	// Channel is where the throw should land
	Channel string

	// Emoji selects the dice animation
	Emoji string
}
