package dice

import (
	"math/rand"
	"sync"
	"time"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_roller.go github.com/rollhouse/rollhouse/internal/dice Roller

// Roller provides dice rolling functionality
type Roller interface {
	// Roll generates a random roll with the specified number of sides
	Roll(sides int) int
}

// Config for dice roller
type Config struct {
	// Optional seed for testing
	Seed int64
}

// LocalRoller implements Roller using a local PRNG
type LocalRoller struct {
	mu     sync.Mutex
	random *rand.Rand
}

// New creates a new local dice roller
func New(cfg *Config) *LocalRoller {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	source := rand.NewSource(seed)
	random := rand.New(source)

	return &LocalRoller{
		random: random,
	}
}

// Roll generates a random dice roll with the specified number of sides.
// Safe for concurrent use; rand.Rand itself is not.
func (r *LocalRoller) Roll(sides int) int {
	if sides < 1 {
		sides = 6 // Default to 6-sided die
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.random.Intn(sides) + 1
}
