package dice

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	localdice "github.com/rollhouse/rollhouse/internal/dice"
)

const (
	defaultPaceDelay = 1200 * time.Millisecond
	diceSides        = 6
)

// service implements the Service interface
type service struct {
	identities []string
	provider   Provider
	fallback   localdice.Roller
	paceDelay  time.Duration
	logger     *zap.Logger
}

// New creates a new dice service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if len(cfg.Identities) == 0 {
		return nil, errors.New("at least one throw identity is required")
	}
	if cfg.Provider == nil {
		return nil, errors.New("provider cannot be nil")
	}

	fallback := cfg.Fallback
	if fallback == nil {
		fallback = localdice.New(nil)
	}

	paceDelay := cfg.PaceDelay
	if paceDelay == 0 {
		paceDelay = defaultPaceDelay
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		identities: cfg.Identities,
		provider:   cfg.Provider,
		fallback:   fallback,
		paceDelay:  paceDelay,
		logger:     logger,
	}, nil
}

// Throw produces a dice value in [1,6]. The identity is picked by
// (round + offset) mod pool size so consecutive throws within a turn
// spread across identities. Provider failures are recovered locally
// and never surfaced; a throw must not block game progress.
func (s *service) Throw(ctx context.Context, input *ThrowInput) (*ThrowOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	index := (input.Round + input.Offset) % len(s.identities)
	token := s.identities[index]

	output := &ThrowOutput{}

	value, err := s.provider.RequestThrow(ctx, &RequestThrowInput{
		IdentityToken: token,
		Channel:       input.Channel,
		Emoji:         input.Emoji,
	})
	if err != nil || value < 1 || value > diceSides {
		if err != nil {
			s.logger.Warn("throw provider failed, using local roll",
				zap.Int("identity", index),
				zap.Error(err))
		} else {
			s.logger.Warn("throw provider returned out-of-range value, using local roll",
				zap.Int("identity", index),
				zap.Int("value", value))
		}
		value = s.fallback.Roll(diceSides)
		output.Recovered = true
	}

	output.Value = value
	s.pace(ctx)
	return output, nil
}

// pace enforces the fixed delay between successive throws. It is a
// scheduling point, not a correctness requirement; cancellation skips
// the remaining wait.
func (s *service) pace(ctx context.Context) {
	timer := time.NewTimer(s.paceDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
