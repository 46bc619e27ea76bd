package dice

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/rollhouse/rollhouse/internal/services/dice Service,Provider

import (
	"context"
)

// Service yields dice values for game turns. A throw rotates through a
// pool of external throw identities and never fails: on any provider
// error the value comes from a local uniform roll instead.
type Service interface {
	// Throw produces a value in [1,6]
	Throw(ctx context.Context, input *ThrowInput) (*ThrowOutput, error)
}

// Provider is the external dice-throwing collaborator
type Provider interface {
	// RequestThrow asks one throw identity to produce a value
	RequestThrow(ctx context.Context, input *RequestThrowInput) (int, error)
}
