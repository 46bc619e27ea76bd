package messaging

//go:generate mockgen -package=mocks -destination=mocks/mock_notifier.go github.com/rollhouse/rollhouse/internal/services/messaging Notifier

import (
	"context"
)

// Notifier sends best-effort outbound messages. Delivery is
// fire-and-forget: callers log failures and never retry, and a failed
// notification never rolls back the state change it reports.
type Notifier interface {
	// Notify sends a text message to a chat
	Notify(ctx context.Context, input *NotifyInput) error
}
