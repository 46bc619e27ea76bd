package ledger

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/rollhouse/rollhouse/internal/repositories/ledger Repository

import (
	"context"

	"github.com/rollhouse/rollhouse/internal/models"
)

// Repository defines the interface for account balances and the
// append-only transaction log. It is the only component allowed to
// mutate accounts; every successful mutation appends exactly one
// transaction (a transfer appends two).
type Repository interface {
	// GetAccount retrieves an account by ID
	GetAccount(ctx context.Context, input *GetAccountInput) (*models.Account, error)

	// GetOrCreateAccount retrieves an account, creating a zero-balance
	// record on first touch
	GetOrCreateAccount(ctx context.Context, input *GetOrCreateAccountInput) (*models.Account, error)

	// Debit removes funds from an account; fails without mutation if the
	// balance is insufficient
	Debit(ctx context.Context, input *DebitInput) (*DebitOutput, error)

	// Credit adds funds to an account; deposit credits cascade a one-level
	// referral bonus to the account's referrer
	Credit(ctx context.Context, input *CreditInput) (*CreditOutput, error)

	// Transfer moves funds between two accounts as one atomic unit
	Transfer(ctx context.Context, input *TransferInput) (*TransferOutput, error)

	// SetReferrer records an account's referrer; immutable after first set
	SetReferrer(ctx context.Context, input *SetReferrerInput) error

	// ListTransactions returns an account's newest log entries
	ListTransactions(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error)

	// LastMatching returns the newest log entry for an account matching
	// a kind and amount, used to locate a pending operation for reversal
	LastMatching(ctx context.Context, input *LastMatchingInput) (*models.Transaction, error)
}
