package ledger

import (
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rollhouse/rollhouse/internal/common/clock"
	"github.com/rollhouse/rollhouse/internal/common/uuid"
	"github.com/rollhouse/rollhouse/internal/models"
)

// Config holds configuration for the Redis ledger repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// ReferralRate is the fraction of a deposit credited to the
	// depositor's referrer; defaults to 0.02
	ReferralRate decimal.Decimal

	// Clock provides timestamps; defaults to the system clock
	Clock clock.Clock

	// UUIDGenerator provides transaction IDs; defaults to random UUIDs
	UUIDGenerator uuid.UUID

	// Logger for non-fatal ledger events; defaults to a nop logger
	Logger *zap.Logger
}

// GetAccountInput contains parameters for retrieving an account
type GetAccountInput struct {
	// AccountID is the account to retrieve
	AccountID string
}

// GetOrCreateAccountInput contains parameters for retrieving or creating an account
type GetOrCreateAccountInput struct {
	// AccountID is the account to retrieve or create
	AccountID string

	// Username is the display name recorded on first creation
	Username string
}

// DebitInput contains parameters for removing funds from an account
type DebitInput struct {
	// AccountID is the account to debit
	AccountID string

	// Amount is the amount to remove; must be positive
	Amount decimal.Decimal

	// Kind classifies the resulting transaction
	Kind models.TransactionKind

	// Metadata carries flow-specific context onto the transaction
	Metadata map[string]string
}

// DebitOutput contains the result of a debit
type DebitOutput struct {
	// NewBalance is the account balance after the debit
	NewBalance decimal.Decimal

	// Transaction is the appended log entry
	Transaction *models.Transaction
}

// CreditInput contains parameters for adding funds to an account
type CreditInput struct {
	// AccountID is the account to credit
	AccountID string

	// Amount is the amount to add; must be positive
	Amount decimal.Decimal

	// Kind classifies the resulting transaction
	Kind models.TransactionKind

	// Metadata carries flow-specific context onto the transaction
	Metadata map[string]string
}

// CreditOutput contains the result of a credit
type CreditOutput struct {
	// NewBalance is the account balance after the credit
	NewBalance decimal.Decimal

	// Transaction is the appended log entry
	Transaction *models.Transaction
}

// TransferInput contains parameters for moving funds between accounts
type TransferInput struct {
	// FromAccountID is the account to debit
	FromAccountID string

	// ToAccountID is the account to credit
	ToAccountID string

	// Amount is the amount to move; must be positive
	Amount decimal.Decimal
}

// TransferOutput contains the result of a transfer
type TransferOutput struct {
	// FromBalance is the sender's balance after the transfer
	FromBalance decimal.Decimal

	// ToBalance is the recipient's balance after the transfer
	ToBalance decimal.Decimal
}

// SetReferrerInput contains parameters for recording a referrer
type SetReferrerInput struct {
	// AccountID is the referred account
	AccountID string

	// ReferrerID is the referring account
	ReferrerID string
}

// ListTransactionsInput contains parameters for listing log entries
type ListTransactionsInput struct {
	// AccountID is the account whose entries to list
	AccountID string

	// Limit caps the number of entries returned, newest first;
	// zero means no cap
	Limit int
}

// ListTransactionsOutput contains the listed log entries
type ListTransactionsOutput struct {
	// Transactions are the entries, newest first
	Transactions []*models.Transaction
}

// LastMatchingInput contains parameters for locating a log entry
type LastMatchingInput struct {
	// AccountID is the account whose log to search
	AccountID string

	// Kind is the transaction kind to match
	Kind models.TransactionKind

	// Amount is the transaction amount to match
	Amount decimal.Decimal
}
