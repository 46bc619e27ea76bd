package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a ledger entry
type TransactionKind string

const (
	// TransactionKindDeposit is a confirmed deposit credit
	TransactionKindDeposit TransactionKind = "deposit"

	// TransactionKindWithdrawPending is a withdrawal debit awaiting approval
	TransactionKindWithdrawPending TransactionKind = "withdraw_pending"

	// TransactionKindWithdraw is an approved withdrawal
	TransactionKindWithdraw TransactionKind = "withdraw"

	// TransactionKindWithdrawRejected is the compensating credit for a rejected withdrawal
	TransactionKindWithdrawRejected TransactionKind = "withdraw_rejected"

	// TransactionKindPromo is a promotional code credit
	TransactionKindPromo TransactionKind = "promo"

	// TransactionKindGiftSent is the debit half of a gift transfer
	TransactionKindGiftSent TransactionKind = "gift_sent"

	// TransactionKindGiftReceived is the credit half of a gift transfer
	TransactionKindGiftReceived TransactionKind = "gift_received"

	// TransactionKindGameBet is a stake debit at game creation or join
	TransactionKindGameBet TransactionKind = "game_bet"

	// TransactionKindGameWin is a payout or refund credit at settlement
	TransactionKindGameWin TransactionKind = "game_win"

	// TransactionKindReferralBonus is the one-level bonus credited to a referrer
	TransactionKindReferralBonus TransactionKind = "referral_bonus"
)

// Transaction is one append-only ledger entry. Entries are never
// mutated or deleted; reversals append compensating entries instead.
type Transaction struct {
	// ID is the unique identifier for the entry
	ID string

	// AccountID is the account the entry applies to
	AccountID string

	// Kind classifies the entry
	Kind TransactionKind

	// Amount is the absolute amount moved
	Amount decimal.Decimal

	// Timestamp is when the entry was appended
	Timestamp time.Time

	// Metadata carries flow-specific context, such as a game ID or
	// the counterparty of a transfer
	Metadata map[string]string
}
