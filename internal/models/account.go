package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a user's wallet and referral graph node.
// All mutation goes through the balance ledger; other components
// never assign fields directly.
type Account struct {
	// ID is the chat-platform user ID of the account holder
	ID string

	// Username is the display name of the account holder
	Username string

	// Balance is the spendable amount; never negative
	Balance decimal.Decimal

	// ReferrerID is the account that referred this one; set once
	ReferrerID string

	// ReferralIDs is the set of accounts this one referred
	ReferralIDs []string

	// TotalWagered is the lifetime sum of game bets placed
	TotalWagered decimal.Decimal

	// TotalWon is the lifetime sum of game winnings
	TotalWon decimal.Decimal

	// TotalDeposited is the lifetime sum of deposits credited
	TotalDeposited decimal.Decimal

	// TotalWithdrawn is the lifetime sum of withdrawals debited
	TotalWithdrawn decimal.Decimal

	// TotalReferralIncome is the lifetime sum of referral bonuses earned
	TotalReferralIncome decimal.Decimal

	// RegisteredAt is when the account was first seen
	RegisteredAt time.Time
}

// HasReferral reports whether an account is already in the referral set
func (a *Account) HasReferral(accountID string) bool {
	for _, id := range a.ReferralIDs {
		if id == accountID {
			return true
		}
	}
	return false
}
