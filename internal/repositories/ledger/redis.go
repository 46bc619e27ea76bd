package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rollhouse/rollhouse/internal/common/clock"
	"github.com/rollhouse/rollhouse/internal/common/uuid"
	"github.com/rollhouse/rollhouse/internal/models"
)

const (
	// Key prefixes for Redis
	accountKeyPrefix    = "account:"
	accountTxsKeyPrefix = "account_txs:"
	txKeyPrefix         = "tx:"
	ledgerLogKey        = "ledger_log"

	// Attempts before giving up on an optimistic transaction
	maxTxRetries = 10
)

// Errors returned by the ledger
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrReferrerAlreadySet = errors.New("referrer already set")
	ErrSelfReferral       = errors.New("account cannot refer itself")
	ErrTxConflict         = errors.New("transaction conflict, retries exhausted")
)

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client       *redis.Client
	referralRate decimal.Decimal
	clock        clock.Clock
	uuider       uuid.UUID
	logger       *zap.Logger
}

// NewRedis creates a new Redis-backed ledger repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	rate := cfg.ReferralRate
	if rate.IsZero() {
		rate = decimal.NewFromFloat(0.02)
	}

	clk := cfg.Clock
	if clk == nil {
		clk = &clock.DefaultClock{}
	}

	uuider := cfg.UUIDGenerator
	if uuider == nil {
		uuider = uuid.New()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &redisRepository{
		client:       cfg.RedisClient,
		referralRate: rate,
		clock:        clk,
		uuider:       uuider,
		logger:       logger,
	}, nil
}

func accountKey(accountID string) string {
	return accountKeyPrefix + accountID
}

func accountTxsKey(accountID string) string {
	return accountTxsKeyPrefix + accountID
}

// GetAccount retrieves an account by ID from Redis
func (r *redisRepository) GetAccount(ctx context.Context, input *GetAccountInput) (*models.Account, error) {
	if input == nil || input.AccountID == "" {
		return nil, errors.New("input and account ID cannot be empty")
	}

	accountJSON, err := r.client.Get(ctx, accountKey(input.AccountID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	var account models.Account
	if err := json.Unmarshal([]byte(accountJSON), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

// GetOrCreateAccount retrieves an account, creating a fresh zero-balance
// record if none exists
func (r *redisRepository) GetOrCreateAccount(ctx context.Context, input *GetOrCreateAccountInput) (*models.Account, error) {
	if input == nil || input.AccountID == "" {
		return nil, errors.New("input and account ID cannot be empty")
	}

	account, err := r.GetAccount(ctx, &GetAccountInput{AccountID: input.AccountID})
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	account = &models.Account{
		ID:           input.AccountID,
		Username:     input.Username,
		Balance:      decimal.Zero,
		RegisteredAt: r.clock.Now(),
	}

	accountJSON, err := json.Marshal(account)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account: %w", err)
	}

	// SetNX so two concurrent first touches cannot both create
	created, err := r.client.SetNX(ctx, accountKey(input.AccountID), accountJSON, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if !created {
		// Lost the race; the other writer's record wins
		return r.GetAccount(ctx, &GetAccountInput{AccountID: input.AccountID})
	}

	return account, nil
}

// updateAccount performs an atomic read-modify-write of a single account
// under an optimistic WATCH transaction. The mutator returns the log
// entries to append alongside the account write.
func (r *redisRepository) updateAccount(ctx context.Context, accountID string, fn func(account *models.Account) ([]*models.Transaction, error)) error {
	key := accountKey(accountID)

	txf := func(tx *redis.Tx) error {
		accountJSON, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}

		var account models.Account
		if err := json.Unmarshal([]byte(accountJSON), &account); err != nil {
			return fmt.Errorf("failed to unmarshal account: %w", err)
		}

		entries, err := fn(&account)
		if err != nil {
			return err
		}

		updatedJSON, err := json.Marshal(&account)
		if err != nil {
			return fmt.Errorf("failed to marshal account: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updatedJSON, 0)
			for _, entry := range entries {
				r.appendTransaction(ctx, pipe, entry)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return ErrTxConflict
}

// appendTransaction queues the writes for one log entry: the record
// itself plus the per-account and global indexes
func (r *redisRepository) appendTransaction(ctx context.Context, pipe redis.Pipeliner, t *models.Transaction) {
	txJSON, err := json.Marshal(t)
	if err != nil {
		// Marshal of a plain struct cannot realistically fail; skip the entry
		r.logger.Error("failed to marshal transaction", zap.Error(err))
		return
	}

	score := float64(t.Timestamp.UnixNano())
	pipe.Set(ctx, txKeyPrefix+t.ID, txJSON, 0)
	pipe.ZAdd(ctx, accountTxsKey(t.AccountID), redis.Z{Score: score, Member: t.ID})
	pipe.ZAdd(ctx, ledgerLogKey, redis.Z{Score: score, Member: t.ID})
}

func (r *redisRepository) newTransaction(accountID string, kind models.TransactionKind, amount decimal.Decimal, metadata map[string]string) *models.Transaction {
	return &models.Transaction{
		ID:        r.uuider.NewUUID(),
		AccountID: accountID,
		Kind:      kind,
		Amount:    amount,
		Timestamp: r.clock.Now(),
		Metadata:  metadata,
	}
}

// applyDebit mutates the account for a debit of the given kind
func applyDebit(account *models.Account, kind models.TransactionKind, amount decimal.Decimal) error {
	if account.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	account.Balance = account.Balance.Sub(amount)

	switch kind {
	case models.TransactionKindGameBet:
		account.TotalWagered = account.TotalWagered.Add(amount)
	case models.TransactionKindWithdrawPending:
		account.TotalWithdrawn = account.TotalWithdrawn.Add(amount)
	}
	return nil
}

// applyCredit mutates the account for a credit of the given kind
func applyCredit(account *models.Account, kind models.TransactionKind, amount decimal.Decimal) {
	account.Balance = account.Balance.Add(amount)

	switch kind {
	case models.TransactionKindGameWin:
		account.TotalWon = account.TotalWon.Add(amount)
	case models.TransactionKindDeposit:
		account.TotalDeposited = account.TotalDeposited.Add(amount)
	case models.TransactionKindReferralBonus:
		account.TotalReferralIncome = account.TotalReferralIncome.Add(amount)
	case models.TransactionKindWithdrawRejected:
		// Compensates a pending withdrawal; undo the stat as well
		account.TotalWithdrawn = account.TotalWithdrawn.Sub(amount)
	}
}

// Debit removes funds from an account. A debit never succeeds if the
// balance is below the amount, and a failed debit mutates nothing.
func (r *redisRepository) Debit(ctx context.Context, input *DebitInput) (*DebitOutput, error) {
	if input == nil || input.AccountID == "" {
		return nil, errors.New("input and account ID cannot be empty")
	}
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var output DebitOutput
	err := r.updateAccount(ctx, input.AccountID, func(account *models.Account) ([]*models.Transaction, error) {
		if err := applyDebit(account, input.Kind, input.Amount); err != nil {
			return nil, err
		}
		entry := r.newTransaction(input.AccountID, input.Kind, input.Amount, input.Metadata)
		output.NewBalance = account.Balance
		output.Transaction = entry
		return []*models.Transaction{entry}, nil
	})
	if err != nil {
		return nil, err
	}
	return &output, nil
}

// Credit adds funds to an account. A deposit credit to an account with a
// referrer additionally credits the referrer the configured fraction as a
// separate referral-bonus entry; the bonus kind is not deposit-class, so
// the cascade stops after one level.
func (r *redisRepository) Credit(ctx context.Context, input *CreditInput) (*CreditOutput, error) {
	if input == nil || input.AccountID == "" {
		return nil, errors.New("input and account ID cannot be empty")
	}
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var output CreditOutput
	var referrerID string
	err := r.updateAccount(ctx, input.AccountID, func(account *models.Account) ([]*models.Transaction, error) {
		applyCredit(account, input.Kind, input.Amount)
		referrerID = account.ReferrerID
		entry := r.newTransaction(input.AccountID, input.Kind, input.Amount, input.Metadata)
		output.NewBalance = account.Balance
		output.Transaction = entry
		return []*models.Transaction{entry}, nil
	})
	if err != nil {
		return nil, err
	}

	if input.Kind == models.TransactionKindDeposit && referrerID != "" {
		bonus := input.Amount.Mul(r.referralRate)
		_, err := r.Credit(ctx, &CreditInput{
			AccountID: referrerID,
			Amount:    bonus,
			Kind:      models.TransactionKindReferralBonus,
			Metadata:  map[string]string{"referred_account": input.AccountID},
		})
		if err != nil {
			// The deposit itself stands; the bonus is reconciled manually
			r.logger.Error("failed to credit referral bonus",
				zap.String("referrer", referrerID),
				zap.String("account", input.AccountID),
				zap.Error(err))
		}
	}

	return &output, nil
}

// Transfer moves funds between two accounts as one unit: both balances
// change in a single transaction or neither does
func (r *redisRepository) Transfer(ctx context.Context, input *TransferInput) (*TransferOutput, error) {
	if input == nil || input.FromAccountID == "" || input.ToAccountID == "" {
		return nil, errors.New("input and account IDs cannot be empty")
	}
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if input.FromAccountID == input.ToAccountID {
		return nil, errors.New("cannot transfer to the same account")
	}

	fromKey := accountKey(input.FromAccountID)
	toKey := accountKey(input.ToAccountID)

	var output TransferOutput
	txf := func(tx *redis.Tx) error {
		fromJSON, err := tx.Get(ctx, fromKey).Result()
		if err == redis.Nil {
			return ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get sender: %w", err)
		}

		toJSON, err := tx.Get(ctx, toKey).Result()
		if err == redis.Nil {
			return ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get recipient: %w", err)
		}

		var from, to models.Account
		if err := json.Unmarshal([]byte(fromJSON), &from); err != nil {
			return fmt.Errorf("failed to unmarshal sender: %w", err)
		}
		if err := json.Unmarshal([]byte(toJSON), &to); err != nil {
			return fmt.Errorf("failed to unmarshal recipient: %w", err)
		}

		if err := applyDebit(&from, models.TransactionKindGiftSent, input.Amount); err != nil {
			return err
		}
		applyCredit(&to, models.TransactionKindGiftReceived, input.Amount)

		sent := r.newTransaction(input.FromAccountID, models.TransactionKindGiftSent, input.Amount,
			map[string]string{"to_account": input.ToAccountID})
		received := r.newTransaction(input.ToAccountID, models.TransactionKindGiftReceived, input.Amount,
			map[string]string{"from_account": input.FromAccountID})

		updatedFrom, err := json.Marshal(&from)
		if err != nil {
			return fmt.Errorf("failed to marshal sender: %w", err)
		}
		updatedTo, err := json.Marshal(&to)
		if err != nil {
			return fmt.Errorf("failed to marshal recipient: %w", err)
		}

		output.FromBalance = from.Balance
		output.ToBalance = to.Balance

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, fromKey, updatedFrom, 0)
			pipe.Set(ctx, toKey, updatedTo, 0)
			r.appendTransaction(ctx, pipe, sent)
			r.appendTransaction(ctx, pipe, received)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, fromKey, toKey)
		if !errors.Is(err, redis.TxFailedErr) {
			if err != nil {
				return nil, err
			}
			return &output, nil
		}
	}
	return nil, ErrTxConflict
}

// SetReferrer records an account's referrer. The referrer is immutable
// once set; the referred account is also added to the referrer's set.
func (r *redisRepository) SetReferrer(ctx context.Context, input *SetReferrerInput) error {
	if input == nil || input.AccountID == "" || input.ReferrerID == "" {
		return errors.New("input and account IDs cannot be empty")
	}
	if input.AccountID == input.ReferrerID {
		return ErrSelfReferral
	}

	// Referrer must exist before the link is recorded
	if _, err := r.GetAccount(ctx, &GetAccountInput{AccountID: input.ReferrerID}); err != nil {
		return err
	}

	err := r.updateAccount(ctx, input.AccountID, func(account *models.Account) ([]*models.Transaction, error) {
		if account.ReferrerID != "" {
			return nil, ErrReferrerAlreadySet
		}
		account.ReferrerID = input.ReferrerID
		return nil, nil
	})
	if err != nil {
		return err
	}

	return r.updateAccount(ctx, input.ReferrerID, func(account *models.Account) ([]*models.Transaction, error) {
		if !account.HasReferral(input.AccountID) {
			account.ReferralIDs = append(account.ReferralIDs, input.AccountID)
		}
		return nil, nil
	})
}

// ListTransactions returns an account's log entries, newest first
func (r *redisRepository) ListTransactions(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
	if input == nil || input.AccountID == "" {
		return nil, errors.New("input and account ID cannot be empty")
	}

	stop := int64(-1)
	if input.Limit > 0 {
		stop = int64(input.Limit) - 1
	}

	txIDs, err := r.client.ZRevRange(ctx, accountTxsKey(input.AccountID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction IDs: %w", err)
	}

	transactions := make([]*models.Transaction, 0, len(txIDs))
	for _, txID := range txIDs {
		entry, err := r.getTransaction(ctx, txID)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			transactions = append(transactions, entry)
		}
	}

	return &ListTransactionsOutput{Transactions: transactions}, nil
}

// LastMatching returns the newest entry for an account with the given
// kind and amount, or nil if none matches
func (r *redisRepository) LastMatching(ctx context.Context, input *LastMatchingInput) (*models.Transaction, error) {
	if input == nil || input.AccountID == "" {
		return nil, errors.New("input and account ID cannot be empty")
	}

	txIDs, err := r.client.ZRevRange(ctx, accountTxsKey(input.AccountID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction IDs: %w", err)
	}

	for _, txID := range txIDs {
		entry, err := r.getTransaction(ctx, txID)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}
		if entry.Kind == input.Kind && entry.Amount.Equal(input.Amount) {
			return entry, nil
		}
	}

	return nil, nil
}

func (r *redisRepository) getTransaction(ctx context.Context, txID string) (*models.Transaction, error) {
	txJSON, err := r.client.Get(ctx, txKeyPrefix+txID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction %s: %w", txID, err)
	}

	var entry models.Transaction
	if err := json.Unmarshal([]byte(txJSON), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction %s: %w", txID, err)
	}
	return &entry, nil
}
