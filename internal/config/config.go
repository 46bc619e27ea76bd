// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

// Config holds all environment-driven settings for the bot process
type Config struct {
	// RedisAddr is the address of the Redis instance backing both stores
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// RedisPassword is the Redis password, empty when unauthenticated
	RedisPassword string `env:"REDIS_PASSWORD"`

	// BotToken authenticates the main bot identity
	BotToken string `env:"BOT_TOKEN,required,notEmpty"`

	// SupportBotTokens is the pool of throw-identity tokens; the main
	// token is used alone when the pool is empty
	SupportBotTokens []string `env:"SUPPORT_BOT_TOKENS" envSeparator:","`

	// MinBet is the smallest accepted stake
	MinBet decimal.Decimal `env:"MIN_BET" envDefault:"10"`

	// PaceDelay is the pause after each dice throw
	PaceDelay time.Duration `env:"PACE_DELAY" envDefault:"1200ms"`

	// PollTimeout is the Telegram long-poll wait
	PollTimeout time.Duration `env:"POLL_TIMEOUT" envDefault:"30s"`
}

// Load parses configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(decimal.Decimal{}): parseDecimal,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

func parseDecimal(v string) (interface{}, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q: %w", v, err)
	}
	return d, nil
}
