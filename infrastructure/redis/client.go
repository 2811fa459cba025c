// Package redis builds a verified go-redis client.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
}

// ErrEmptyAddress is returned when no address is configured.
var ErrEmptyAddress = errors.New("redis address is required")

const connectionTimeout = 5 * time.Second

// NewClient connects and pings Redis.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}
