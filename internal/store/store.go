package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/lshigami/quizx/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("store: key not found")

// Store is a synchronous key/value store scoped to one client namespace.
// Writes are last-write-wins; there are no multi-key transactions.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// Provider hands out stores scoped to a client namespace.
type Provider interface {
	Open(namespace string) Store
}

// NewProvider selects the store driver named by STORE_DRIVER. A redis client
// is closed when lc stops.
func NewProvider(lc fx.Lifecycle, cfg *config.Config, db *gorm.DB) (Provider, error) {
	switch cfg.Store.Driver {
	case "gorm", "":
		return NewGormProvider(db), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				log.Info().Str("component", "redis store").Msg("Closing")
				return client.Close()
			},
		})
		return NewRedisProvider(client), nil
	case "memory":
		return NewMemoryProvider(), nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}
