package bootstrap

import (
	"context"
	"fmt"

	infraes "github.com/Mod5ied/eagle-server/infrastructure/elasticsearch"
	infralogger "github.com/Mod5ied/eagle-server/infrastructure/logger"
	infraredis "github.com/Mod5ied/eagle-server/infrastructure/redis"
	"github.com/Mod5ied/eagle-server/internal/config"
	"github.com/Mod5ied/eagle-server/internal/store"
)

// SetupStore connects the configured document store backend.
func SetupStore(ctx context.Context, cfg *config.Config, log infralogger.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverElasticsearch:
		client, err := infraes.NewClient(ctx, cfg.Store.Elasticsearch.Config, log)
		if err != nil {
			return nil, err
		}
		log.Info("Using Elasticsearch store",
			infralogger.String("url", cfg.Store.Elasticsearch.URL),
			infralogger.String("index_prefix", cfg.Store.Elasticsearch.IndexPrefix),
		)
		return store.NewElasticsearchStore(client, cfg.Store.Elasticsearch.IndexPrefix, log), nil

	case config.DriverRedis:
		client, err := infraredis.NewClient(ctx, cfg.Store.Redis.Config)
		if err != nil {
			return nil, err
		}
		log.Info("Using Redis store",
			infralogger.String("address", cfg.Store.Redis.Address),
			infralogger.String("key_prefix", cfg.Store.Redis.KeyPrefix),
		)
		return store.NewRedisStore(client, cfg.Store.Redis.KeyPrefix), nil

	case config.DriverMemory:
		log.Warn("Using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
