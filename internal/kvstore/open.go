package kvstore

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"resumevault/internal/config"
)

// Open 按配置选择存储后端。redis 后端复用调用方的客户端。
func Open(cfg *config.Config, redisClient redis.UniversalClient) (Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(redisClient), nil
	case "postgres":
		db, err := InitDatabase(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		return NewGormStore(db)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
