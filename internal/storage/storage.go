package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// New builds the StorageAdapter selected by cfg.Adapter. The config should
// already have passed Validate; an unrecognized adapter name returns
// ErrAdapterUnknown.
func New(cfg types.Config, logger *zap.SugaredLogger) (types.StorageAdapter, error) {
	switch cfg.Adapter {
	case types.AdapterMemory:
		return NewMemory(), nil
	case types.AdapterSQLite:
		return OpenSQLite(cfg.DataDir, cfg.Namespace, logger)
	case types.AdapterRedis:
		return OpenRedis(RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: cfg.Namespace,
		}, logger)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrAdapterUnknown, cfg.Adapter)
	}
}
