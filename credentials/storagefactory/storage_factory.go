// Package storagefactory opens the credential storage backend named in config.
package storagefactory

import (
	"context"
	"fmt"

	"github.com/jrsteele09/fogeapi-client/credentials"
	"github.com/jrsteele09/fogeapi-client/credentials/boltstorage"
	"github.com/jrsteele09/fogeapi-client/credentials/filestorage"
	"github.com/jrsteele09/fogeapi-client/credentials/memstorage"
	"github.com/jrsteele09/fogeapi-client/credentials/redisstorage"
	"github.com/jrsteele09/fogeapi-client/internal/config"
)

// Open returns the Storage selected by STORAGE_BACKEND.
func Open(ctx context.Context, cfg config.StorageConfig) (credentials.Storage, error) {
	switch backend := cfg.GetStorageBackend(); backend {
	case config.StorageMemory:
		return memstorage.New(), nil

	case config.StorageFile:
		s, err := filestorage.New(cfg.GetStoragePath())
		if err != nil {
			return nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		return s, nil

	case config.StorageBolt:
		s, err := boltstorage.Open(cfg.GetStoragePath(), "")
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt storage: %w", err)
		}
		return s, nil

	case config.StorageRedis:
		s, err := redisstorage.NewFromURL(ctx, cfg.GetRedisURL(), cfg.GetRedisKeyPrefix())
		if err != nil {
			return nil, fmt.Errorf("failed to open redis storage: %w", err)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend %q", backend)
	}
}
