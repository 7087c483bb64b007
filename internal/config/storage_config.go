package config

const (
	storageBackendVar = "STORAGE_BACKEND"
	storagePathVar    = "STORAGE_PATH"
	redisURLVar       = "REDIS_URL"
	redisKeyPrefixVar = "REDIS_KEY_PREFIX"
)

const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageBolt   = "bolt"
	StorageRedis  = "redis"
)

type StorageConfig interface {
	GetStorageBackend() string
	GetStoragePath() string
	GetRedisURL() string
	GetRedisKeyPrefix() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetStorageBackend() string {
	return GetEnv(storageBackendVar, StorageFile)
}

func (s Storage) GetStoragePath() string {
	if s.GetStorageBackend() == StorageBolt {
		return GetEnv(storagePathVar, "./data/credentials.db")
	}
	return GetEnv(storagePathVar, "./data/credentials.json")
}

func (Storage) GetRedisURL() string {
	return GetEnv(redisURLVar, "redis://localhost:6379/0")
}

func (Storage) GetRedisKeyPrefix() string {
	return GetEnv(redisKeyPrefixVar, "fogeapi:session:")
}
