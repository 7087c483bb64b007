package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	API
	Session
	Storage
}

// New loads an optional .env file and returns a Config backed by the environment.
// ENV_FILE_PATH overrides the default ".env" location.
func New() Config {
	loadDotEnv()
	return mainConfig{}
}

func loadDotEnv() {
	envFile := GetEnv(envFilePathVar, ".env")
	if _, err := os.Stat(envFile); err != nil {
		return
	}
	// Values already present in the environment win over the file.
	_ = godotenv.Load(envFile)
}
