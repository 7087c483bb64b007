package config

import (
	"strings"
	"time"
)

const (
	apiBaseURLVar     = "API_BASE_URL"
	requestTimeoutVar = "REQUEST_TIMEOUT"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
}

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the backend base URL without a trailing slash.
func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "https://fogeapi-backend.onrender.com/api"), "/")
}

func (API) GetRequestTimeout() time.Duration {
	return GetDuration(requestTimeoutVar, 30*time.Second)
}
