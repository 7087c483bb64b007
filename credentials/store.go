package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	clienterrors "github.com/jrsteele09/fogeapi-client/internal/errors"
	"github.com/jrsteele09/fogeapi-client/users"
	"github.com/pkg/errors"
)

// Fixed storage keys. Values are opaque and always replaced as a unit.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	UserKey         = "user"
)

var allKeys = []string{AccessTokenKey, RefreshTokenKey, UserKey}

// ErrNoCredentials is returned by Load when no complete record is stored.
var ErrNoCredentials = clienterrors.ErrNoCredentials

// Record is the persisted credential triple.
type Record struct {
	AccessToken  string
	RefreshToken string
	User         users.User
}

// Store persists the credential record on top of a Storage backend.
type Store struct {
	storage Storage
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Save writes the access token, refresh token and user together.
func (s *Store) Save(ctx context.Context, accessToken, refreshToken string, user users.User) error {
	if strings.TrimSpace(accessToken) == "" || strings.TrimSpace(refreshToken) == "" {
		return errors.New("[Store.Save] access and refresh tokens are required")
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[Store.Save] failed to encode user")
	}

	if err := s.storage.SetAll(ctx, map[string]string{
		AccessTokenKey:  accessToken,
		RefreshTokenKey: refreshToken,
		UserKey:         string(userJSON),
	}); err != nil {
		return errors.Wrap(err, "[Store.Save] failed to write credentials")
	}
	return nil
}

// Load returns the stored record. Any missing entry or an unreadable user
// yields ErrNoCredentials; a partial record is never returned.
func (s *Store) Load(ctx context.Context) (*Record, error) {
	values := make(map[string]string, len(allKeys))
	for _, key := range allKeys {
		value, ok, err := s.storage.Get(ctx, key)
		if err != nil {
			return nil, errors.Wrapf(err, "[Store.Load] failed to read %s", key)
		}
		if !ok || strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%w: %s missing", ErrNoCredentials, key)
		}
		values[key] = value
	}

	var user *users.User
	if err := json.Unmarshal([]byte(values[UserKey]), &user); err != nil || user == nil {
		return nil, fmt.Errorf("%w: stored user is not valid JSON", ErrNoCredentials)
	}

	return &Record{
		AccessToken:  values[AccessTokenKey],
		RefreshToken: values[RefreshTokenKey],
		User:         *user,
	}, nil
}

// Clear removes all three entries. Safe to call on an empty store.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.RemoveAll(ctx, allKeys...); err != nil {
		return errors.Wrap(err, "[Store.Clear] failed to remove credentials")
	}
	return nil
}

// Close closes the backing storage.
func (s *Store) Close() error {
	return s.storage.Close()
}
