package guard_test

import (
	"context"
	"errors"

	"github.com/jrsteele09/fogeapi-client/api"
	"github.com/jrsteele09/fogeapi-client/auth"
)

type refuseRefresh struct{}

func (refuseRefresh) RefreshTokens(context.Context, string) (*api.TokenPair, error) {
	return nil, errors.New("refresh not expected")
}

type staticSource struct {
	session auth.Session
}

func (s staticSource) Snapshot() auth.Session { return s.session }

func (s staticSource) Subscribe() (<-chan auth.Session, func()) {
	ch := make(chan auth.Session, 1)
	ch <- s.session
	return ch, func() {}
}
