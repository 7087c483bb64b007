package auth

import (
	"errors"

	clienterrors "github.com/jrsteele09/fogeapi-client/internal/errors"
)

var (
	ControllerClosedErr = errors.New("auth controller closed")

	// Refresh outcomes. All of them leave the session Unauthenticated except
	// ErrSessionChanged, which means a login or logout won the race.
	ErrSessionExpired      = clienterrors.ErrSessionExpired
	ErrSessionChanged      = clienterrors.ErrSessionChanged
	ErrRefreshTokenExpired = clienterrors.ErrRefreshTokenExpired
	ErrRefreshRejected     = clienterrors.ErrRefreshRejected
)
