package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	clienterrors "github.com/jrsteele09/fogeapi-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var (
	ErrEmptyToken    = errors.New("empty token")
	ErrMalformed     = errors.New("malformed token")
	ErrMissingExpiry = errors.New("token missing exp claim")
)

// Claims is the subset of a bearer token's payload the client cares about.
// Signatures are never checked here; that is the issuing server's job.
type Claims struct {
	Subject   string
	ID        string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// DecodeError is returned for any token that cannot be read. Callers treat it as expired.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("token decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is lets callers match any decode failure against ErrInvalidToken.
func (e *DecodeError) Is(target error) bool {
	return target == clienterrors.ErrInvalidToken
}

// Codec decodes token payloads and answers expiry questions.
type Codec struct {
	parser  *jwtlib.Parser
	leeway  time.Duration
	nowTime func() time.Time
}

// CodecOption defines a function type to modify the Codec instance.
type CodecOption func(*Codec)

// WithLeeway tolerates clock skew: a token counts as valid until exp+leeway.
func WithLeeway(leeway time.Duration) CodecOption {
	return func(c *Codec) {
		if leeway > 0 {
			c.leeway = leeway
		}
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowTime = nowFunc
	}
}

func NewCodec(options ...CodecOption) *Codec {
	c := &Codec{
		parser:  jwtlib.NewParser(),
		nowTime: func() time.Time { return NowTimeFunc() },
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Decode reads the payload segment of a token without verifying it.
// The error, when not nil, is always a *DecodeError.
func (c *Codec) Decode(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &DecodeError{Err: ErrEmptyToken}
	}

	var registered jwtlib.RegisteredClaims
	if _, _, err := c.parser.ParseUnverified(raw, &registered); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	if registered.ExpiresAt == nil {
		return nil, &DecodeError{Err: ErrMissingExpiry}
	}

	claims := &Claims{
		Subject:   registered.Subject,
		ID:        registered.ID,
		ExpiresAt: registered.ExpiresAt.Time,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	return claims, nil
}

// DecodeExpiry returns the exp claim, or the zero time when the token is unreadable.
func (c *Codec) DecodeExpiry(raw string) time.Time {
	claims, err := c.Decode(raw)
	if err != nil {
		return time.Time{}
	}
	return claims.ExpiresAt
}

// IsExpired reports whether exp is in the past. Unreadable tokens are expired.
func (c *Codec) IsExpired(raw string) bool {
	claims, err := c.Decode(raw)
	if err != nil {
		return true
	}
	return claims.ExpiresAt.Add(c.leeway).Before(c.nowTime())
}

var defaultCodec = NewCodec()

// Decode reads a token with the default codec.
func Decode(raw string) (*Claims, error) {
	return defaultCodec.Decode(raw)
}

// DecodeExpiry reads the exp claim with the default codec.
func DecodeExpiry(raw string) time.Time {
	return defaultCodec.DecodeExpiry(raw)
}

// IsExpired checks expiry with the default codec (no leeway).
func IsExpired(raw string) bool {
	return defaultCodec.IsExpired(raw)
}
