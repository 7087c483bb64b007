// Package tokenfake mints unverifiable-by-design JWTs for tests and local fakes.
package tokenfake

import (
	"encoding/base64"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const secret = "tokenfake-secret"

// Mint returns an HS256 token for subject that expires at exp.
func Mint(subject string, exp time.Time) string {
	return sign(jwtlib.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
		"jti": uuid.New().String(),
	})
}

// ExpiresIn mints a token expiring d from now. Negative d gives an expired token.
func ExpiresIn(d time.Duration) string {
	return Mint("user-1", time.Now().Add(d))
}

// WithoutExpiry mints a structurally valid token that has no exp claim.
func WithoutExpiry(subject string) string {
	return sign(jwtlib.MapClaims{"sub": subject})
}

// WithPayload builds a token whose payload segment is the raw bytes given, base64url encoded.
func WithPayload(payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".c2ln"
}

func sign(claims jwtlib.MapClaims) string {
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		panic("tokenfake: " + err.Error())
	}
	return signed
}
