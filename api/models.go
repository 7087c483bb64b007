package api

import (
	"time"

	"github.com/jrsteele09/fogeapi-client/token"
	"github.com/jrsteele09/fogeapi-client/users"
	"golang.org/x/oauth2"
)

// TokenPair is the body of a successful refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// OAuth2Token converts the pair for use with golang.org/x/oauth2 clients.
// Expiry comes from the access token's exp claim; unreadable tokens get an
// expiry in the past so oauth2 never treats them as valid.
func (p TokenPair) OAuth2Token() *oauth2.Token {
	expiry := token.DecodeExpiry(p.AccessToken)
	if expiry.IsZero() {
		expiry = time.Unix(1, 0)
	}
	return &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       expiry,
	}
}

type RegisterRequest struct {
	UserName        string `json:"userName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is trusted as-is: the client never re-validates it.
type LoginResponse struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	User         users.User `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// MessageResponse is the {message} body most mutations return.
type MessageResponse struct {
	Message string `json:"message"`
}

type meResponse struct {
	User users.User `json:"user"`
}

// APIKey is a key issued for calling the generated mock APIs.
type APIKey struct {
	ID           string     `json:"_id"`
	Name         string     `json:"name"`
	Key          string     `json:"key"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastUsed     *time.Time `json:"lastUsed,omitempty"`
	IsActive     bool       `json:"isActive"`
	IsSubscribed bool       `json:"isSubscribed"`
	Count        int        `json:"count"`
}

type listAPIKeysResponse struct {
	APIKeys []APIKey `json:"apiKeys"`
}

type GenerateAPIKeyRequest struct {
	Name string `json:"name,omitempty"`
}

type GenerateAPIKeyResponse struct {
	Message string  `json:"message,omitempty"`
	APIKey  *APIKey `json:"apiKey,omitempty"`
}

// Schema is a user-defined mock endpoint: a path plus field name -> generator type.
type Schema struct {
	ID             string            `json:"_id"`
	APIPath        string            `json:"apiPath"`
	ResponseSchema map[string]string `json:"responseSchema"`
	Endpoint       string            `json:"endpoint,omitempty"`
}

type CreateSchemaRequest struct {
	APIPath        string            `json:"apiPath"`
	ResponseSchema map[string]string `json:"responseSchema"`
}

type listSchemasResponse struct {
	UserAPIs []Schema `json:"userApis"`
}
