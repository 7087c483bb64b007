package api

import (
	"context"
	"net/http"
	"strings"

	clienterrors "github.com/jrsteele09/fogeapi-client/internal/errors"
	"github.com/pkg/errors"
)

// AuthClient talks to the unauthenticated /auth endpoints. Its http.Client
// must not carry the session transport: the refresh call in particular has
// to bypass 401 interception.
type AuthClient struct {
	r requester
}

func NewAuthClient(baseURL string, httpClient *http.Client) *AuthClient {
	return &AuthClient{r: newRequester(baseURL, httpClient)}
}

func (c *AuthClient) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.r.do(ctx, http.MethodPost, RouteRegister, req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.r.do(ctx, http.MethodPost, RouteLogin, req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshTokens exchanges a refresh token for a new pair. The refresh token
// travels as the bearer credential.
func (c *AuthClient) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, clienterrors.ErrInvalidRefreshToken
	}
	var out TokenPair
	if err := c.r.do(ctx, http.MethodGet, RouteRefresh, nil, &out, bearer(refreshToken)); err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		return nil, errors.Wrap(clienterrors.ErrRefreshRejected, "[AuthClient.RefreshTokens] incomplete token pair")
	}
	return &out, nil
}

func (c *AuthClient) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.r.do(ctx, http.MethodPost, RouteForgotPassword, ForgotPasswordRequest{Email: email}, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.r.do(ctx, http.MethodPost, RouteResetPassword, req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}
