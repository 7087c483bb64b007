// Package account runs the sign-in, sign-up and password flows.
package account

import (
	"context"
	"strings"

	"github.com/jrsteele09/fogeapi-client/api"
	"github.com/jrsteele09/fogeapi-client/forms"
	"github.com/jrsteele09/fogeapi-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// AuthAPI is the unauthenticated backend surface. api.AuthClient implements it.
type AuthAPI interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.MessageResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) (*api.MessageResponse, error)
	ResetPassword(ctx context.Context, req api.ResetPasswordRequest) (*api.MessageResponse, error)
}

// Session is the part of auth.Controller the flows drive.
type Session interface {
	Login(ctx context.Context, accessToken, refreshToken string, user users.User) error
	Logout(ctx context.Context) error
}

type Service struct {
	auth    AuthAPI
	session Session
}

func NewService(auth AuthAPI, session Session) *Service {
	return &Service{auth: auth, session: session}
}

// SignIn validates the form, exchanges the credentials and hands the result to
// the session. Backend failures come back as *api.StatusError.
func (s *Service) SignIn(ctx context.Context, form forms.LoginForm) (*users.User, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := forms.Validate(form); err != nil {
		return nil, err
	}

	resp, err := s.auth.Login(ctx, api.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		log.Info().Err(err).Msg("[Service.SignIn] login failed")
		return nil, err
	}
	if err := s.session.Login(ctx, resp.AccessToken, resp.RefreshToken, resp.User); err != nil {
		return nil, errors.Wrap(err, "[Service.SignIn] failed to start session")
	}
	return &resp.User, nil
}

// SignUp registers the account. The user still has to sign in afterwards.
func (s *Service) SignUp(ctx context.Context, form forms.SignupForm) (string, error) {
	form.UserName = strings.TrimSpace(form.UserName)
	form.Email = strings.TrimSpace(form.Email)
	if err := forms.Validate(form); err != nil {
		return "", err
	}

	resp, err := s.auth.Register(ctx, api.RegisterRequest{
		UserName:        form.UserName,
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (s *Service) ForgotPassword(ctx context.Context, form forms.ForgotPasswordForm) (string, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := forms.Validate(form); err != nil {
		return "", err
	}

	resp, err := s.auth.ForgotPassword(ctx, form.Email)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (s *Service) ResetPassword(ctx context.Context, form forms.ResetPasswordForm) (string, error) {
	if err := forms.Validate(form); err != nil {
		return "", err
	}

	resp, err := s.auth.ResetPassword(ctx, api.ResetPasswordRequest{
		Token:           form.Token,
		NewPassword:     form.NewPassword,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (s *Service) SignOut(ctx context.Context) error {
	return s.session.Logout(ctx)
}
