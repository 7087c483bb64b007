package account_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jrsteele09/fogeapi-client/account"
	"github.com/jrsteele09/fogeapi-client/api"
	"github.com/jrsteele09/fogeapi-client/auth"
	"github.com/jrsteele09/fogeapi-client/credentials"
	"github.com/jrsteele09/fogeapi-client/credentials/memstorage"
	"github.com/jrsteele09/fogeapi-client/forms"
	clienterrors "github.com/jrsteele09/fogeapi-client/internal/errors"
	"github.com/jrsteele09/fogeapi-client/internal/fakebackend"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	ctx        context.Context
	backend    *fakebackend.Backend
	store      *credentials.Store
	controller *auth.Controller
	service    *account.Service
	routes     []string
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{ctx: context.Background(), backend: fakebackend.New(t)}
	f.store = credentials.NewStore(memstorage.New())
	authClient := api.NewAuthClient(f.backend.URL, f.backend.Client())

	controller, err := auth.NewController(f.store, authClient,
		auth.WithNavigator(auth.NavigatorFunc(func(route string) { f.routes = append(f.routes, route) })),
	)
	require.NoError(t, err)
	t.Cleanup(controller.Close)
	f.controller = controller
	f.service = account.NewService(authClient, controller)
	return f
}

func TestService_SignIn(t *testing.T) {
	f := setupTestFixture(t)
	want := f.backend.AddUser("ada@example.com", "secret1", "Ada")

	user, err := f.service.SignIn(f.ctx, forms.LoginForm{Email: " ada@example.com ", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, want, *user)

	s := f.controller.Session()
	require.True(t, s.IsAuthenticated)
	require.Equal(t, want, *s.User)
	rec, err := f.store.Load(f.ctx)
	require.NoError(t, err)
	require.Equal(t, want, rec.User)
}

func TestService_SignInInvalidFormMakesNoRequest(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.SignIn(f.ctx, forms.LoginForm{Email: "ada"})
	require.ErrorIs(t, err, clienterrors.ErrValidation)
	require.Zero(t, f.backend.LoginCalls())
}

func TestService_SignInRejected(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("ada@example.com", "secret1", "")

	_, err := f.service.SignIn(f.ctx, forms.LoginForm{Email: "ada@example.com", Password: "wrong"})
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "Invalid credentials", se.Message)
	require.False(t, f.controller.Session().IsAuthenticated)
}

func TestService_SignUp(t *testing.T) {
	f := setupTestFixture(t)

	msg, err := f.service.SignUp(f.ctx, forms.SignupForm{UserName: "ada", Email: "ada@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "User registered successfully", msg)
	require.False(t, f.controller.Session().IsAuthenticated)

	_, err = f.service.SignUp(f.ctx, forms.SignupForm{UserName: "ada", Email: "ada@example.com", Password: "secret1", ConfirmPassword: "nope!!"})
	require.ErrorIs(t, err, clienterrors.ErrValidation)

	_, err = f.service.SignUp(f.ctx, forms.SignupForm{UserName: "ada", Email: "ada@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusConflict, se.StatusCode)
}

func TestService_PasswordFlows(t *testing.T) {
	f := setupTestFixture(t)

	msg, err := f.service.ForgotPassword(f.ctx, forms.ForgotPasswordForm{Email: "ada@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, msg)

	_, err = f.service.ResetPassword(f.ctx, forms.ResetPasswordForm{NewPassword: "secret2", ConfirmPassword: "secret2"})
	require.ErrorIs(t, err, clienterrors.ErrValidation)
	require.Zero(t, f.backend.Hits(api.RouteResetPassword))

	msg, err = f.service.ResetPassword(f.ctx, forms.ResetPasswordForm{Token: fakebackend.ResetToken, NewPassword: "secret2", ConfirmPassword: "secret2"})
	require.NoError(t, err)
	require.Equal(t, "Password reset successful", msg)
}

func TestService_SignOut(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("ada@example.com", "secret1", "")
	_, err := f.service.SignIn(f.ctx, forms.LoginForm{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.service.SignOut(f.ctx))
	require.False(t, f.controller.Session().IsAuthenticated)
	require.Equal(t, []string{"/login"}, f.routes)
	_, err = f.store.Load(f.ctx)
	require.ErrorIs(t, err, credentials.ErrNoCredentials)
}
