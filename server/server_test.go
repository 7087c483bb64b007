package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/fogeapi-client/account"
	"github.com/jrsteele09/fogeapi-client/api"
	"github.com/jrsteele09/fogeapi-client/auth"
	"github.com/jrsteele09/fogeapi-client/credentials"
	"github.com/jrsteele09/fogeapi-client/credentials/memstorage"
	"github.com/jrsteele09/fogeapi-client/internal/config"
	"github.com/jrsteele09/fogeapi-client/internal/fakebackend"
	"github.com/jrsteele09/fogeapi-client/server"
	"github.com/jrsteele09/fogeapi-client/transport"
	"github.com/jrsteele09/fogeapi-client/users"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	ctx        context.Context
	backend    *fakebackend.Backend
	store      *credentials.Store
	controller *auth.Controller
	navigator  *server.Navigator
	server     *server.Server
	user       users.User
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("ENV_FILE_PATH", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("ENV", "TEST")
	cfg := config.New()

	backend := fakebackend.New(t)
	user := backend.AddUser("ada@example.com", "secret1", "Ada")
	store := credentials.NewStore(memstorage.New())
	nav := server.NewNavigator()
	authClient := api.NewAuthClient(backend.URL, backend.Client())

	controller, err := auth.NewController(store, authClient,
		auth.WithNavigator(nav),
		auth.WithSignInRoute(cfg.GetSignInRoute()),
	)
	require.NoError(t, err)
	t.Cleanup(controller.Close)

	client := api.NewClient(backend.URL, transport.New(controller, backend.Client().Transport).Client())
	srv, err := server.New(cfg, controller, account.NewService(authClient, controller), client, nav)
	require.NoError(t, err)

	return &testFixture{
		ctx:        context.Background(),
		backend:    backend,
		store:      store,
		controller: controller,
		navigator:  nav,
		server:     srv,
		user:       user,
	}
}

func (f *testFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *testFixture) signIn(t *testing.T) {
	t.Helper()
	f.controller.Start(f.ctx)
	rec := f.do(t, http.MethodPost, server.RouteLogin, `{"email":"ada@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestServer_GuardsWaitWhileLoading(t *testing.T) {
	f := setupTestFixture(t)

	for _, path := range []string{server.RouteDashboard, server.RouteLogin} {
		rec := f.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusAccepted, rec.Code, path)
		require.Equal(t, "loading", decode(t, rec)["view"])
	}
}

func TestServer_SignedOut(t *testing.T) {
	f := setupTestFixture(t)
	require.False(t, f.controller.Start(f.ctx))

	rec := f.do(t, http.MethodGet, server.RouteDashboard, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	rec = f.do(t, http.MethodGet, server.RouteLogin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "login", decode(t, rec)["page"])

	rec = f.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestServer_Login(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	rec := f.do(t, http.MethodGet, server.RouteDashboard, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	session := body["session"].(map[string]any)
	require.Equal(t, true, session["isAuthenticated"])
	require.Equal(t, "Ada", session["user"].(map[string]any)["userName"])
	require.Empty(t, body["apiKeys"])

	rec = f.do(t, http.MethodGet, server.RouteLogin, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestServer_LoginWithFormPost(t *testing.T) {
	f := setupTestFixture(t)
	f.controller.Start(f.ctx)

	form := url.Values{"email": {"ada@example.com"}, "password": {"secret1"}}
	req := httptest.NewRequest(http.MethodPost, server.RouteLogin, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/dashboard", decode(t, rec)["redirect"])
	require.True(t, f.controller.Session().IsAuthenticated)
}

func TestServer_LoginErrors(t *testing.T) {
	f := setupTestFixture(t)
	f.controller.Start(f.ctx)

	rec := f.do(t, http.MethodPost, server.RouteLogin, `{"email":"ada"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "Validation Error", body["title"])
	require.Len(t, body["fields"], 2)
	require.Zero(t, f.backend.LoginCalls())

	rec = f.do(t, http.MethodPost, server.RouteLogin, `{"email":"ada@example.com","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body = decode(t, rec)
	require.Equal(t, "Authentication Required", body["title"])
	require.Equal(t, "Invalid credentials", body["message"])
}

func TestServer_SignupAndPasswordPages(t *testing.T) {
	f := setupTestFixture(t)
	f.controller.Start(f.ctx)

	rec := f.do(t, http.MethodPost, server.RouteSignup, `{"userName":"grace","email":"grace@example.com","password":"secret1","confirmPassword":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "/login", decode(t, rec)["redirect"])

	rec = f.do(t, http.MethodPost, server.RouteForgotPassword, `{"email":"grace@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, server.RouteResetPassword, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, decode(t, rec)["warning"])

	rec = f.do(t, http.MethodPost, server.RouteResetPassword+"?token="+fakebackend.ResetToken, `{"newPassword":"secret2","confirmPassword":"secret2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestServer_APIKeysAndSchemas(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	rec := f.do(t, http.MethodPost, server.RouteAPIKeys, `{"name":"ci"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	key := decode(t, rec)["apiKey"].(map[string]any)

	rec = f.do(t, http.MethodGet, server.RouteDashboard, "")
	require.Len(t, decode(t, rec)["apiKeys"], 1)

	rec = f.do(t, http.MethodDelete, server.RouteAPIKeys+"/"+key["_id"].(string), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, server.RouteCustomSchemas, `{"apiPath":"/users","responseSchema":{"name":"fullName"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, server.RouteCustomSchemas, `{"apiPath":" ","responseSchema":{}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, server.RouteCustomSchemas, "")
	require.Equal(t, http.StatusOK, rec.Code)
	schemas := decode(t, rec)["schemas"].([]any)
	require.Len(t, schemas, 1)

	id := schemas[0].(map[string]any)["_id"].(string)
	rec = f.do(t, http.MethodDelete, server.RouteCustomSchemas+"/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodDelete, server.RouteCustomSchemas+"/"+id, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Not Found", decode(t, rec)["title"])
}

func TestServer_ExpiredAccessTokenIsRefreshedTransparently(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)
	rec, err := f.store.Load(f.ctx)
	require.NoError(t, err)
	f.backend.RevokeAccess(rec.AccessToken)

	resp := f.do(t, http.MethodGet, server.RouteDashboard, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 1, f.backend.RefreshCalls())
	require.True(t, f.controller.Session().IsAuthenticated)
}

func TestServer_FailedRefreshSendsUserToSignIn(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)
	rec, err := f.store.Load(f.ctx)
	require.NoError(t, err)
	f.backend.RevokeAccess(rec.AccessToken)
	f.backend.FailRefresh(http.StatusUnauthorized)

	resp := f.do(t, http.MethodGet, server.RouteDashboard, "")
	require.Equal(t, http.StatusSeeOther, resp.Code)
	require.Equal(t, "/login", resp.Header().Get("Location"))

	session := decode(t, f.do(t, http.MethodGet, server.RouteSession, ""))
	require.Equal(t, "unauthenticated", session["status"])
	require.Equal(t, false, session["isAuthenticated"])
}

func TestServer_Logout(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	rec := f.do(t, http.MethodPost, server.RouteLogout, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/login", decode(t, rec)["redirect"])
	require.Equal(t, "/login", f.navigator.Last())

	rec = f.do(t, http.MethodGet, server.RouteDashboard, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	session := decode(t, f.do(t, http.MethodGet, server.RouteSession, ""))
	require.Equal(t, "/login", session["navigateTo"])
}

func TestServer_PasswordStrength(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodPost, server.RouteAPIPasswordStrength, `{"password":"abcdefg"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Medium", decode(t, rec)["strength"])
}

func TestServer_RequestIDIsEchoed(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodGet, server.RouteSession, nil)
	req.Header.Set(transport.RequestIDHeader, "req-7")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, "req-7", rec.Header().Get(transport.RequestIDHeader))
	require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
}
