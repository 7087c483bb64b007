package guard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/fogeapi-client/auth"
	"github.com/jrsteele09/fogeapi-client/credentials"
	"github.com/jrsteele09/fogeapi-client/credentials/memstorage"
	"github.com/jrsteele09/fogeapi-client/guard"
	"github.com/jrsteele09/fogeapi-client/token/tokenfake"
	"github.com/jrsteele09/fogeapi-client/users"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

var testUser = users.User{ID: "user-1", Email: "ada@example.com"}

func sessions() map[string]auth.Session {
	return map[string]auth.Session{
		"loading":            {Status: auth.StatusValidating, IsLoading: true},
		"loading but authed": {Status: auth.StatusValidating, IsLoading: true, IsAuthenticated: true, User: &testUser},
		"unauthenticated":    {Status: auth.StatusUnauthenticated},
		"authenticated":      {Status: auth.StatusAuthenticated, IsAuthenticated: true, User: &testUser},
	}
}

func TestRequireSession_Evaluate(t *testing.T) {
	want := map[string]guard.View{
		"loading":            guard.ViewLoading,
		"loading but authed": guard.ViewLoading,
		"unauthenticated":    guard.ViewRedirecting,
		"authenticated":      guard.ViewChild,
	}
	for name, s := range sessions() {
		t.Run(name, func(t *testing.T) {
			nav := &recordingNavigator{}
			g := guard.RequireSession("/login", nav)

			require.Equal(t, want[name], g.Evaluate(s))
			if want[name] == guard.ViewRedirecting {
				require.Equal(t, []string{"/login"}, nav.Routes())
			} else {
				require.Empty(t, nav.Routes())
			}
		})
	}
}

func TestRedirectIfSession_Evaluate(t *testing.T) {
	want := map[string]guard.View{
		"loading":            guard.ViewLoading,
		"loading but authed": guard.ViewLoading,
		"unauthenticated":    guard.ViewChild,
		"authenticated":      guard.ViewRedirecting,
	}
	for name, s := range sessions() {
		t.Run(name, func(t *testing.T) {
			nav := &recordingNavigator{}
			g := guard.RedirectIfSession("/dashboard", nav)

			require.Equal(t, want[name], g.Evaluate(s))
			if want[name] == guard.ViewRedirecting {
				require.Equal(t, []string{"/dashboard"}, nav.Routes())
			} else {
				require.Empty(t, nav.Routes())
			}
		})
	}
}

func TestGuard_NavigatesOncePerTransition(t *testing.T) {
	nav := &recordingNavigator{}
	g := guard.RequireSession("/login", nav)
	s := sessions()

	g.Evaluate(s["unauthenticated"])
	g.Evaluate(s["unauthenticated"])
	require.Equal(t, []string{"/login"}, nav.Routes())

	g.Evaluate(s["authenticated"])
	require.Equal(t, guard.ViewChild, g.View())
	g.Evaluate(s["unauthenticated"])
	require.Equal(t, []string{"/login", "/login"}, nav.Routes())
}

type controllerFixture struct {
	ctx        context.Context
	controller *auth.Controller
}

func setupControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()
	ctx := context.Background()
	store := credentials.NewStore(memstorage.New())
	controller, err := auth.NewController(store, refuseRefresh{})
	require.NoError(t, err)
	t.Cleanup(controller.Close)

	now := time.Now()
	require.NoError(t, store.Save(ctx, tokenfake.Mint(testUser.ID, now.Add(time.Hour)), tokenfake.Mint(testUser.ID, now.Add(24*time.Hour)), testUser))
	return &controllerFixture{ctx: ctx, controller: controller}
}

func TestGuard_MountReactsToLogoutElsewhere(t *testing.T) {
	f := setupControllerFixture(t)
	nav := &recordingNavigator{}
	g := guard.RequireSession("/login", nav)

	unmount := g.Mount(f.ctx, f.controller.State())
	defer unmount()

	// Still loading before Start: no navigation.
	require.Never(t, func() bool { return len(nav.Routes()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	require.True(t, f.controller.Start(f.ctx))
	require.Eventually(t, func() bool { return g.View() == guard.ViewChild }, time.Second, 5*time.Millisecond)

	require.NoError(t, f.controller.Logout(f.ctx))
	require.Eventually(t, func() bool { return len(nav.Routes()) == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, "/login", nav.Routes()[0])
	require.Equal(t, guard.ViewRedirecting, g.View())
}

func TestGuard_UnmountStopsReacting(t *testing.T) {
	f := setupControllerFixture(t)
	nav := &recordingNavigator{}
	g := guard.RequireSession("/login", nav)

	require.True(t, f.controller.Start(f.ctx))
	unmount := g.Mount(f.ctx, f.controller.State())
	require.Eventually(t, func() bool { return g.View() == guard.ViewChild }, time.Second, 5*time.Millisecond)
	unmount()

	require.NoError(t, f.controller.Logout(f.ctx))
	require.Never(t, func() bool { return len(nav.Routes()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	require.Equal(t, guard.ViewChild, g.View())
}

func TestGuard_Middleware(t *testing.T) {
	loading := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) }
	child := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

	tests := []struct {
		name     string
		guard    *guard.Guard
		session  string
		status   int
		location string
	}{
		{"require loading", guard.RequireSession("/login", nil), "loading", http.StatusAccepted, ""},
		{"require anonymous", guard.RequireSession("/login", nil), "unauthenticated", http.StatusSeeOther, "/login"},
		{"require signed in", guard.RequireSession("/login", nil), "authenticated", http.StatusOK, ""},
		{"redirect signed in", guard.RedirectIfSession("/dashboard", nil), "authenticated", http.StatusSeeOther, "/dashboard"},
		{"redirect anonymous", guard.RedirectIfSession("/dashboard", nil), "unauthenticated", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := staticSource{session: sessions()[tt.session]}
			handler := tt.guard.Middleware(source, loading)(child)

			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))
			require.Equal(t, tt.status, rec.Code)
			require.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestView_String(t *testing.T) {
	require.Equal(t, "loading", guard.ViewLoading.String())
	require.Equal(t, "redirecting", guard.ViewRedirecting.String())
	require.Equal(t, "child", guard.ViewChild.String())
}
