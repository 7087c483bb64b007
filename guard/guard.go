// Package guard gates views on the session: RequireSession keeps signed-out
// users away from protected views, RedirectIfSession keeps signed-in users
// away from the sign-in forms.
package guard

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/fogeapi-client/auth"
	"github.com/rs/zerolog/log"
)

// View is what a guarded route should render.
type View int

const (
	// ViewLoading is the neutral state shown while the session is settling.
	ViewLoading View = iota
	// ViewRedirecting is shown after navigation was issued and until it completes.
	ViewRedirecting
	// ViewChild renders the guarded content.
	ViewChild
)

func (v View) String() string {
	switch v {
	case ViewRedirecting:
		return "redirecting"
	case ViewChild:
		return "child"
	default:
		return "loading"
	}
}

// SessionSource is satisfied by *auth.SessionState.
type SessionSource interface {
	Snapshot() auth.Session
	Subscribe() (<-chan auth.Session, func())
}

type decision struct {
	view  View
	route string
}

type Guard struct {
	name      string
	decide    func(auth.Session) decision
	navigator auth.Navigator

	mu   sync.Mutex
	view View
}

// RequireSession renders the child only for an authenticated, settled session
// and navigates to fallback once the session settles unauthenticated.
func RequireSession(fallback string, navigator auth.Navigator) *Guard {
	return newGuard("RequireSession", navigator, func(s auth.Session) decision {
		switch {
		case s.IsLoading:
			return decision{view: ViewLoading}
		case !s.IsAuthenticated:
			return decision{view: ViewRedirecting, route: fallback}
		default:
			return decision{view: ViewChild}
		}
	})
}

// RedirectIfSession navigates authenticated users to target and renders the
// child for everyone else once the session has settled.
func RedirectIfSession(target string, navigator auth.Navigator) *Guard {
	return newGuard("RedirectIfSession", navigator, func(s auth.Session) decision {
		switch {
		case s.IsLoading:
			return decision{view: ViewLoading}
		case s.IsAuthenticated:
			return decision{view: ViewRedirecting, route: target}
		default:
			return decision{view: ViewChild}
		}
	})
}

func newGuard(name string, navigator auth.Navigator, decide func(auth.Session) decision) *Guard {
	if navigator == nil {
		navigator = auth.NavigatorFunc(func(string) {})
	}
	return &Guard{name: name, decide: decide, navigator: navigator}
}

// Evaluate applies the session and returns the view to render. Navigation is
// issued once per transition into ViewRedirecting, never while loading.
func (g *Guard) Evaluate(s auth.Session) View {
	d := g.decide(s)

	g.mu.Lock()
	navigate := d.view == ViewRedirecting && g.view != ViewRedirecting
	g.view = d.view
	g.mu.Unlock()

	if navigate {
		log.Debug().Str("guard", g.name).Str("route", d.route).Msg("[Guard.Evaluate] navigating")
		g.navigator.Navigate(d.route)
	}
	return d.view
}

// View returns the most recently evaluated view.
func (g *Guard) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view
}

// Mount evaluates the current session and then re-evaluates on every change.
// It stops when ctx is done or the returned unmount func is called.
func (g *Guard) Mount(ctx context.Context, source SessionSource) (unmount func()) {
	sessions, cancel := source.Subscribe()
	ctx, stop := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-sessions:
				if !ok {
					return
				}
				g.Evaluate(s)
			}
		}
	}()

	return func() {
		stop()
		<-done
	}
}

// Middleware is the HTTP form of the guard for the local host: navigation
// becomes a 303 redirect and the loading view is served by loading.
func (g *Guard) Middleware(source SessionSource, loading http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			d := g.decide(source.Snapshot())
			switch d.view {
			case ViewLoading:
				loading(w, r)
			case ViewRedirecting:
				http.Redirect(w, r, d.route, http.StatusSeeOther)
			default:
				next(w, r)
			}
		}
	}
}
