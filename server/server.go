package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/fogeapi-client/account"
	"github.com/jrsteele09/fogeapi-client/api"
	"github.com/jrsteele09/fogeapi-client/auth"
	"github.com/jrsteele09/fogeapi-client/guard"
	"github.com/jrsteele09/fogeapi-client/internal/config"
	"github.com/rs/zerolog/log"
)

// Server hosts the guarded views for the local session.
type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	session   *auth.Controller
	accounts  *account.Service
	client    *api.Client
	navigator *Navigator

	requireSession    *guard.Guard
	redirectIfSession *guard.Guard
}

func New(config config.Config, session *auth.Controller, accounts *account.Service, client *api.Client, navigator *Navigator) (*Server, error) {
	if session == nil || accounts == nil || client == nil {
		return nil, fmt.Errorf("[Server New] session, accounts and client are required")
	}
	if navigator == nil {
		navigator = NewNavigator()
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		session:   session,
		accounts:  accounts,
		client:    client,
		navigator: navigator,
		// Over HTTP the redirect is the navigation, so the guards need no navigator.
		requireSession:    guard.RequireSession(config.GetSignInRoute(), nil),
		redirectIfSession: guard.RedirectIfSession(config.GetDashboardRoute(), nil),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%s] %s", color+paddedMethod+ResetColor, path)
}
