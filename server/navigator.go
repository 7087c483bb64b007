package server

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Navigator receives the session's navigation requests. The host has no UI of
// its own, so it logs them and exposes the latest through /session.
type Navigator struct {
	mu   sync.Mutex
	last string
}

func NewNavigator() *Navigator {
	return &Navigator{}
}

func (n *Navigator) Navigate(route string) {
	log.Info().Str("route", route).Msg("[Navigator] navigate")
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = route
}

func (n *Navigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}
