package auth

import (
	"sync"

	"github.com/jrsteele09/fogeapi-client/users"
)

// Status is the controller's state machine position.
type Status int

const (
	StatusUnknown Status = iota
	StatusValidating
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusValidating:
		return "validating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Session is an immutable snapshot of the authentication state.
// IsAuthenticated implies User != nil. While IsLoading is set, IsAuthenticated
// must not drive redirects.
type Session struct {
	Status          Status
	IsAuthenticated bool
	User            *users.User
	IsLoading       bool
}

func loadingSession() Session {
	return Session{Status: StatusValidating, IsLoading: true}
}

func authenticatedSession(u users.User) Session {
	return Session{Status: StatusAuthenticated, IsAuthenticated: true, User: &u}
}

func unauthenticatedSession() Session {
	return Session{Status: StatusUnauthenticated}
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// SessionState holds the current Session and fans changes out to subscribers.
// Only the Controller writes to it.
type SessionState struct {
	mu      sync.Mutex
	current Session
	subs    map[int]chan Session
	nextID  int
	closed  bool
}

// NewSessionState starts in StatusUnknown with IsLoading set, so guards wait
// for the first validation.
func NewSessionState() *SessionState {
	return &SessionState{
		current: Session{Status: StatusUnknown, IsLoading: true},
		subs:    make(map[int]chan Session),
	}
}

func (s *SessionState) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// Subscribe returns a channel that always yields the latest Session, starting
// with the current one. Slow readers skip intermediate values. The channel is
// closed by the returned cancel func or by Close.
func (s *SessionState) Subscribe() (<-chan Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Session, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- s.current.clone()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close detaches every subscriber. Later writes are dropped.
func (s *SessionState) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *SessionState) set(next Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.current = next
	for _, ch := range s.subs {
		// Replace any unread value so the reader only sees the latest.
		select {
		case <-ch:
		default:
		}
		ch <- next.clone()
	}
}
