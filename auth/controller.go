package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/fogeapi-client/api"
	"github.com/jrsteele09/fogeapi-client/credentials"
	"github.com/jrsteele09/fogeapi-client/token"
	"github.com/jrsteele09/fogeapi-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	defaultSignInRoute = "/login"
	refreshFlightKey   = "refresh"
)

// Refresher exchanges a refresh token for a new pair. api.AuthClient implements it.
type Refresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (*api.TokenPair, error)
}

// Navigator moves the UI to a route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Controller owns the session. It is the only writer of both the credential
// store and the SessionState.
//
// Every identity change (login, logout, invalidation) bumps epoch. A refresh
// remembers the epoch it started under and drops its result if the epoch has
// moved on, so a slow refresh can never resurrect a session that was logged
// out or replaced in the meantime.
type Controller struct {
	store       *credentials.Store
	refresher   Refresher
	state       *SessionState
	codec       *token.Codec
	navigator   Navigator
	signInRoute string

	leeway  time.Duration
	nowTime func() time.Time

	mu     sync.Mutex // serialises identity changes and guards epoch/closed
	epoch  uint64
	closed bool
	done   chan struct{}
	flight singleflight.Group
}

// ControllerOption defines a function type to modify the Controller instance.
type ControllerOption func(*Controller)

// WithNowTime sets the clock used for expiry checks (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.nowTime = nowFunc
	}
}

// WithLeeway tolerates clock skew when deciding a token has expired.
func WithLeeway(leeway time.Duration) ControllerOption {
	return func(c *Controller) {
		c.leeway = leeway
	}
}

// WithCodec replaces the token codec. It takes precedence over WithNowTime and WithLeeway.
func WithCodec(codec *token.Codec) ControllerOption {
	return func(c *Controller) {
		c.codec = codec
	}
}

func WithNavigator(n Navigator) ControllerOption {
	return func(c *Controller) {
		c.navigator = n
	}
}

// WithSignInRoute sets where Logout navigates to. Defaults to /login.
func WithSignInRoute(route string) ControllerOption {
	return func(c *Controller) {
		if strings.TrimSpace(route) != "" {
			c.signInRoute = route
		}
	}
}

func NewController(store *credentials.Store, refresher Refresher, options ...ControllerOption) (*Controller, error) {
	if store == nil {
		return nil, errors.New("[NewController] credential store is required")
	}
	if refresher == nil {
		return nil, errors.New("[NewController] refresher is required")
	}

	c := &Controller{
		store:       store,
		refresher:   refresher,
		state:       NewSessionState(),
		navigator:   NavigatorFunc(func(string) {}),
		signInRoute: defaultSignInRoute,
		done:        make(chan struct{}),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.codec == nil {
		codecOpts := []token.CodecOption{token.WithLeeway(c.leeway)}
		if c.nowTime != nil {
			codecOpts = append(codecOpts, token.WithNowTime(c.nowTime))
		}
		c.codec = token.NewCodec(codecOpts...)
	}
	return c, nil
}

// State exposes the session for subscribers such as route guards.
func (c *Controller) State() *SessionState {
	return c.state
}

func (c *Controller) Session() Session {
	return c.state.Snapshot()
}

// Start is the on-mount transition: Validating, then Validate.
func (c *Controller) Start(ctx context.Context) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.state.set(loadingSession())
	c.mu.Unlock()

	return c.Validate(ctx)
}

// Validate settles the session from the stored credentials. It never fails:
// anything unreadable, expired or rejected ends Unauthenticated with an empty store.
// An unexpired access token is trusted without a network call.
func (c *Controller) Validate(ctx context.Context) bool {
	epoch := c.currentEpoch()

	rec, err := c.store.Load(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("[Controller.Validate] no usable credentials")
		c.invalidate(ctx, epoch)
		return false
	}

	if !c.codec.IsExpired(rec.AccessToken) {
		return c.authenticate(epoch, rec.User)
	}

	log.Debug().Msg("[Controller.Validate] access token expired, attempting silent refresh")
	if _, err := c.Refresh(ctx); err != nil {
		return false
	}
	return c.Session().IsAuthenticated
}

// Login records a successful credential exchange. The server's response is
// trusted: the session is Authenticated immediately, without revalidation.
// Logging in as a different user passes through Unauthenticated first.
func (c *Controller) Login(ctx context.Context, accessToken, refreshToken string, user users.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ControllerClosedErr
	}

	current := c.state.Snapshot()
	if current.IsAuthenticated && !current.User.SameIdentity(user) {
		c.state.set(unauthenticatedSession())
	}

	if err := c.store.Save(ctx, accessToken, refreshToken, user); err != nil {
		c.epoch++
		_ = c.store.Clear(ctx)
		c.state.set(unauthenticatedSession())
		return errors.Wrap(err, "[Controller.Login] failed to persist credentials")
	}

	c.epoch++
	c.state.set(authenticatedSession(user))
	log.Info().Str("user_id", user.ID).Msg("[Controller.Login] signed in")
	return nil
}

// Logout clears the store, publishes Unauthenticated and navigates to the
// sign-in route. The session is Unauthenticated even if clearing the store fails.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ControllerClosedErr
	}
	c.epoch++
	err := c.store.Clear(ctx)
	c.state.set(unauthenticatedSession())
	route := c.signInRoute
	c.mu.Unlock()

	c.navigator.Navigate(route)
	if err != nil {
		return errors.Wrap(err, "[Controller.Logout] failed to clear credentials")
	}
	return nil
}

// Invalidate drops the session without navigating. Guards observing the state
// do the redirect.
func (c *Controller) Invalidate(ctx context.Context) {
	c.invalidate(ctx, c.currentEpoch())
}

// AccessToken reads the current access token from the store on every call.
func (c *Controller) AccessToken(ctx context.Context) (string, bool) {
	rec, err := c.store.Load(ctx)
	if err != nil {
		return "", false
	}
	return rec.AccessToken, true
}

// Refresh performs a silent refresh and returns the new access token.
// Concurrent callers share one in-flight request. On any failure the session
// is invalidated before Refresh returns, unless a login or logout happened
// while the request was in flight.
func (c *Controller) Refresh(ctx context.Context) (string, error) {
	// The shared call must outlive any single caller's context.
	ch := c.flight.DoChan(refreshFlightKey, func() (interface{}, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Controller) refresh(ctx context.Context) (string, error) {
	epoch := c.currentEpoch()

	rec, err := c.store.Load(ctx)
	if err != nil {
		c.invalidate(ctx, epoch)
		return "", errors.Wrap(ErrSessionExpired, "[Controller.Refresh] no refresh token")
	}
	if c.codec.IsExpired(rec.RefreshToken) {
		log.Info().Msg("[Controller.Refresh] refresh token expired")
		c.invalidate(ctx, epoch)
		return "", errors.Wrap(ErrRefreshTokenExpired, "[Controller.Refresh]")
	}

	pair, err := c.refresher.RefreshTokens(ctx, rec.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("[Controller.Refresh] refresh rejected, signing out")
		c.invalidate(ctx, epoch)
		return "", errors.Wrapf(ErrRefreshRejected, "[Controller.Refresh] %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.epoch != epoch {
		log.Debug().Msg("[Controller.Refresh] session changed while refreshing, discarding tokens")
		return "", ErrSessionChanged
	}
	if err := c.store.Save(ctx, pair.AccessToken, pair.RefreshToken, rec.User); err != nil {
		log.Err(err).Msg("[Controller.Refresh] failed to persist refreshed tokens")
		c.invalidateLocked(ctx)
		return "", errors.Wrap(ErrSessionExpired, "[Controller.Refresh] failed to persist tokens")
	}
	c.publishAuthenticatedLocked(rec.User)
	log.Debug().Str("user_id", rec.User.ID).Msg("[Controller.Refresh] tokens refreshed")
	return pair.AccessToken, nil
}

// Watch revalidates every interval while the session is authenticated, until
// ctx is done or the controller is closed.
func (c *Controller) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			if c.Session().IsAuthenticated && !c.Validate(ctx) {
				log.Info().Msg("[Controller.Watch] session no longer valid")
			}
		}
	}
}

// TokenSource exposes the session to golang.org/x/oauth2 consumers. Expired
// access tokens are refreshed through the same single-flight path.
func (c *Controller) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &sessionTokenSource{ctx: ctx, c: c}
}

type sessionTokenSource struct {
	ctx context.Context
	c   *Controller
}

func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	rec, err := ts.c.store.Load(ts.ctx)
	if err != nil {
		return nil, errors.Wrap(ErrSessionExpired, "[sessionTokenSource.Token]")
	}
	if ts.c.codec.IsExpired(rec.AccessToken) {
		if _, err := ts.c.Refresh(ts.ctx); err != nil {
			return nil, err
		}
		if rec, err = ts.c.store.Load(ts.ctx); err != nil {
			return nil, errors.Wrap(ErrSessionExpired, "[sessionTokenSource.Token]")
		}
	}
	return api.TokenPair{AccessToken: rec.AccessToken, RefreshToken: rec.RefreshToken}.OAuth2Token(), nil
}

// Close stops Watch loops and detaches subscribers. In-flight refreshes
// finish but their results are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	c.state.Close()
}

func (c *Controller) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// authenticate publishes the stored user if nothing changed since epoch was read.
func (c *Controller) authenticate(epoch uint64, user users.User) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.epoch != epoch {
		return c.state.Snapshot().IsAuthenticated
	}
	c.publishAuthenticatedLocked(user)
	return true
}

func (c *Controller) publishAuthenticatedLocked(user users.User) {
	current := c.state.Snapshot()
	if current.IsAuthenticated && !current.User.SameIdentity(user) {
		c.epoch++
		c.state.set(unauthenticatedSession())
	}
	c.state.set(authenticatedSession(user))
}

func (c *Controller) invalidate(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.epoch != epoch {
		return
	}
	c.invalidateLocked(ctx)
}

func (c *Controller) invalidateLocked(ctx context.Context) {
	c.epoch++
	if err := c.store.Clear(ctx); err != nil {
		log.Err(err).Msg("[Controller.invalidate] failed to clear credentials")
	}
	c.state.set(unauthenticatedSession())
}
