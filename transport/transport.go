// Package transport attaches the session's access token to outgoing requests
// and recovers once from an expired token.
package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID makes requests sent with ctx reuse id instead of minting one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFor(req *http.Request) string {
	if id := req.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	if id, ok := req.Context().Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Session is the slice of auth.Controller the transport is allowed to use.
// It never reads or writes the credential store itself; Refresh clears the
// session when it fails.
type Session interface {
	AccessToken(ctx context.Context) (string, bool)
	Refresh(ctx context.Context) (string, error)
}

// Transport is an http.RoundTripper implementing attach → dispatch →
// (on 401) refresh → retry. At most one refresh and one retry happen per
// request, and only a 401 triggers them.
type Transport struct {
	Session Session
	Base    http.RoundTripper
}

func New(session Session, base http.RoundTripper) *Transport {
	return &Transport{Session: session, Base: base}
}

// Client returns an http.Client that sends every request through t.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	requestID := requestIDFor(req)

	accessToken, _ := t.Session.AccessToken(ctx)
	resp, err := t.base().RoundTrip(authorize(req, requestID, accessToken))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	logger := log.With().Str("request_id", requestID).Str("method", req.Method).Str("path", req.URL.Path).Logger()

	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		logger.Warn().Msg("[Transport.RoundTrip] 401 on a request whose body cannot be replayed")
		return resp, nil
	}

	logger.Debug().Msg("[Transport.RoundTrip] 401, refreshing session")
	newToken, err := t.Session.Refresh(ctx)
	if err != nil {
		// The caller gets the original failure; guards handle the redirect.
		logger.Info().Err(err).Msg("[Transport.RoundTrip] refresh failed")
		return resp, nil
	}

	retry := authorize(req, requestID, newToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			logger.Err(err).Msg("[Transport.RoundTrip] failed to rewind request body")
			return resp, nil
		}
		retry.Body = body
	}
	discard(resp)

	logger.Debug().Msg("[Transport.RoundTrip] retrying with refreshed token")
	return t.base().RoundTrip(retry)
}

// authorize clones req with the bearer token and request id set.
// RoundTrippers must not modify the caller's request.
func authorize(req *http.Request, requestID, accessToken string) *http.Request {
	r := req.Clone(req.Context())
	r.Header.Set(RequestIDHeader, requestID)
	if accessToken != "" {
		r.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		r.Header.Del("Authorization")
	}
	return r
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
