// Package fakebackend is an in-process stand-in for the FogeAPI backend used by tests.
package fakebackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/fogeapi-client/api"
	"github.com/jrsteele09/fogeapi-client/internal/utils"
	"github.com/jrsteele09/fogeapi-client/token"
	"github.com/jrsteele09/fogeapi-client/token/tokenfake"
	"github.com/jrsteele09/fogeapi-client/users"
)

// ResetToken is the only reset token the backend accepts.
const ResetToken = "reset-ok"

type account struct {
	user     users.User
	password string
}

type Backend struct {
	*httptest.Server

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	mu            sync.Mutex
	accounts      map[string]*account // by email
	access        map[string]string   // token -> user id
	refresh       map[string]string   // token -> user id
	apiKeys       map[string][]api.APIKey
	schemas       map[string][]api.Schema
	refreshStatus int
	refreshDelay  time.Duration
	lastBodies    map[string]string

	refreshCalls atomic.Int32
	meCalls      atomic.Int32
	loginCalls   atomic.Int32
	hits         sync.Map // path -> *atomic.Int32
}

// New starts a backend that is shut down when the test ends.
func New(t testing.TB) *Backend {
	b := &Backend{
		AccessTTL:  10 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		accounts:   make(map[string]*account),
		access:     make(map[string]string),
		refresh:    make(map[string]string),
		apiKeys:    make(map[string][]api.APIKey),
		schemas:    make(map[string][]api.Schema),
		lastBodies: make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+api.RouteRegister, b.count(b.register))
	mux.HandleFunc("POST "+api.RouteLogin, b.count(b.login))
	mux.HandleFunc("GET "+api.RouteRefresh, b.count(b.refreshTokens))
	mux.HandleFunc("GET "+api.RouteMe, b.count(b.authed(b.me)))
	mux.HandleFunc("POST "+api.RouteForgotPassword, b.count(b.forgotPassword))
	mux.HandleFunc("POST "+api.RouteResetPassword, b.count(b.resetPassword))
	mux.HandleFunc("GET "+api.RouteListAPIKeys, b.count(b.authed(b.listAPIKeys)))
	mux.HandleFunc("POST "+api.RouteGenerateAPIKey, b.count(b.authed(b.generateAPIKey)))
	mux.HandleFunc("DELETE "+api.RouteDeleteAPIKey+"{id}", b.count(b.authed(b.deleteAPIKey)))
	mux.HandleFunc("POST "+api.RouteCreateSchema, b.count(b.authed(b.createSchema)))
	mux.HandleFunc("GET "+api.RouteListSchemas, b.count(b.authed(b.listSchemas)))
	mux.HandleFunc("DELETE "+api.RouteDeleteSchema+"{id}", b.count(b.authed(b.deleteSchema)))
	mux.HandleFunc("POST /echo", b.count(b.authed(b.echo)))

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

// AddUser registers an account directly and returns the stored user.
func (b *Backend) AddUser(email, password, userName string) users.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := users.User{ID: uuid.NewString(), Email: email}
	if userName != "" {
		u.DisplayName = utils.Ptr(userName)
	}
	b.accounts[email] = &account{user: u, password: password}
	return u
}

// IssueTokens mints a pair for userID that the backend will accept.
func (b *Backend) IssueTokens(userID string) api.TokenPair {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(userID)
}

func (b *Backend) issueLocked(userID string) api.TokenPair {
	now := token.NowTimeFunc()
	pair := api.TokenPair{
		AccessToken:  tokenfake.Mint(userID, now.Add(b.AccessTTL)),
		RefreshToken: tokenfake.Mint(userID, now.Add(b.RefreshTTL)),
	}
	b.access[pair.AccessToken] = userID
	b.refresh[pair.RefreshToken] = userID
	return pair
}

// RevokeAccess makes the backend reject an access token that is still unexpired.
func (b *Backend) RevokeAccess(accessToken string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.access, accessToken)
}

// FailRefresh makes /auth/refresh answer with status. Zero restores normal behaviour.
func (b *Backend) FailRefresh(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshStatus = status
}

// DelayRefresh holds every refresh response for d.
func (b *Backend) DelayRefresh(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshDelay = d
}

func (b *Backend) RefreshCalls() int { return int(b.refreshCalls.Load()) }
func (b *Backend) MeCalls() int      { return int(b.meCalls.Load()) }
func (b *Backend) LoginCalls() int   { return int(b.loginCalls.Load()) }

// Hits returns how many requests reached path.
func (b *Backend) Hits(path string) int {
	if v, ok := b.hits.Load(path); ok {
		return int(v.(*atomic.Int32).Load())
	}
	return 0
}

// LastBody returns the last request body /echo saw for the given request id.
func (b *Backend) LastBody(requestID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastBodies[requestID]
}

func (b *Backend) count(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := b.hits.LoadOrStore(r.URL.Path, new(atomic.Int32))
		v.(*atomic.Int32).Add(1)
		next(w, r)
	}
}

func (b *Backend) authed(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		userID, ok := b.access[tok]
		b.mu.Unlock()
		if !ok || token.IsExpired(tok) {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r, userID)
	}
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}
	b.mu.Lock()
	_, exists := b.accounts[req.Email]
	b.mu.Unlock()
	if exists {
		writeMessage(w, http.StatusConflict, "User already exists")
		return
	}
	b.AddUser(req.Email, req.Password, req.UserName)
	writeJSON(w, http.StatusCreated, api.MessageResponse{Message: "User registered successfully"})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	b.loginCalls.Add(1)
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[req.Email]
	if !ok || acc.password != req.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	pair := b.issueLocked(acc.user.ID)
	writeJSON(w, http.StatusOK, api.LoginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, User: acc.user})
}

func (b *Backend) refreshTokens(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)
	b.mu.Lock()
	status, delay := b.refreshStatus, b.refreshDelay
	b.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		writeMessage(w, status, "refresh failed")
		return
	}

	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	defer b.mu.Unlock()
	userID, ok := b.refresh[tok]
	if !ok || token.IsExpired(tok) {
		writeMessage(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(b.refresh, tok)
	writeJSON(w, http.StatusOK, b.issueLocked(userID))
}

func (b *Backend) me(w http.ResponseWriter, _ *http.Request, userID string) {
	b.meCalls.Add(1)
	u, ok := b.userByID(userID)
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]users.User{"user": u})
}

func (b *Backend) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req api.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "email is required")
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Password reset link sent"})
}

func (b *Backend) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req api.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token != ResetToken {
		writeMessage(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Password reset successful"})
}

func (b *Backend) listAPIKeys(w http.ResponseWriter, _ *http.Request, userID string) {
	b.mu.Lock()
	keys := append([]api.APIKey{}, b.apiKeys[userID]...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string][]api.APIKey{"apiKeys": keys})
}

func (b *Backend) generateAPIKey(w http.ResponseWriter, r *http.Request, userID string) {
	var req api.GenerateAPIKeyRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	key := api.APIKey{
		ID:        uuid.NewString(),
		Name:      utils.FirstNonEmpty(req.Name, "default"),
		Key:       strings.ReplaceAll(uuid.NewString(), "-", ""),
		CreatedAt: token.NowTimeFunc().UTC().Truncate(time.Second),
		IsActive:  true,
	}
	b.mu.Lock()
	b.apiKeys[userID] = append(b.apiKeys[userID], key)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, api.GenerateAPIKeyResponse{Message: "API key generated", APIKey: &key})
}

func (b *Backend) deleteAPIKey(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := b.apiKeys[userID]
	for i := range keys {
		if keys[i].ID == id {
			b.apiKeys[userID] = append(keys[:i], keys[i+1:]...)
			writeMessage(w, http.StatusOK, "API key deleted")
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "API key not found")
}

func (b *Backend) createSchema(w http.ResponseWriter, r *http.Request, userID string) {
	var req api.CreateSchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.APIPath == "" || len(req.ResponseSchema) == 0 {
		writeMessage(w, http.StatusBadRequest, "apiPath and responseSchema are required")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.schemas[userID] {
		if s.APIPath == req.APIPath {
			writeMessage(w, http.StatusConflict, "API path already exists")
			return
		}
	}
	b.schemas[userID] = append(b.schemas[userID], api.Schema{ID: uuid.NewString(), APIPath: req.APIPath, ResponseSchema: req.ResponseSchema})
	writeJSON(w, http.StatusCreated, api.MessageResponse{Message: "Schema created"})
}

func (b *Backend) listSchemas(w http.ResponseWriter, _ *http.Request, userID string) {
	b.mu.Lock()
	schemas := append([]api.Schema{}, b.schemas[userID]...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string][]api.Schema{"userApis": schemas})
}

func (b *Backend) deleteSchema(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	schemas := b.schemas[userID]
	for i := range schemas {
		if schemas[i].ID == id {
			b.schemas[userID] = append(schemas[:i], schemas[i+1:]...)
			writeMessage(w, http.StatusOK, "Schema deleted")
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Schema not found")
}

// echo returns the request body so tests can check that retried requests replay it.
func (b *Backend) echo(w http.ResponseWriter, r *http.Request, _ string) {
	var body json.RawMessage
	_ = json.NewDecoder(r.Body).Decode(&body)
	b.mu.Lock()
	b.lastBodies[r.Header.Get("X-Request-ID")] = string(body)
	b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (b *Backend) userByID(id string) (users.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acc := range b.accounts {
		if acc.user.ID == id {
			return acc.user, true
		}
	}
	return users.User{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.MessageResponse{Message: msg})
}
