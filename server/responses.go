package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/jrsteele09/fogeapi-client/api"
	"github.com/jrsteele09/fogeapi-client/auth"
	"github.com/jrsteele09/fogeapi-client/forms"
	"github.com/jrsteele09/fogeapi-client/users"
	"github.com/rs/zerolog/log"
)

const maxFormBody = 1 << 20

type errorView struct {
	Title   string             `json:"title"`
	Message string             `json:"message"`
	Fields  []forms.FieldError `json:"fields,omitempty"`
}

type sessionView struct {
	Status          string      `json:"status"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	IsLoading       bool        `json:"isLoading"`
	User            *users.User `json:"user,omitempty"`
	NavigateTo      string      `json:"navigateTo,omitempty"`
}

type pageView struct {
	Page    string            `json:"page"`
	Fields  []string          `json:"fields,omitempty"`
	Values  map[string]string `json:"values,omitempty"`
	Warning string            `json:"warning,omitempty"`
}

type actionView struct {
	Message  string      `json:"message,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
	User     *users.User `json:"user,omitempty"`
}

func newSessionView(s auth.Session, navigateTo string) sessionView {
	return sessionView{
		Status:          s.Status.String(),
		IsAuthenticated: s.IsAuthenticated,
		IsLoading:       s.IsLoading,
		User:            s.User,
		NavigateTo:      navigateTo,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("[writeJSON] failed to encode response")
	}
}

// writeError maps validation failures and backend status errors onto the
// response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs forms.ValidationErrors
	var statusErr *api.StatusError

	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusBadRequest, errorView{Title: "Validation Error", Message: fieldErrs[0].Message, Fields: fieldErrs})
	case errors.As(err, &statusErr):
		writeJSON(w, statusErr.StatusCode, errorView{Title: statusErr.Title(), Message: statusErr.Description()})
	default:
		log.Err(err).Str("path", r.URL.Path).Msg("[Server] request failed")
		writeJSON(w, http.StatusBadGateway, errorView{Title: "Server Error", Message: "Something went wrong on our end. Please try again"})
	}
}

// writeSessionError is writeError for signed-in routes. A 401 that survived
// the refresh-and-retry means the session is gone, so the caller is sent to
// sign in.
func (s *Server) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, api.ErrUnauthorized) && !s.session.Session().IsAuthenticated {
		http.Redirect(w, r, s.config.GetSignInRoute(), http.StatusSeeOther)
		return
	}
	s.writeError(w, r, err)
}

// readFields accepts either a JSON object of strings or a regular HTML form post.
func readFields(r *http.Request) (map[string]string, error) {
	fields := make(map[string]string)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxFormBody)).Decode(&fields); err != nil && err != io.EOF {
			return nil, err
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	for k := range r.PostForm {
		fields[k] = r.PostForm.Get(k)
	}
	return fields, nil
}
