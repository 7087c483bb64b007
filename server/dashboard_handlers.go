package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/fogeapi-client/api"
)

type dashboardView struct {
	Page    string       `json:"page"`
	Session sessionView  `json:"session"`
	APIKeys []api.APIKey `json:"apiKeys"`
}

type schemasView struct {
	Page    string       `json:"page"`
	Schemas []api.Schema `json:"schemas"`
}

// DashboardHandler shows the signed-in user and their API keys. The user is
// refreshed from /auth/me so an expired token surfaces here and not later.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if _, err := s.client.Me(ctx); err != nil {
			s.writeSessionError(w, r, err)
			return
		}
		keys, err := s.client.ListAPIKeys(ctx)
		if err != nil {
			s.writeSessionError(w, r, err)
			return
		}
		if keys == nil {
			keys = []api.APIKey{}
		}
		writeJSON(w, http.StatusOK, dashboardView{
			Page:    "dashboard",
			Session: newSessionView(s.session.Session(), ""),
			APIKeys: keys,
		})
	}
}

func (s *Server) GenerateAPIKeyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := readFields(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorView{Title: "Invalid Request", Message: "Please check your input and try again"})
			return
		}
		resp, err := s.client.GenerateAPIKey(r.Context(), strings.TrimSpace(fields["name"]))
		if err != nil {
			s.writeSessionError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (s *Server) DeleteAPIKeyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.client.DeleteAPIKey(r.Context(), r.PathValue("id")); err != nil {
			s.writeSessionError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, actionView{Message: "API key deleted"})
	}
}

func (s *Server) CustomSchemasHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schemas, err := s.client.ListSchemas(r.Context())
		if err != nil {
			s.writeSessionError(w, r, err)
			return
		}
		if schemas == nil {
			schemas = []api.Schema{}
		}
		writeJSON(w, http.StatusOK, schemasView{Page: "custom-schemas", Schemas: schemas})
	}
}

// CreateSchemaHandler takes {apiPath, responseSchema}; field types are passed
// through to the backend unchecked.
func (s *Server) CreateSchemaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.CreateSchemaRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxFormBody)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorView{Title: "Invalid Request", Message: "Please check your input and try again"})
			return
		}
		req.APIPath = strings.TrimSpace(req.APIPath)
		if req.APIPath == "" || len(req.ResponseSchema) == 0 {
			writeJSON(w, http.StatusBadRequest, errorView{Title: "Validation Error", Message: "An API path and at least one field are required"})
			return
		}

		resp, err := s.client.CreateSchema(r.Context(), req)
		if err != nil {
			s.writeSessionError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, actionView{Message: resp.Message})
	}
}

func (s *Server) DeleteSchemaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.client.DeleteSchema(r.Context(), r.PathValue("id")); err != nil {
			s.writeSessionError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, actionView{Message: "Schema deleted"})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.accounts.SignOut(r.Context()); err != nil {
			// The session is already signed out; only the store cleanup failed.
			s.writeSessionError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, actionView{Message: "Signed out", Redirect: s.config.GetSignInRoute()})
	}
}
