package server

import (
	"net/http"

	"github.com/jrsteele09/fogeapi-client/forms"
)

func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.config.GetDashboardRoute(), http.StatusSeeOther)
	}
}

// SessionHandler reports the current session and the last route the session
// asked the UI to navigate to.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newSessionView(s.session.Session(), s.navigator.Last()))
	}
}

// LoadingHandler is the neutral view guards serve while the session settles.
func (s *Server) LoadingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusAccepted, map[string]string{"view": "loading", "message": "Verifying authentication..."})
	}
}

func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, pageView{Page: "login", Fields: []string{"email", "password"}})
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := readFields(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorView{Title: "Invalid Request", Message: "Please check your input and try again"})
			return
		}

		user, err := s.accounts.SignIn(r.Context(), forms.LoginForm{Email: fields["email"], Password: fields["password"]})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, actionView{Message: "Welcome back, " + user.Name(), Redirect: s.config.GetDashboardRoute(), User: user})
	}
}

func (s *Server) SignupPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, pageView{Page: "signup", Fields: []string{"userName", "email", "password", "confirmPassword"}})
	}
}

func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := readFields(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorView{Title: "Invalid Request", Message: "Please check your input and try again"})
			return
		}

		msg, err := s.accounts.SignUp(r.Context(), forms.SignupForm{
			UserName:        fields["userName"],
			Email:           fields["email"],
			Password:        fields["password"],
			ConfirmPassword: fields["confirmPassword"],
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		// Registration does not sign in; the user continues at the sign-in form.
		writeJSON(w, http.StatusCreated, actionView{Message: msg, Redirect: s.config.GetSignInRoute()})
	}
}

func (s *Server) ForgotPasswordPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, pageView{Page: "forgot-password", Fields: []string{"email"}})
	}
}

func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := readFields(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorView{Title: "Invalid Request", Message: "Please check your input and try again"})
			return
		}

		msg, err := s.accounts.ForgotPassword(r.Context(), forms.ForgotPasswordForm{Email: fields["email"]})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, actionView{Message: msg})
	}
}

func (s *Server) ResetPasswordPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := pageView{Page: "reset-password", Fields: []string{"newPassword", "confirmPassword"}}
		token := r.URL.Query().Get("token")
		if token == "" {
			view.Warning = "No reset token found. Please request a new password reset."
		} else {
			view.Values = map[string]string{"token": token}
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := readFields(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorView{Title: "Invalid Request", Message: "Please check your input and try again"})
			return
		}
		token := fields["token"]
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		msg, err := s.accounts.ResetPassword(r.Context(), forms.ResetPasswordForm{
			Token:           token,
			NewPassword:     fields["newPassword"],
			ConfirmPassword: fields["confirmPassword"],
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, actionView{Message: msg, Redirect: s.config.GetSignInRoute()})
	}
}

// PasswordStrengthHandler grades a password as the user types it.
func (s *Server) PasswordStrengthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := readFields(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorView{Title: "Invalid Request", Message: "Please check your input and try again"})
			return
		}
		strength := forms.PasswordStrength(fields["password"])
		writeJSON(w, http.StatusOK, map[string]any{"strength": strength.String(), "level": int(strength)})
	}
}
