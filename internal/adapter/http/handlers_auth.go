// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"errors"
	"net/http"

	"guestbook/internal/app"
	"guestbook/internal/domain"
	"guestbook/internal/logging"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if sessionFrom(r.Context()).Authenticated() {
			redirect(w, r, "/")
			return
		}
		s.render(w, r, http.StatusOK, "login.html", pageData{})
	case http.MethodPost:
		s.handleLoginSubmit(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login.html", pageData{Notice: "Invalid form submission"})
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	log := logging.FromContext(r.Context())

	sess, handle, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		status, notice := loginFailure(err)
		if status == http.StatusInternalServerError {
			log.Error("login", "err", err)
		} else {
			log.Info("login refused", "username", username, "status", status)
		}
		s.render(w, r, status, "login.html", pageData{Notice: notice, Username: username})
		return
	}

	// Replace rather than stack sessions when someone logs in again.
	if prev := sessionFrom(r.Context()); prev.ID != "" {
		if err := s.auth.Logout(r.Context(), prev.ID); err != nil {
			log.Warn("drop previous session", "err", err)
		}
	}

	log.Info("login", "user_id", sess.UserID, "groups", len(sess.Groups))
	s.setSessionCookie(w, handle)
	s.setFlash(w, "Successfully logged in!")
	redirect(w, r, "/")
}

// loginFailure maps a login error to a status code and a notice for the user.
func loginFailure(err error) (int, string) {
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, app.ErrMissingCredentials):
		return http.StatusBadRequest, "Username and password are required"
	case errors.Is(err, app.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password"
	case errors.As(err, &upstream):
		return http.StatusBadGateway, "Connection error to the forum: " + upstream.Err.Error()
	default:
		return http.StatusInternalServerError, "Login failed, please try again"
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if sess := sessionFrom(r.Context()); sess.ID != "" {
		if err := s.auth.Logout(r.Context(), sess.ID); err != nil {
			logging.FromContext(r.Context()).Error("logout", "err", err)
		}
	}

	s.clearSessionCookie(w)
	s.setFlash(w, "You have been logged out.")
	redirect(w, r, "/login")
}
