package adapthttp

import (
	"errors"
	"net/http"

	"guestbook/internal/app"
	"guestbook/internal/logging"
)

// handleIndex renders the combined page: guestbook for everyone, profile and
// post form for logged-in users, inline login form otherwise.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.renderIndex(w, r, http.StatusOK, pageData{})
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	msgs, err := s.guestbook.ListRecent(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("list messages", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	data.Session = sessionFrom(r.Context())
	data.Messages = msgs
	s.render(w, r, status, "index.html", data)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		msgs, err := s.guestbook.ListRecent(r.Context())
		if err != nil {
			logging.FromContext(r.Context()).Error("list messages", "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		s.render(w, r, http.StatusOK, "messages.html", pageData{
			Session:  sessionFrom(r.Context()),
			Messages: msgs,
		})
	case http.MethodPost:
		s.handlePostMessage(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !sess.Authenticated() {
		redirect(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, pageData{Notice: "Invalid form submission"})
		return
	}
	content := r.PostFormValue("content")

	id, err := s.guestbook.Post(r.Context(), sess, content)
	switch {
	case errors.Is(err, app.ErrNotAuthenticated):
		redirect(w, r, "/login")
		return
	case errors.Is(err, app.ErrEmptyMessage):
		s.renderIndex(w, r, http.StatusBadRequest, pageData{Notice: "Message cannot be empty"})
		return
	case errors.Is(err, app.ErrInvalidEncoding):
		s.renderIndex(w, r, http.StatusBadRequest, pageData{Notice: "Message contains invalid characters"})
		return
	case errors.Is(err, app.ErrMessageTooLong):
		s.renderIndex(w, r, http.StatusBadRequest, pageData{Notice: "Message is too long", Content: content})
		return
	case err != nil:
		logging.FromContext(r.Context()).Error("post message", "user_id", sess.UserID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logging.FromContext(r.Context()).Info("message posted", "id", id, "user_id", sess.UserID)
	s.setFlash(w, "Message posted.")
	redirect(w, r, "/")
}

func (s *Server) handleAPIMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	msgs, err := s.guestbook.ListRecent(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("list messages", "err", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": msgs})
}
