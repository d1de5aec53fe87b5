package adapthttp

import (
	"log/slog"
	"net/http"

	"guestbook/internal/app"
)

const sessionCookieName = "session"

// Options holds presentation and cookie settings for the Server.
type Options struct {
	// ForumURL is linked from the pages.
	ForumURL string
	// CookieSecure marks cookies Secure; set it when served over HTTPS.
	CookieSecure bool
	Logger       *slog.Logger
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth      *app.AuthService
	guestbook *app.GuestbookService
	pages     *pages
	logger    *slog.Logger

	forumURL     string
	cookieSecure bool
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, gb *app.GuestbookService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		auth:         auth,
		guestbook:    gb,
		pages:        mustParsePages(),
		logger:       logger,
		forumURL:     opts.ForumURL,
		cookieSecure: opts.CookieSecure,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/messages", s.handleAPIMessages)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.HandleFunc("/", s.handleIndex)
	root.HandleFunc("/login", s.handleLogin)
	root.HandleFunc("/logout", s.handleLogout)
	root.HandleFunc("/messages", s.handleMessages)

	return s.loggingMiddleware(withNoCache(s.sessionMiddleware(root)))
}
