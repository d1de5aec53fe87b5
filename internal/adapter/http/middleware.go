package adapthttp

import (
	"context"
	"net/http"
	"time"

	"guestbook/internal/domain"
	"guestbook/internal/logging"

	"github.com/google/uuid"
)

type contextKey string

const sessionContextKey contextKey = "session"

// withSession returns a copy of ctx carrying the visitor's session.
func withSession(ctx context.Context, sess domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// sessionFrom returns the session stored by sessionMiddleware, or the
// anonymous session.
func sessionFrom(ctx context.Context) domain.Session {
	sess, _ := ctx.Value(sessionContextKey).(domain.Session)
	return sess
}

// sessionMiddleware resolves the session cookie into a session snapshot for
// the rest of the request. Stale cookies are cleared.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := s.auth.Current(r.Context(), cookie.Value)
		if err != nil {
			logging.FromContext(r.Context()).Error("load session", "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !sess.Authenticated() {
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		sess.ID = cookie.Value
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware assigns a request ID and logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		logger := s.logger.With("request_id", reqID)
		ctx := logging.WithLogger(r.Context(), logger)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
