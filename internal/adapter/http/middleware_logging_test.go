package adapthttp

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"guestbook/internal/domain"
	"guestbook/internal/logging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	s := &Server{logger: slog.New(slog.NewTextHandler(&buf, nil))}

	var inner string
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("inside")
		inner = buf.String()
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	})
	handler := s.loggingMiddleware(nextHandler)

	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	reqID := w.Header().Get("X-Request-ID")
	_, err := uuid.Parse(reqID)
	require.NoError(t, err, "expected a uuid request id, got %q", reqID)
	assert.Contains(t, inner, "request_id="+reqID, "handler logger carries the request id")

	logOutput := buf.String()
	for _, want := range []string{"method=GET", "path=/test-path", "status=418", "request_id=" + reqID} {
		assert.Contains(t, logOutput, want)
	}
}

func TestLoggingMiddleware_KeepsIncomingRequestID(t *testing.T) {
	s := &Server{logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))}
	handler := s.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	id := uuid.NewString()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", id)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid\nforged")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid\nforged", w.Header().Get("X-Request-ID"), "malformed request ids are replaced")
}

func TestSessionFromContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.False(t, sessionFrom(req.Context()).Authenticated(), "anonymous by default")

	sess := domain.Session{ID: "h", UserID: 7, Token: "T1"}
	got := sessionFrom(withSession(req.Context(), sess))
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "h", got.ID)
}

func TestFlashCookies(t *testing.T) {
	s := &Server{cookieSecure: true}

	w := httptest.NewRecorder()
	s.setFlash(w, "Message posted.")
	set := w.Result().Cookies()
	require.Len(t, set, 1)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookieName, Value: set[0].Value})
	w = httptest.NewRecorder()
	assert.Equal(t, "Message posted.", s.takeFlash(w, req))

	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, flashCookieName, cleared[0].Name)
	assert.Equal(t, -1, cleared[0].MaxAge)
	for _, c := range []*http.Cookie{set[0], cleared[0]} {
		assert.True(t, c.Secure)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, "/", c.Path)
	}

	w = httptest.NewRecorder()
	assert.Empty(t, s.takeFlash(w, httptest.NewRequest("GET", "/", nil)))
	assert.Empty(t, w.Result().Cookies(), "nothing to clear")
}
