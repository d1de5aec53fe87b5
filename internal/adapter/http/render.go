package adapthttp

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"guestbook/internal/domain"
	"guestbook/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageData is what every page template receives.
type pageData struct {
	Session  domain.Session
	Messages []domain.Message
	ForumURL string

	// Notice is an inline error for the current request; Flash is a
	// notice carried over from the previous redirect.
	Notice string
	Flash  string

	// Form values echoed back after a failed submission.
	Username string
	Content  string
}

type pages struct {
	byName map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"initial": func(name string) string {
		r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
		if r == utf8.RuneError {
			return "?"
		}
		return string(unicode.ToUpper(r))
	},
	"timestamp": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04 UTC")
	},
}

func mustParsePages() *pages {
	p := &pages{byName: map[string]*template.Template{}}
	for _, name := range []string{"index.html", "login.html", "messages.html"} {
		p.byName[name] = template.Must(template.New("layout.html").
			Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/partials.html", "templates/"+name))
	}
	return p
}

// render executes a page into a buffer first so template failures become a
// clean 500 rather than a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	if data.ForumURL == "" {
		data.ForumURL = s.forumURL
	}
	if data.Flash == "" {
		data.Flash = s.takeFlash(w, r)
	}

	var buf bytes.Buffer
	if err := s.pages.byName[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		logging.FromContext(r.Context()).Error("render page", "page", name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
