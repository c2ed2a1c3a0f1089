package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/gundaabinav333/authshell/internal/core/domain"
	"github.com/gundaabinav333/authshell/internal/telemetry/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages maps a page name to its parsed layout+content template.
type pages map[string]*template.Template

func parsePages() (pages, error) {
	p := make(pages)
	for _, name := range []string{"login", "dashboard", "forbidden"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		p[name] = t
	}
	return p, nil
}

type loginPage struct {
	Title     string
	LoginPath string
	Error     string
	Email     string
	From      string
}

type dashboardPage struct {
	Title string
	User  *domain.Credential
}

type forbiddenPage struct {
	Title string
}

// render executes into a buffer first so a template error still yields a
// clean 500.
func (p pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := p[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.FromContext(r.Context()).Error("render page", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
