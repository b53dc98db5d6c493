package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/tenantry/tenantry/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer serves the maintenance confirmation pages. The confirmation link
// is opened by a bare browser navigation with no script to interpret JSON,
// so every outcome renders as HTML.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

type ConfirmedPage struct {
	Description   string
	ScheduledTime string
	VendorName    string
}

func (r *Renderer) Confirmed(w http.ResponseWriter, page ConfirmedPage) {
	r.render(w, http.StatusOK, "confirmed.html", page)
}

func (r *Renderer) NotFound(w http.ResponseWriter) {
	r.render(w, http.StatusNotFound, "not_found.html", nil)
}

func (r *Renderer) BadRequest(w http.ResponseWriter) {
	r.render(w, http.StatusBadRequest, "bad_request.html", nil)
}

func (r *Renderer) Error(w http.ResponseWriter) {
	r.render(w, http.StatusInternalServerError, "error.html", nil)
}

func (r *Renderer) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		logger.Error("Failed to render page", "error", err, "template", name)
	}
}
