package handlers

import (
	_ "embed"
	"net/http"

	"github.com/porraza/porraza-server/middleware"
)

//go:embed index.html
var indexHTML []byte

// PagesHandler serves the single-page app shell for every page route.
// The route guard in front of it has already resolved the locale and
// handled the auth redirects; client-side routing does the rest.
type PagesHandler struct{}

func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

func (h *PagesHandler) ServeApp(w http.ResponseWriter, r *http.Request) {
	if locale := middleware.GetLocaleFromContext(r.Context()); locale != "" {
		w.Header().Set("Content-Language", locale)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}
