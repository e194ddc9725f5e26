package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/UkralStul/blog-api/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// HomeHandler рендерит главную страницу со списком постов.
type HomeHandler struct {
	store storage.Storage
	tmpl  *template.Template
}

// NewHomeHandler разбирает встроенные шаблоны.
func NewHomeHandler(store storage.Storage) *HomeHandler {
	return &HomeHandler{
		store: store,
		tmpl:  template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// Homepage обрабатывает GET /: список постов, новые первыми.
func (h *HomeHandler) Homepage(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.GetPosts(r.Context())
	if err != nil {
		respondStorageError(w, err, noPostMessage)
		return
	}

	// Рендер в буфер, чтобы ошибка шаблона не ушла клиенту половиной страницы
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "homepage.html", map[string]interface{}{
		"Posts": posts,
	}); err != nil {
		log.Printf("failed to render homepage: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("failed to write homepage: %v", err)
	}
}
