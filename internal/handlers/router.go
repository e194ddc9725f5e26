package handlers

import (
	"net/http"

	"github.com/UkralStul/blog-api/internal/realtime"
	"github.com/UkralStul/blog-api/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter собирает все маршруты приложения.
func NewRouter(store storage.Storage, observer *realtime.Observer) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	posts := &PostHandler{Store: store, Observer: observer}
	users := &UserHandler{Store: store}
	comments := &CommentHandler{Store: store, Observer: observer}
	home := NewHomeHandler(store)
	stream := &StreamHandler{Observer: observer}

	router.Get("/", home.Homepage)

	router.Route("/api", func(r chi.Router) {
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", posts.List)
			r.Post("/", posts.Create)
			// Статический сегмент имеет приоритет над /{id}
			r.Put("/upvote", posts.Upvote)
			r.Get("/{id}", posts.Get)
			r.Put("/{id}", posts.Update)
			r.Delete("/{id}", posts.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", users.List)
			r.Post("/", users.Create)
			r.Post("/login", users.Login)
			r.Get("/{id}", users.Get)
			r.Put("/{id}", users.Update)
			r.Delete("/{id}", users.Delete)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/", comments.List)
			r.Post("/", comments.Create)
			r.Delete("/{id}", comments.Delete)
		})

		r.Get("/stream", stream.Stream)
	})

	// Несуществующие маршруты — 404 с пустым телом
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	return router
}
