package handlers

import (
	"net/http"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/realtime"
	"github.com/UkralStul/blog-api/internal/storage"
)

const noPostMessage = "No post found with this id"

// PostHandler обслуживает маршруты /api/posts.
type PostHandler struct {
	Store    storage.Storage
	Observer *realtime.Observer
}

type createPostRequest struct {
	Title   string `json:"title"`
	PostURL string `json:"post_url"`
	UserID  uint   `json:"user_id"`
}

type updatePostRequest struct {
	Title string `json:"title"`
}

type upvoteRequest struct {
	UserID uint `json:"user_id"`
	PostID uint `json:"post_id"`
}

// List обрабатывает GET /api/posts.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Store.GetPosts(r.Context())
	if err != nil {
		respondStorageError(w, err, noPostMessage)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// Get обрабатывает GET /api/posts/{id}.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondMessage(w, http.StatusNotFound, noPostMessage)
		return
	}
	post, err := h.Store.GetPostByID(r.Context(), id)
	if err != nil {
		respondStorageError(w, err, noPostMessage)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// Create обрабатывает POST /api/posts.
// Ожидает {title: "...", post_url: "https://...", user_id: 1}.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	post := &domain.Post{
		Title:   req.Title,
		PostURL: req.PostURL,
		UserID:  req.UserID,
	}
	created, err := h.Store.CreatePost(r.Context(), post)
	if err != nil {
		respondStorageError(w, err, noPostMessage)
		return
	}

	h.Observer.NotifyPostCreated(created)
	respondJSON(w, http.StatusOK, created)
}

// Upvote обрабатывает PUT /api/posts/upvote: записывает голос
// и возвращает пост с обновленным vote_count.
func (h *PostHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	var req upvoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	post, err := h.Store.UpvotePost(r.Context(), req.UserID, req.PostID)
	if err != nil {
		respondStorageError(w, err, noPostMessage)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// Update обрабатывает PUT /api/posts/{id}: меняет только заголовок.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondMessage(w, http.StatusNotFound, noPostMessage)
		return
	}

	var req updatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	post, err := h.Store.UpdatePostTitle(r.Context(), id, req.Title)
	if err != nil {
		respondStorageError(w, err, noPostMessage)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// Delete обрабатывает DELETE /api/posts/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondMessage(w, http.StatusNotFound, noPostMessage)
		return
	}
	if err := h.Store.DeletePost(r.Context(), id); err != nil {
		respondStorageError(w, err, noPostMessage)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"deleted": 1})
}
