package handlers

import (
	"errors"
	"net/http"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/realtime"
	"github.com/UkralStul/blog-api/internal/storage"
)

const noCommentMessage = "No comment found with this id"

// CommentHandler обслуживает маршруты /api/comments.
type CommentHandler struct {
	Store    storage.Storage
	Observer *realtime.Observer
}

type createCommentRequest struct {
	CommentText string `json:"comment_text"`
	UserID      uint   `json:"user_id"`
	PostID      uint   `json:"post_id"`
}

// List обрабатывает GET /api/comments.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	comments, err := h.Store.GetComments(r.Context())
	if err != nil {
		respondStorageError(w, err, noCommentMessage)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// Create обрабатывает POST /api/comments.
// Ожидает {comment_text: "...", user_id: 1, post_id: 1}.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	comment := &domain.Comment{
		CommentText: req.CommentText,
		UserID:      req.UserID,
		PostID:      req.PostID,
	}
	created, err := h.Store.CreateComment(r.Context(), comment)
	if err != nil {
		// Отсутствующая запись здесь — это пост, к которому писали комментарий
		if errors.Is(err, storage.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, noPostMessage)
			return
		}
		respondStorageError(w, err, noCommentMessage)
		return
	}

	h.Observer.NotifyCommentCreated(created)
	respondJSON(w, http.StatusOK, created)
}

// Delete обрабатывает DELETE /api/comments/{id}.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondMessage(w, http.StatusNotFound, noCommentMessage)
		return
	}
	if err := h.Store.DeleteComment(r.Context(), id); err != nil {
		respondStorageError(w, err, noCommentMessage)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"deleted": 1})
}
