package handlers

import (
	"net/http"

	"github.com/UkralStul/blog-api/internal/auth"
	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/storage"
)

const (
	noUserMessage        = "No user found with this id"
	noUserByEmailMessage = "No user found with this email address"
)

// UserHandler обслуживает маршруты /api/users.
type UserHandler struct {
	Store storage.Storage
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message"`
}

// List обрабатывает GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.GetUsers(r.Context())
	if err != nil {
		respondStorageError(w, err, noUserMessage)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Get обрабатывает GET /api/users/{id}: пользователь с постами,
// комментариями и проголосованными постами, без хеша пароля.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondMessage(w, http.StatusNotFound, noUserMessage)
		return
	}
	user, err := h.Store.GetUserByID(r.Context(), id)
	if err != nil {
		respondStorageError(w, err, noUserMessage)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Create обрабатывает POST /api/users.
// Ожидает {username: "...", email: "...", password: "..."}.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user := &domain.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	created, err := h.Store.CreateUser(r.Context(), user)
	if err != nil {
		respondStorageError(w, err, noUserMessage)
		return
	}
	respondJSON(w, http.StatusOK, created)
}

// Login обрабатывает POST /api/users/login: ищет пользователя по email
// и сверяет пароль с сохраненным хешем.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		respondStorageError(w, err, noUserByEmailMessage)
		return
	}

	if !auth.CheckPassword(req.Password, user.Password) {
		respondMessage(w, http.StatusBadRequest, "Incorrect password!")
		return
	}

	// Запись возвращается как есть, вместе с хешем пароля
	respondJSON(w, http.StatusOK, loginResponse{User: user, Message: "You are now logged in!"})
}

// Update обрабатывает PUT /api/users/{id}: частичное обновление,
// новый пароль хешируется на пути записи.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondMessage(w, http.StatusNotFound, noUserMessage)
		return
	}

	var fields map[string]interface{}
	if err := decodeJSON(r, &fields); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	affected, err := h.Store.UpdateUser(r.Context(), id, fields)
	if err != nil {
		respondStorageError(w, err, noUserMessage)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"updated": affected})
}

// Delete обрабатывает DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondMessage(w, http.StatusNotFound, noUserMessage)
		return
	}
	if err := h.Store.DeleteUser(r.Context(), id); err != nil {
		respondStorageError(w, err, noUserMessage)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"deleted": 1})
}
