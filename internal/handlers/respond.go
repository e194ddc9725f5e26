package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/UkralStul/blog-api/internal/storage"
	"github.com/go-chi/chi/v5"
)

// respondJSON сериализует ответ и выставляет статус.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// respondMessage — ответ вида {"message": "..."}.
func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondStorageError применяет общую политику ошибок:
// отсутствующая запись — 404 с сообщением, все остальное — 500 с текстом ошибки.
func respondStorageError(w http.ResponseWriter, err error, notFoundMessage string) {
	if errors.Is(err, storage.ErrNotFound) {
		respondMessage(w, http.StatusNotFound, notFoundMessage)
		return
	}
	log.Printf("storage error: %v", err)
	respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// decodeJSON разбирает тело запроса в v.
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// idParam извлекает числовой параметр {id} из пути.
// Нечисловое значение не может указывать на запись, ошибка означает «нет такой».
func idParam(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
