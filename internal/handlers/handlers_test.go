package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UkralStul/blog-api/internal/handlers"
	"github.com/UkralStul/blog-api/internal/realtime"
	"github.com/UkralStul/blog-api/internal/storage"
	"github.com/UkralStul/blog-api/internal/storage/inmemory"
	"github.com/go-chi/chi/v5"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter собирает роутер поверх in-memory хранилища.
func newTestRouter(t *testing.T) (*chi.Mux, storage.Storage) {
	t.Helper()
	store := inmemory.New()
	return handlers.NewRouter(store, realtime.NewObserver()), store
}

// doJSON выполняет запрос с JSON-телом против роутера.
func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeBody разбирает JSON-ответ в map.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// createTestUser регистрирует пользователя через API и возвращает его id.
func createTestUser(t *testing.T, router http.Handler, username, email string) float64 {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
		"username": username,
		"email":    email,
		"password": "password1234",
	})
	require.Equal(t, http.StatusOK, w.Code)
	return decodeBody(t, w)["id"].(float64)
}

func TestCreatePost(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := createTestUser(t, router, "lernantino", "lernantino@gmail.com")

	w := doJSON(t, router, http.MethodPost, "/api/posts", map[string]interface{}{
		"title":    "A",
		"post_url": "https://x.com",
		"user_id":  userID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.NotZero(t, body["id"])
	assert.Equal(t, "A", body["title"])
	assert.Equal(t, "https://x.com", body["post_url"])
	assert.Equal(t, userID, body["user_id"])
	assert.Equal(t, float64(0), body["vote_count"])
}

func TestCreatePost_InvalidURLIsServerError(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := createTestUser(t, router, "lernantino", "lernantino@gmail.com")

	w := doJSON(t, router, http.MethodPost, "/api/posts", map[string]interface{}{
		"title":    "A",
		"post_url": "not a url",
		"user_id":  userID,
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "post_url must be a valid URL", decodeBody(t, w)["error"])
}

func TestGetPost_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/posts/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No post found with this id", decodeBody(t, w)["message"])

	// Нечисловой id тоже не указывает ни на какую запись
	w = doJSON(t, router, http.MethodGet, "/api/posts/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No post found with this id", decodeBody(t, w)["message"])
}

func TestListPosts_NewestFirstAndEnriched(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := createTestUser(t, router, "alice", "alice@example.com")

	for _, title := range []string{"first", "second", "third"} {
		w := doJSON(t, router, http.MethodPost, "/api/posts", map[string]interface{}{
			"title":    title,
			"post_url": "https://example.com/" + title,
			"user_id":  userID,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var posts []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 3)
	assert.Equal(t, "third", posts[0]["title"])
	assert.Equal(t, "second", posts[1]["title"])
	assert.Equal(t, "first", posts[2]["title"])

	user, ok := posts[0]["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, float64(0), posts[0]["vote_count"])
}

func TestPostPayloads_ExcludeNestedPasswordHashes(t *testing.T) {
	router, _ := newTestRouter(t)
	authorID := createTestUser(t, router, "alice", "alice@example.com")
	commenterID := createTestUser(t, router, "bob", "bob@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/posts", map[string]interface{}{
		"title":    "Discussed",
		"post_url": "https://example.com/discussed",
		"user_id":  authorID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	postID := decodeBody(t, w)["id"].(float64)

	w = doJSON(t, router, http.MethodPost, "/api/comments", map[string]interface{}{
		"comment_text": "Well put",
		"user_id":      commenterID,
		"post_id":      postID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Вложенные пользователи в детальном ответе поста — без хеша пароля
	w = doJSON(t, router, http.MethodGet, "/api/posts/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)

	author, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice", author["username"])
	assert.NotContains(t, author, "password")

	comments, ok := body["comments"].([]interface{})
	require.True(t, ok)
	require.Len(t, comments, 1)
	commenter, ok := comments[0].(map[string]interface{})["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "bob", commenter["username"])
	assert.NotContains(t, commenter, "password")

	// И в списке постов тоже
	w = doJSON(t, router, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posts []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.NotContains(t, posts[0]["user"], "password")
}

func TestListUsers_IncludesStoredHash(t *testing.T) {
	router, _ := newTestRouter(t)
	createTestUser(t, router, "alice", "alice@example.com")
	createTestUser(t, router, "bob", "bob@example.com")

	w := doJSON(t, router, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 2)

	// Список упорядочен по id и, как в исходном findAll, содержит хеши
	assert.Equal(t, "alice", users[0]["username"])
	assert.Equal(t, "bob", users[1]["username"])
	for _, user := range users {
		stored, ok := user["password"].(string)
		require.True(t, ok)
		assert.NotEmpty(t, stored)
		assert.NotEqual(t, "password1234", stored)
	}
}

func TestUpvote_IncrementsVoteCount(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := createTestUser(t, router, "alice", "alice@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/posts", map[string]interface{}{
		"title":    "Voted",
		"post_url": "https://example.com/voted",
		"user_id":  userID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	postID := decodeBody(t, w)["id"].(float64)

	w = doJSON(t, router, http.MethodPut, "/api/posts/upvote", map[string]interface{}{
		"user_id": userID,
		"post_id": postID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["vote_count"])

	otherID := createTestUser(t, router, "bob", "bob@example.com")
	w = doJSON(t, router, http.MethodPut, "/api/posts/upvote", map[string]interface{}{
		"user_id": otherID,
		"post_id": postID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["vote_count"])
}

func TestUpvote_MissingPost(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := createTestUser(t, router, "alice", "alice@example.com")

	w := doJSON(t, router, http.MethodPut, "/api/posts/upvote", map[string]interface{}{
		"user_id": userID,
		"post_id": 999,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No post found with this id", decodeBody(t, w)["message"])
}

func TestUpdatePostTitle(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := createTestUser(t, router, "alice", "alice@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/posts", map[string]interface{}{
		"title":    "Old title",
		"post_url": "https://example.com/post",
		"user_id":  userID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	postID := decodeBody(t, w)["id"].(float64)

	w = doJSON(t, router, http.MethodPut, "/api/posts/1", map[string]string{"title": "New title"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, postID, body["id"])
	assert.Equal(t, "New title", body["title"])

	w = doJSON(t, router, http.MethodPut, "/api/posts/999", map[string]string{"title": "Nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePost(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := createTestUser(t, router, "alice", "alice@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/posts", map[string]interface{}{
		"title":    "Doomed",
		"post_url": "https://example.com/doomed",
		"user_id":  userID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/posts/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["deleted"])

	w = doJSON(t, router, http.MethodDelete, "/api/posts/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No post found with this id", decodeBody(t, w)["message"])
}

func TestCreateUser_PasswordIsHashed(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
		"username": "lernantino",
		"email":    "lernantino@gmail.com",
		"password": "password1234",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "lernantino", body["username"])
	stored, ok := body["password"].(string)
	require.True(t, ok)
	assert.NotEqual(t, "password1234", stored)
}

func TestLogin(t *testing.T) {
	router, _ := newTestRouter(t)
	createTestUser(t, router, "lernantino", "lernantino@gmail.com")

	// Неверный пароль
	w := doJSON(t, router, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "lernantino@gmail.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Incorrect password!", decodeBody(t, w)["message"])

	// Верные учетные данные
	w = doJSON(t, router, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "lernantino@gmail.com",
		"password": "password1234",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "You are now logged in!", body["message"])
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "lernantino", user["username"])

	// Неизвестный email
	w = doJSON(t, router, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password1234",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No user found with this email address", decodeBody(t, w)["message"])
}

func TestGetUser_DetailWithoutPassword(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := createTestUser(t, router, "alice", "alice@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/posts", map[string]interface{}{
		"title":    "Mine",
		"post_url": "https://example.com/mine",
		"user_id":  userID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	postID := decodeBody(t, w)["id"].(float64)

	w = doJSON(t, router, http.MethodPost, "/api/comments", map[string]interface{}{
		"comment_text": "Self-reply",
		"user_id":      userID,
		"post_id":      postID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/posts/upvote", map[string]interface{}{
		"user_id": userID,
		"post_id": postID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/users/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.NotContains(t, body, "password")
	assert.Len(t, body["posts"], 1)
	assert.Len(t, body["comments"], 1)
	assert.Len(t, body["voted_posts"], 1)

	w = doJSON(t, router, http.MethodGet, "/api/users/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No user found with this id", decodeBody(t, w)["message"])
}

func TestUpdateAndDeleteUser(t *testing.T) {
	router, _ := newTestRouter(t)
	createTestUser(t, router, "alice", "alice@example.com")

	w := doJSON(t, router, http.MethodPut, "/api/users/1", map[string]string{"username": "alicia"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["updated"])

	w = doJSON(t, router, http.MethodPut, "/api/users/999", map[string]string{"username": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/users/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["deleted"])

	w = doJSON(t, router, http.MethodDelete, "/api/users/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComments_CreateAndDelete(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := createTestUser(t, router, "alice", "alice@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/posts", map[string]interface{}{
		"title":    "Discussed",
		"post_url": "https://example.com/discussed",
		"user_id":  userID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	postID := decodeBody(t, w)["id"].(float64)

	w = doJSON(t, router, http.MethodPost, "/api/comments", map[string]interface{}{
		"comment_text": "Great write-up",
		"user_id":      userID,
		"post_id":      postID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotZero(t, decodeBody(t, w)["id"])

	// Комментарий к несуществующему посту
	w = doJSON(t, router, http.MethodPost, "/api/comments", map[string]interface{}{
		"comment_text": "Orphan",
		"user_id":      userID,
		"post_id":      999,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No post found with this id", decodeBody(t, w)["message"])

	w = doJSON(t, router, http.MethodGet, "/api/comments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var comments []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	assert.Len(t, comments, 1)

	w = doJSON(t, router, http.MethodDelete, "/api/comments/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["deleted"])

	w = doJSON(t, router, http.MethodDelete, "/api/comments/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No comment found with this id", decodeBody(t, w)["message"])
}

func TestHomepage_RendersPosts(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := createTestUser(t, router, "alice", "alice@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/posts", map[string]interface{}{
		"title":    "Front page news",
		"post_url": "https://example.com/news",
		"user_id":  userID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, resp.Body.String(), "Front page news")
	assert.Contains(t, resp.Body.String(), "alice")
}

func TestUnknownRoute_EmptyNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String())
}
