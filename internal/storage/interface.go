package storage

import (
	"context"
	"errors"

	"github.com/UkralStul/blog-api/internal/domain"
)

// ErrNotFound возвращается, когда запрошенная запись отсутствует
// или изменение не затронуло ни одной строки.
var ErrNotFound = errors.New("record not found")

// Storage определяет контракт для хранилищ.
type Storage interface {
	// Посты возвращаются обогащенными: автор, комментарии с авторами
	// и vote_count; список отсортирован по created_at по убыванию.
	GetPosts(ctx context.Context) ([]*domain.Post, error)
	GetPostByID(ctx context.Context, id uint) (*domain.Post, error)
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	UpdatePostTitle(ctx context.Context, id uint, title string) (*domain.Post, error)
	DeletePost(ctx context.Context, id uint) error

	// UpvotePost создает строку Vote и перечитывает пост с обновленным
	// vote_count. В postgres обе операции идут в одной транзакции.
	UpvotePost(ctx context.Context, userID, postID uint) (*domain.Post, error)

	GetUsers(ctx context.Context) ([]*domain.User, error)
	// GetUserByID возвращает пользователя с постами, комментариями
	// и проголосованными постами; поле пароля очищается.
	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	// GetUserByEmail используется на пути логина и возвращает запись
	// целиком, включая хеш пароля.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpdateUser применяет частичное обновление; значение "password"
	// хешируется перед записью. Возвращает число затронутых строк.
	UpdateUser(ctx context.Context, id uint, fields map[string]interface{}) (int64, error)
	DeleteUser(ctx context.Context, id uint) error

	GetComments(ctx context.Context) ([]*domain.Comment, error)
	CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
}
