package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/UkralStul/blog-api/internal/auth"
	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// voteCountExpr — коррелированный подзапрос для vote_count поста.
const voteCountExpr = "(SELECT count(*) FROM votes WHERE votes.post_id = posts.id)"

// Store реализует интерфейс Storage с использованием PostgreSQL.
type Store struct {
	db *gorm.DB
}

// New создает новый экземпляр хранилища PostgreSQL и синхронизирует схему.
// При forceSync все таблицы сначала удаляются и создаются заново.
func New(dsn string, forceSync bool) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if forceSync {
		// Порядок обратный зависимостям внешних ключей
		if err := db.Migrator().DropTable(&domain.Vote{}, &domain.Comment{}, &domain.Post{}, &domain.User{}); err != nil {
			return nil, fmt.Errorf("failed to drop tables: %w", err)
		}
	}

	// Таблица votes служит и моделью Vote, и join-таблицей для VotedPosts
	if err := db.SetupJoinTable(&domain.User{}, "VotedPosts", &domain.Vote{}); err != nil {
		return nil, fmt.Errorf("failed to set up votes join table: %w", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.Post{}, &domain.Comment{}, &domain.Vote{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// === Post Methods ===

// withoutPassword ограничивает выборку вложенных пользователей колонками
// без хеша пароля, как attributes: ['username'] в исходных include.
func withoutPassword(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "email", "created_at", "updated_at")
}

func (s *Store) GetPosts(ctx context.Context) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := s.db.WithContext(ctx).
		Select("posts.*, "+voteCountExpr+" AS vote_count").
		Preload("User", withoutPassword).
		Preload("Comments").
		Preload("Comments.User", withoutPassword).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

func (s *Store) GetPostByID(ctx context.Context, id uint) (*domain.Post, error) {
	return getPost(s.db.WithContext(ctx), id)
}

// getPost перечитывает пост с обогащением; работает и внутри транзакции.
func getPost(db *gorm.DB, id uint) (*domain.Post, error) {
	var post domain.Post
	err := db.
		Select("posts.*, "+voteCountExpr+" AS vote_count").
		Preload("User", withoutPassword).
		Preload("Comments").
		Preload("Comments.User", withoutPassword).
		First(&post, "posts.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Store) UpdatePostTitle(ctx context.Context, id uint, title string) (*domain.Post, error) {
	result := s.db.WithContext(ctx).Model(&domain.Post{}).Where("id = ?", id).Update("title", title)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, storage.ErrNotFound
	}
	return s.GetPostByID(ctx, id)
}

func (s *Store) DeletePost(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&domain.Post{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) UpvotePost(ctx context.Context, userID, postID uint) (*domain.Post, error) {
	var post *domain.Post
	// Создание голоса и перечитывание поста в одной транзакции,
	// чтобы не было окна между записью и чтением.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists domain.Post
		if err := tx.Select("id").First(&exists, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Create(&domain.Vote{UserID: userID, PostID: postID}).Error; err != nil {
			return err
		}
		var err error
		post, err = getPost(tx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// === User Methods ===

func (s *Store) GetUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := s.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).
		Preload("Posts").
		Preload("Comments").
		Preload("Comments.Post").
		Preload("VotedPosts").
		First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	// Хеш пароля в детальном ответе не отдается
	user.Password = ""
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	hashed, err := auth.HashPassword(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	updates, err := userUpdates(fields)
	if err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, storage.ErrNotFound
	}
	return result.RowsAffected, nil
}

// userUpdates отбирает разрешенные для изменения колонки
// и хеширует новый пароль перед записью.
func userUpdates(fields map[string]interface{}) (map[string]interface{}, error) {
	updates := make(map[string]interface{}, len(fields))
	for _, col := range []string{"username", "email"} {
		if v, ok := fields[col]; ok {
			updates[col] = v
		}
	}
	if v, ok := fields["password"]; ok {
		plaintext, ok := v.(string)
		if !ok || len(plaintext) < domain.MinPasswordLength {
			return nil, errors.New("password must be at least 4 characters long")
		}
		hashed, err := auth.HashPassword(plaintext)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}
	if len(updates) == 0 {
		return nil, errors.New("no updatable fields in request body")
	}
	return updates, nil
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&domain.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// === Comment Methods ===

func (s *Store) GetComments(ctx context.Context) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&comments).Error
	return comments, err
}

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	if err := comment.Validate(); err != nil {
		return nil, err
	}
	// Существование поста проверяется до записи, чтобы отсутствие
	// поста было отличимо от прочих ошибок БД.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists domain.Post
		if err := tx.Select("id").First(&exists, "id = ?", comment.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return tx.Create(comment).Error
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&domain.Comment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
