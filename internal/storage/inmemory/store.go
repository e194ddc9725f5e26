package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/UkralStul/blog-api/internal/auth"
	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/storage"
)

// Store реализует интерфейс Storage в памяти.
// Используется в тестах и для локального запуска без базы.
type Store struct {
	mu            sync.RWMutex
	users         map[uint]*domain.User
	posts         map[uint]*domain.Post
	comments      map[uint]*domain.Comment
	votes         []domain.Vote
	nextUserID    uint
	nextPostID    uint
	nextCommentID uint
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		users:    make(map[uint]*domain.User),
		posts:    make(map[uint]*domain.Post),
		comments: make(map[uint]*domain.Comment),
	}
}

// === Post Methods ===

func (s *Store) GetPosts(ctx context.Context) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]*domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, s.postView(p))
	}

	// Новые посты первыми; при равном времени — больший id первым
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

func (s *Store) GetPostByID(ctx context.Context, id uint) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.postView(post), nil
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := post.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[post.UserID]; !ok {
		return nil, fmt.Errorf("user with id %d does not exist", post.UserID)
	}

	s.nextPostID++
	stored := *post
	stored.ID = s.nextPostID
	stored.CreatedAt = time.Now().UTC()
	stored.User = nil
	stored.Comments = nil
	s.posts[stored.ID] = &stored

	created := stored
	created.VoteCount = 0
	*post = created
	return post, nil
}

func (s *Store) UpdatePostTitle(ctx context.Context, id uint, title string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	post.Title = title
	return s.postView(post), nil
}

func (s *Store) DeletePost(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *Store) UpvotePost(ctx context.Context, userID, postID uint) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	s.votes = append(s.votes, domain.Vote{UserID: userID, PostID: postID})
	return s.postView(post), nil
}

// postView возвращает копию поста, обогащенную автором,
// комментариями и vote_count. Вызывается под мьютексом.
func (s *Store) postView(p *domain.Post) *domain.Post {
	view := *p
	if u, ok := s.users[p.UserID]; ok {
		view.User = publicUser(u)
	}

	view.Comments = nil
	for _, c := range s.comments {
		if c.PostID != p.ID {
			continue
		}
		cv := *c
		if u, ok := s.users[c.UserID]; ok {
			cv.User = publicUser(u)
		}
		view.Comments = append(view.Comments, &cv)
	}
	sort.Slice(view.Comments, func(i, j int) bool {
		return view.Comments[i].CreatedAt.Before(view.Comments[j].CreatedAt)
	})

	view.VoteCount = 0
	for _, v := range s.votes {
		if v.PostID == p.ID {
			view.VoteCount++
		}
	}
	return &view
}

// publicUser — копия пользователя без хеша пароля для вложенных ответов.
func publicUser(u *domain.User) *domain.User {
	cu := *u
	cu.Password = ""
	cu.Posts = nil
	cu.Comments = nil
	cu.VotedPosts = nil
	return &cu
}

// === User Methods ===

func (s *Store) GetUsers(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		cu := *u
		users = append(users, &cu)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	view := *user
	view.Password = ""

	for _, p := range s.posts {
		if p.UserID == id {
			pv := *p
			view.Posts = append(view.Posts, &pv)
		}
	}
	sort.Slice(view.Posts, func(i, j int) bool { return view.Posts[i].ID < view.Posts[j].ID })

	for _, c := range s.comments {
		if c.UserID != id {
			continue
		}
		cv := *c
		if p, ok := s.posts[c.PostID]; ok {
			pv := *p
			cv.Post = &pv
		}
		view.Comments = append(view.Comments, &cv)
	}
	sort.Slice(view.Comments, func(i, j int) bool { return view.Comments[i].ID < view.Comments[j].ID })

	for _, v := range s.votes {
		if v.UserID != id {
			continue
		}
		if p, ok := s.posts[v.PostID]; ok {
			pv := *p
			view.VotedPosts = append(view.VotedPosts, &pv)
		}
	}
	sort.Slice(view.VotedPosts, func(i, j int) bool { return view.VotedPosts[i].ID < view.VotedPosts[j].ID })

	return &view, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			cu := *u
			return &cu, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("email %s is already taken", user.Email)
		}
	}

	hashed, err := auth.HashPassword(user.Password)
	if err != nil {
		return nil, err
	}

	s.nextUserID++
	now := time.Now().UTC()
	stored := *user
	stored.ID = s.nextUserID
	stored.Password = hashed
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.users[stored.ID] = &stored

	*user = stored
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return 0, storage.ErrNotFound
	}

	applied := 0
	if v, ok := fields["username"].(string); ok {
		user.Username = v
		applied++
	}
	if v, ok := fields["email"].(string); ok {
		// Уникальность email действует и при обновлении
		for _, other := range s.users {
			if other.ID != id && other.Email == v {
				return 0, fmt.Errorf("email %s is already taken", v)
			}
		}
		user.Email = v
		applied++
	}
	if v, ok := fields["password"]; ok {
		plaintext, ok := v.(string)
		if !ok || len(plaintext) < domain.MinPasswordLength {
			return 0, errors.New("password must be at least 4 characters long")
		}
		hashed, err := auth.HashPassword(plaintext)
		if err != nil {
			return 0, err
		}
		user.Password = hashed
		applied++
	}
	if applied == 0 {
		return 0, errors.New("no updatable fields in request body")
	}
	user.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// === Comment Methods ===

func (s *Store) GetComments(ctx context.Context) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := make([]*domain.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		cv := *c
		comments = append(comments, &cv)
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
	return comments, nil
}

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	if err := comment.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[comment.PostID]; !ok {
		return nil, storage.ErrNotFound
	}

	s.nextCommentID++
	stored := *comment
	stored.ID = s.nextCommentID
	stored.CreatedAt = time.Now().UTC()
	stored.User = nil
	stored.Post = nil
	s.comments[stored.ID] = &stored

	*comment = stored
	return comment, nil
}

func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}
