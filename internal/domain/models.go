package domain

import (
	"errors"
	"net/mail"
	"net/url"
	"strings"
	"time"
)

// User представляет зарегистрированного пользователя.
// В поле Password хранится только bcrypt-хеш, никогда не открытый текст.
type User struct {
	ID        uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string     `json:"username" gorm:"type:varchar(255);not null"`
	Email     string     `json:"email" gorm:"type:varchar(320);not null;uniqueIndex"`
	Password  string     `json:"password,omitempty" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"not null"`
	Posts     []*Post    `json:"posts,omitempty" gorm:"foreignKey:UserID"`
	Comments  []*Comment `json:"comments,omitempty" gorm:"foreignKey:UserID"`
	// VotedPosts — посты, за которые пользователь проголосовал (через таблицу votes).
	VotedPosts []*Post `json:"voted_posts,omitempty" gorm:"many2many:votes;joinForeignKey:UserID;joinReferences:PostID"`
}

// Post представляет пост со ссылкой.
type Post struct {
	ID        uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title     string     `json:"title" gorm:"type:varchar(255);not null"`
	PostURL   string     `json:"post_url" gorm:"type:varchar(2048);not null"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null"`
	User      *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Comments  []*Comment `json:"comments,omitempty" gorm:"foreignKey:PostID"`
	// VoteCount вычисляется подзапросом при чтении и не хранится в таблице.
	VoteCount int64 `json:"vote_count" gorm:"->;-:migration"`
}

// Comment представляет комментарий к посту. Комментарии не редактируются,
// их можно только создать и удалить.
type Comment struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CommentText string    `json:"comment_text" gorm:"type:varchar(2000);not null"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	PostID      uint      `json:"post_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
	User        *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Post        *Post     `json:"post,omitempty" gorm:"foreignKey:PostID"`
}

// Vote — строка связи «пользователь проголосовал за пост».
// Строки только добавляются; уникальность пары не требуется,
// повторный голос записывает еще одну строку.
type Vote struct {
	ID     uint `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID uint `json:"user_id" gorm:"not null;index"`
	PostID uint `json:"post_id" gorm:"not null;index"`
}

// MinPasswordLength — минимальная длина пароля в открытом виде.
const MinPasswordLength = 4

// Validate проверяет поля пользователя перед записью.
// Пароль проверяется в открытом виде, до хеширования.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return errors.New("username cannot be empty")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return errors.New("email must be a valid email address")
	}
	if len(u.Password) < MinPasswordLength {
		return errors.New("password must be at least 4 characters long")
	}
	return nil
}

// Validate проверяет поля поста перед записью.
func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title cannot be empty")
	}
	parsed, err := url.ParseRequestURI(p.PostURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("post_url must be a valid URL")
	}
	return nil
}

// Validate проверяет поля комментария перед записью.
func (c *Comment) Validate() error {
	if strings.TrimSpace(c.CommentText) == "" {
		return errors.New("comment text cannot be empty")
	}
	if len(c.CommentText) > 2000 {
		return errors.New("comment text is too long")
	}
	return nil
}
