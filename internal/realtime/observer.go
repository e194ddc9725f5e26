package realtime

import (
	"sync"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/google/uuid"
)

// Виды событий живой ленты.
const (
	EventPostCreated    = "post.created"
	EventCommentCreated = "comment.created"
)

// Event — событие, рассылаемое подписчикам ленты.
type Event struct {
	Kind    string          `json:"kind"`
	Post    *domain.Post    `json:"post,omitempty"`
	Comment *domain.Comment `json:"comment,omitempty"`
}

// Observer хранит каналы подписчиков на события ленты.
type Observer struct {
	mu sync.RWMutex
	//   map[subscriberID] channel
	subs map[string]chan Event
}

// NewObserver — конструктор для нашего наблюдателя.
func NewObserver() *Observer {
	return &Observer{
		subs: make(map[string]chan Event),
	}
}

// Subscribe регистрирует нового подписчика и возвращает его id и канал.
func (o *Observer) Subscribe() (string, <-chan Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Event, 16)
	o.subs[id] = ch
	return id, ch
}

// Subscribers возвращает текущее число подписчиков.
func (o *Observer) Subscribers() int {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return len(o.subs)
}

// Unsubscribe снимает подписку и закрывает канал подписчика.
func (o *Observer) Unsubscribe(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if ch, ok := o.subs[id]; ok {
		delete(o.subs, id)
		close(ch)
	}
}

// NotifyPostCreated рассылает событие о новом посте.
func (o *Observer) NotifyPostCreated(post *domain.Post) {
	o.notify(Event{Kind: EventPostCreated, Post: post})
}

// NotifyCommentCreated рассылает событие о новом комментарии.
func (o *Observer) NotifyCommentCreated(comment *domain.Comment) {
	o.notify(Event{Kind: EventCommentCreated, Comment: comment})
}

func (o *Observer) notify(e Event) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	for _, ch := range o.subs {
		select {
		case ch <- e:
		default:
			// Медленный подписчик событие пропускает
		}
	}
}
