// Package notify holds the short-lived status messages shown to the user.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	log "github.com/sirupsen/logrus"
)

// Colours understood by the dashboard and the terminal sink.
const (
	Red    = "red"
	Green  = "green"
	Blue   = "blue"
	Yellow = "yellow"
)

const (
	DefaultTTL       = 2 * time.Second
	DefaultMaxActive = 5
)

// Notification is one transient message.
type Notification struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Color   string    `json:"color"`
	Shown   time.Time `json:"shown"`
}

// Notifier is what controllers need to report outcomes.
type Notifier interface {
	Show(title, message, color string) string
}

// Sink receives every notification as it is first shown.
type Sink func(Notification)

type key struct {
	title, message, color string
}

// Queue keeps the visible notifications. Entries expire on their own after
// the TTL; when more than the limit are shown the oldest is dropped. Showing
// a message identical to a visible one returns the visible one's id.
type Queue struct {
	mu    sync.Mutex
	lru   *expirable.LRU[key, Notification]
	sink  Sink
	clock func() time.Time
}

// Option configures a Queue.
type Option func(*queueConfig)

type queueConfig struct {
	ttl       time.Duration
	maxActive int
	sink      Sink
}

// WithTTL sets how long a notification stays visible.
func WithTTL(d time.Duration) Option {
	return func(c *queueConfig) { c.ttl = d }
}

// WithMaxActive bounds the number of visible notifications.
func WithMaxActive(n int) Option {
	return func(c *queueConfig) { c.maxActive = n }
}

// WithSink registers a callback run for every newly shown notification.
func WithSink(s Sink) Option {
	return func(c *queueConfig) { c.sink = s }
}

// NewQueue builds an empty queue.
func NewQueue(opts ...Option) *Queue {
	cfg := queueConfig{ttl: DefaultTTL, maxActive: DefaultMaxActive}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxActive < 1 {
		cfg.maxActive = 1
	}
	return &Queue{
		lru:   expirable.NewLRU[key, Notification](cfg.maxActive, nil, cfg.ttl),
		sink:  cfg.sink,
		clock: time.Now,
	}
}

// Show displays a notification and returns its id.
func (q *Queue) Show(title, message, color string) string {
	k := key{title: title, message: message, color: color}

	q.mu.Lock()
	if existing, ok := q.lru.Peek(k); ok {
		q.mu.Unlock()
		return existing.ID
	}
	n := Notification{
		ID:      uuid.NewString(),
		Title:   title,
		Message: message,
		Color:   color,
		Shown:   q.clock(),
	}
	q.lru.Add(k, n)
	sink := q.sink
	q.mu.Unlock()

	log.WithField("color", color).Debugf("notification: %s: %s", title, message)
	if sink != nil {
		sink(n)
	}
	return n.ID
}

// Remove dismisses a notification before it expires.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, k := range q.lru.Keys() {
		if n, ok := q.lru.Peek(k); ok && n.ID == id {
			q.lru.Remove(k)
			return
		}
	}
}

// Active lists the visible notifications, oldest first.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	list := q.lru.Values()
	q.mu.Unlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Shown.Before(list[j].Shown)
	})
	if list == nil {
		list = []Notification{}
	}
	return list
}

// Purge dismisses everything.
func (q *Queue) Purge() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lru.Purge()
}
