package app

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned for a response that arrived after a newer
// request on the same slot had begun. The response is discarded.
var ErrSuperseded = errors.New("request superseded by a newer one")

// Latest tracks the newest request on one slot, such as the feedback view.
// Beginning a request cancels the one before it.
type Latest struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Ticket identifies one request begun on a Latest.
type Ticket struct {
	l      *Latest
	gen    uint64
	cancel context.CancelFunc
}

// Begin starts a new request and returns its context.
func (l *Latest) Begin(parent context.Context) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(parent)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	l.cancel = cancel
	t := Ticket{l: l, gen: l.gen, cancel: cancel}
	l.mu.Unlock()

	return ctx, t
}

// Current reports whether no newer request has begun.
func (t Ticket) Current() bool {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	return t.gen == t.l.gen
}

// Done releases the request's context.
func (t Ticket) Done() {
	t.cancel()
	t.l.mu.Lock()
	if t.gen == t.l.gen {
		t.l.cancel = nil
	}
	t.l.mu.Unlock()
}

func runLatest[T any](l *Latest, parent context.Context, fn func(context.Context) (T, error)) (T, error) {
	ctx, ticket := l.Begin(parent)
	defer ticket.Done()

	v, err := fn(ctx)
	if !ticket.Current() {
		var zero T
		return zero, ErrSuperseded
	}
	return v, err
}
