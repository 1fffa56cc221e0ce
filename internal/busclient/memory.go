package busclient

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Memory is an in-process Conn with NATS-compatible subject matching
// (exact tokens, "*" for one token, ">" for the remaining tokens). It is
// an in-process fan-out broker with subject-pattern matching and
// request/reply, so every client package can be tested without a live
// nats-server process.
type Memory struct {
	mu       sync.Mutex
	subs     map[int64]*memSub
	nextSub  int64
	nextInbx int64
	closed   bool
}

// NewMemory creates a ready-to-use in-memory broker.
func NewMemory() *Memory {
	return &Memory{subs: make(map[int64]*memSub)}
}

type memSub struct {
	id      int64
	pattern string
	ch      chan *Message
	owner   *Memory
}

func (s *memSub) Next(ctx context.Context) (*Message, error) {
	select {
	case m, ok := <-s.ch:
		if !ok {
			return nil, wrap(ErrSubscribe, s.pattern, nil)
		}
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *memSub) TryNext() (*Message, bool) {
	select {
	case m, ok := <-s.ch:
		if !ok {
			return nil, false
		}
		return m, true
	default:
		return nil, false
	}
}

func (s *memSub) Unsubscribe() error {
	s.owner.mu.Lock()
	delete(s.owner.subs, s.id)
	s.owner.mu.Unlock()
	return nil
}

func (b *Memory) Subscribe(subj string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, wrap(ErrSubscribe, subj, nil)
	}
	b.nextSub++
	sub := &memSub{id: b.nextSub, pattern: subj, ch: make(chan *Message, 256), owner: b}
	b.subs[sub.id] = sub
	return sub, nil
}

func (b *Memory) Publish(subj string, data []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return wrap(ErrPublish, subj, nil)
	}
	matched := make([]*memSub, 0, 4)
	for _, s := range b.subs {
		if matchSubject(s.pattern, subj) {
			matched = append(matched, s)
		}
	}
	b.mu.Unlock()

	msg := &Message{Subject: subj, Data: data}
	for _, s := range matched {
		select {
		case s.ch <- msg:
		default:
			// Slow subscriber; drop rather than block the publisher.
		}
	}
	return nil
}

func (b *Memory) Request(ctx context.Context, subj string, data []byte, timeout time.Duration) (*Message, error) {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	inbox := fmt.Sprintf("_INBOX.%d", atomic.AddInt64(&b.nextInbx, 1))
	sub, err := b.Subscribe(inbox)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	b.mu.Lock()
	closed := b.closed
	matched := make([]*memSub, 0, 4)
	for _, s := range b.subs {
		if matchSubject(s.pattern, subj) {
			matched = append(matched, s)
		}
	}
	b.mu.Unlock()
	if closed {
		return nil, wrap(ErrRequest, subj, nil)
	}

	msg := &Message{Subject: subj, Reply: inbox, Data: data}
	for _, s := range matched {
		select {
		case s.ch <- msg:
		default:
		}
	}

	reply, err := sub.Next(ctx)
	if err != nil {
		return nil, wrap(ErrRequest, subj, err)
	}
	return reply, nil
}

func (b *Memory) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
}

// matchSubject reports whether pattern (which may contain "*" and a
// trailing ">") matches the concrete subject.
func matchSubject(pattern, subj string) bool {
	if pattern == subj {
		return true
	}
	pToks := strings.Split(pattern, ".")
	sToks := strings.Split(subj, ".")

	for i, pt := range pToks {
		if pt == ">" {
			return i < len(sToks)
		}
		if i >= len(sToks) {
			return false
		}
		if pt == "*" {
			continue
		}
		if pt != sToks[i] {
			return false
		}
	}
	return len(pToks) == len(sToks)
}
