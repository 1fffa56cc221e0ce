// Package busclient wraps the external pub-sub broker: connect, subscribe,
// publish, request/reply, and payload decoding. Conn is the narrow interface
// every other client depends on; nats.go backs the production adapter while
// Memory backs tests that need a broker without a live nats-server process.
package busclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Message is one payload observed on a subscription, with the reply subject
// populated for request/reply calls.
type Message struct {
	Subject string
	Reply   string
	Data    []byte
}

// Subscription is multi-producer/single-consumer from the adapter's
// perspective: exactly one goroutine should call Next/TryNext on it.
type Subscription interface {
	// Next blocks until a message arrives or ctx is done.
	Next(ctx context.Context) (*Message, error)
	// TryNext returns immediately; ok is false if nothing is pending.
	TryNext() (msg *Message, ok bool)
	Unsubscribe() error
}

// Conn is the bus adapter surface every client is built against.
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string) (Subscription, error)
	Request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*Message, error)
	Close()
}

// These sentinels enumerate the bus-adapter error taxonomy from the
// error-handling design: connect, subscribe, publish, request/reply and
// parse failures are each
// distinguishable by errors.Is against the matching sentinel below.
var (
	ErrConnect   = errors.New("busclient: connect failed")
	ErrSubscribe = errors.New("busclient: subscribe failed")
	ErrPublish   = errors.New("busclient: publish failed")
	ErrRequest   = errors.New("busclient: request failed")
	ErrParse     = errors.New("busclient: parse failed")
)

// wrap joins a sentinel with causal context the same way the rest of this
// codebase wraps errors: fmt.Errorf("...: %w", err).
func wrap(sentinel error, context string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", context, sentinel)
	}
	return fmt.Errorf("%s: %w: %v", context, sentinel, cause)
}

// Decode unmarshals a JSON payload into T, wrapping failures as ErrParse.
func Decode[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, wrap(ErrParse, "decode payload", err)
	}
	return v, nil
}

// DefaultRequestTimeout is used by callers that don't have a more specific
// deadline in mind (the controller's turn_off request during a kill,
// bryggio-cli's request command), and by Request when given no timeout.
const DefaultRequestTimeout = 2 * time.Second
