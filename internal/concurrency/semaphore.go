// Package concurrency holds small concurrency primitives shared across the
// domain-stack adapters.
package concurrency

import (
	"context"
	"errors"
)

// DefaultMax is the default number of concurrent holders a new Semaphore
// allows.
const DefaultMax = 100

// Semaphore bounds concurrent access to a shared resource (the websocket
// gateway's outstanding ops across all connections, an event-log dispatcher's outstanding
// sends) using a buffered channel as the token pool.
type Semaphore struct {
	ch chan struct{}
}

// NewSemaphore returns a Semaphore allowing up to max concurrent holders.
func NewSemaphore(max int) *Semaphore {
	if max <= 0 {
		max = DefaultMax
	}
	return &Semaphore{ch: make(chan struct{}, max)}
}

// Acquire blocks until a token is available or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a token to the pool. It is an error to release without a
// matching prior Acquire.
func (s *Semaphore) Release() error {
	select {
	case <-s.ch:
		return nil
	default:
		return errors.New("concurrency: release without a matching acquire")
	}
}
