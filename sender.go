package gochan

import (
	"context"
	"time"
)

// Sender is a handle for pushing values into a channel. Senders can be
// cloned for fan-in; the send side of the channel closes when the last
// Sender is closed. A Sender is safe for concurrent use, but each handle
// must be closed exactly once, typically with defer.
type Sender[T any] struct {
	*core[T]
	h handleState
}

// Send enqueues value, blocking while a bounded channel is full. It fails
// with ErrDisconnected once no receiver is left, and the returned
// *SendError hands value back.
func (s *Sender[T]) Send(value T) error {
	return s.core.send(context.Background(), &s.h, value, true, nil)
}

// TrySend enqueues value without blocking. It fails with ErrFull when a
// bounded channel has no free slot.
func (s *Sender[T]) TrySend(value T) error {
	return s.core.send(context.Background(), &s.h, value, false, nil)
}

// SendTimeout is Send with an upper bound on the wait. On expiry it fails
// with ErrTimeout, which callers may retry.
func (s *Sender[T]) SendTimeout(value T, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	return s.core.send(context.Background(), &s.h, value, true, timer.C)
}

// SendContext is Send that gives up when ctx is done. The returned error
// wraps ctx.Err().
func (s *Sender[T]) SendContext(ctx context.Context, value T) error {
	if err := ctx.Err(); err != nil {
		return sendError(value, err)
	}
	return s.core.send(ctx, &s.h, value, true, nil)
}

// Clone returns a new Sender on the same channel. It only fails when s
// itself has been closed.
func (s *Sender[T]) Clone() (*Sender[T], error) {
	if err := s.core.cloneSender(&s.h); err != nil {
		return nil, err
	}
	return &Sender[T]{core: s.core}, nil
}

// Close releases this handle. Closing the last Sender lets receivers drain
// the buffer and then observe ErrDisconnected. Closing twice returns
// ErrHandleClosed.
func (s *Sender[T]) Close() error {
	return s.core.closeSender(&s.h)
}
