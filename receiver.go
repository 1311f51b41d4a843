package gochan

import (
	"context"
	"iter"
	"time"
)

// Receiver is a handle for taking values out of a channel. Cloned Receivers
// compete for values: each value goes to exactly one of them. Closing the
// last Receiver discards anything still buffered and disconnects senders.
type Receiver[T any] struct {
	*core[T]
	h handleState
}

// Recv dequeues the oldest value, blocking while the channel is empty and
// a sender is still alive. Buffered values are returned even after all
// senders have closed; after that it fails with ErrDisconnected.
func (r *Receiver[T]) Recv() (T, error) {
	return r.core.recv(context.Background(), &r.h, true, nil)
}

// TryRecv dequeues without blocking, failing with ErrEmpty or
// ErrDisconnected.
func (r *Receiver[T]) TryRecv() (T, error) {
	return r.core.recv(context.Background(), &r.h, false, nil)
}

// RecvTimeout is Recv with an upper bound on the wait.
func (r *Receiver[T]) RecvTimeout(timeout time.Duration) (T, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	return r.core.recv(context.Background(), &r.h, true, timer.C)
}

// RecvContext is Recv that gives up with ctx.Err() when ctx is done.
func (r *Receiver[T]) RecvContext(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	return r.core.recv(ctx, &r.h, true, nil)
}

// All returns a sequence over received values. It ends once the channel is
// disconnected and drained (or this handle is closed), so
//
//	for v := range rx.All() {
//		...
//	}
//
// is the usual way to drain a channel. Breaking out early leaves remaining
// values in the channel, and the sequence may be ranged over again.
func (r *Receiver[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, err := r.Recv()
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Clone returns a new Receiver on the same channel. It only fails when r
// itself has been closed.
func (r *Receiver[T]) Clone() (*Receiver[T], error) {
	if err := r.core.cloneReceiver(&r.h); err != nil {
		return nil, err
	}
	return &Receiver[T]{core: r.core}, nil
}

// Close releases this handle. Closing the last Receiver discards buffered
// values and makes every send fail with ErrDisconnected.
func (r *Receiver[T]) Close() error {
	return r.core.closeReceiver(&r.h)
}
