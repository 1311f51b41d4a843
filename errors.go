package gochan

import (
	"errors"
	"fmt"
)

var (
	// ErrDisconnected is returned when the other side of a channel has no
	// live handles left. On the send side it means no receiver will ever
	// read the value; on the receive side it means all senders are gone and
	// the buffer has been drained.
	ErrDisconnected = errors.New("gochan: channel disconnected")

	// ErrFull is returned by TrySend when a bounded channel has no free slot.
	ErrFull = errors.New("gochan: channel full")

	// ErrEmpty is returned by TryRecv when no value is buffered.
	ErrEmpty = errors.New("gochan: channel empty")

	// ErrTimeout is returned by SendTimeout and RecvTimeout when the wait
	// expired before the operation could complete.
	ErrTimeout = errors.New("gochan: operation timed out")

	// ErrInvalidCapacity is returned when a bounded channel is requested
	// with a capacity of zero or less.
	ErrInvalidCapacity = errors.New("gochan: bounded capacity must be positive")

	// ErrHandleClosed is returned when a Sender or Receiver is used (or
	// closed again) after its own Close.
	ErrHandleClosed = errors.New("gochan: handle already closed")
)

// SendError is returned by every failing send variant. It hands the value
// back to the caller so nothing is silently dropped.
//
//	if err := tx.Send(v); err != nil {
//		var se *gochan.SendError[Job]
//		if errors.As(err, &se) {
//			requeue(se.Value)
//		}
//	}
type SendError[T any] struct {
	Value T
	Err   error
}

func (e *SendError[T]) Error() string {
	return fmt.Sprintf("send failed: %v", e.Err)
}

func (e *SendError[T]) Unwrap() error {
	return e.Err
}

func sendError[T any](value T, err error) error {
	return &SendError[T]{Value: value, Err: err}
}
