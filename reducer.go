package gochan

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Reducer is a way to collect messages of type T in some kind of window
// and reduce them to type U. For example this could be used to batch messages
// into a list every 10 seconds. Alternatively if a time based window is not
// used a reduction can be invoked manually.
//
// A window is flushed when FlushPeriod elapses with something collected,
// when CollectFunc asks for it, when Flush is called, and one final time
// when the input disconnects. The output is closed after that final flush.
type Reducer[T any, C any, U any] struct {
	*RunnerBase
	FlushPeriod time.Duration
	// CollectFunc adds an input to the collection and returns the updated collection.
	// The bool return value indicates whether a flush should be triggered immediately.
	CollectFunc func(input T, collection C) (C, bool)
	ReduceFunc  func(collectedItems C) (reducedOutputs U)

	mu            sync.Mutex
	pendingEvents C
	pendingCount  int

	input    *Receiver[T]
	inSender *Sender[T]
	output   *Sender[U]
	outRecv  *Receiver[U]
	flushMu  sync.Mutex
}

// ReducerOption is a functional option for configuring a Reducer
type ReducerOption[T any, C any, U any] func(*Reducer[T, C, U])

// WithFlushPeriod sets the flush period for the reducer. A period of zero
// or less turns periodic flushing off; windows then close only through
// CollectFunc, Flush or the input disconnecting.
func WithFlushPeriod[T any, C any, U any](period time.Duration) ReducerOption[T, C, U] {
	return func(r *Reducer[T, C, U]) {
		r.FlushPeriod = period
	}
}

// WithReducerLogger sets the logger for the reducer's lifecycle and flushes.
func WithReducerLogger[T any, C any, U any](l Logger) ReducerOption[T, C, U] {
	return func(r *Reducer[T, C, U]) {
		r.setLogger(l)
	}
}

// NewReducer creates and starts a reducer. The reducer takes ownership of
// input and output. A nil input makes the reducer create its own unbounded
// channel, fed through Send and InputChan; a nil output likewise creates
// one read through OutputChan.
func NewReducer[T any, C any, U any](input *Receiver[T], output *Sender[U],
	collect func(T, C) (C, bool), reduce func(C) U,
	opts ...ReducerOption[T, C, U]) *Reducer[T, C, U] {
	out := &Reducer[T, C, U]{
		RunnerBase:  newRunnerBase("reducer"),
		FlushPeriod: 100 * time.Millisecond,
		CollectFunc: collect,
		ReduceFunc:  reduce,
		input:       input,
		output:      output,
	}
	for _, opt := range opts {
		opt(out)
	}
	if out.input == nil {
		out.inSender, out.input = NewUnbounded[T]()
	}
	if out.output == nil {
		out.output, out.outRecv = NewUnbounded[U]()
	}
	out.start()
	return out
}

// NewIDReducer creates a Reducer that simply collects events of type T into a list (of type []T).
func NewIDReducer[T any](input *Receiver[T], output *Sender[[]T], opts ...ReducerOption[T, []T, []T]) *Reducer[T, []T, []T] {
	return NewReducer(input, output, func(v T, collection []T) ([]T, bool) {
		return append(collection, v), false
	}, IDFunc[[]T], opts...)
}

// NewListReducer collects lists of items and concats them to a collection.
// This allows producers to send events here in batch mode instead of 1 at a time.
func NewListReducer[T any](input *Receiver[[]T], output *Sender[[]T], opts ...ReducerOption[[]T, []T, []T]) *Reducer[[]T, []T, []T] {
	return NewReducer(input, output, func(v []T, collection []T) ([]T, bool) {
		return append(collection, v...), false
	}, IDFunc[[]T], opts...)
}

// OutputChan returns the receiver for reduced values when the reducer owns
// its output, nil otherwise.
func (r *Reducer[T, C, U]) OutputChan() *Receiver[U] {
	return r.outRecv
}

// InputChan returns the sender feeding the reducer when it owns its input,
// nil otherwise.
func (r *Reducer[T, C, U]) InputChan() *Sender[T] {
	return r.inSender
}

// Send sends a value onto a self-owned input for (eventual) reduction.
func (r *Reducer[T, C, U]) Send(value T) error {
	if r.inSender == nil {
		return sendError(value, ErrHandleClosed)
	}
	return r.inSender.Send(value)
}

// CloseInput closes a self-owned input, which makes the reducer flush what
// it has and finish.
func (r *Reducer[T, C, U]) CloseInput() error {
	if r.inSender == nil {
		return ErrHandleClosed
	}
	return r.inSender.Close()
}

func (r *Reducer[T, C, U]) start() {
	r.RunnerBase.start()
	go func() {
		var err error
		defer func() { r.cleanup(err) }()
		err = r.run()
	}()
}

func (r *Reducer[T, C, U]) run() error {
	nextFlush := time.Now().Add(r.FlushPeriod)
	for {
		event, err := r.recv(nextFlush)
		switch {
		case err == nil:
			r.mu.Lock()
			var shouldFlush bool
			r.pendingEvents, shouldFlush = r.CollectFunc(event, r.pendingEvents)
			r.pendingCount++
			r.mu.Unlock()
			if shouldFlush {
				if err := r.Flush(); err != nil {
					return quietStop(err)
				}
			}
		case errors.Is(err, context.DeadlineExceeded):
			if err := r.flushPending(); err != nil {
				return quietStop(err)
			}
			nextFlush = time.Now().Add(r.FlushPeriod)
		case errors.Is(err, ErrDisconnected):
			return quietStop(r.flushPending())
		default:
			return quietStop(err)
		}
	}
}

// recv waits for the next input until the flush deadline. Without a
// positive FlushPeriod there is no deadline.
func (r *Reducer[T, C, U]) recv(deadline time.Time) (T, error) {
	if r.FlushPeriod <= 0 {
		return r.input.RecvContext(r.ctx)
	}
	ctx, cancel := context.WithDeadline(r.ctx, deadline)
	defer cancel()
	return r.input.RecvContext(ctx)
}

// flushPending flushes only if something was collected since the last flush.
func (r *Reducer[T, C, U]) flushPending() error {
	r.mu.Lock()
	n := r.pendingCount
	r.mu.Unlock()
	if n == 0 {
		return nil
	}
	return r.Flush()
}

// Flush immediately reduces everything collected so far and sends the
// result to the output, even if nothing was collected.
func (r *Reducer[T, C, U]) Flush() error {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()
	r.mu.Lock()
	r.log.Debugf("flushing %d collected values", r.pendingCount)
	joinedEvents := r.ReduceFunc(r.pendingEvents)
	var zero C
	r.pendingEvents = zero
	r.pendingCount = 0
	r.mu.Unlock()
	return r.output.SendContext(r.ctx, joinedEvents)
}

func (r *Reducer[T, C, U]) cleanup(err error) {
	r.input.Close()
	if r.inSender != nil {
		r.inSender.Close()
	}
	r.output.Close()
	r.RunnerBase.cleanup(err)
}
