package gochan

import (
	"errors"
	"net"
)

// ReaderFunc is the type of the reader method used by the Reader goroutine primitive.
type ReaderFunc[R any] func() (msg R, err error)

// Reader is a typed Reader goroutine which calls a Read method and sends
// each result, wrapped in a Message, into a channel. It stops on Stop, on
// the first non-timeout read error (after delivering it as a Message and
// on ClosedChan), or when every receiver of its output is closed.
type Reader[R any] struct {
	*RunnerBase
	Read   ReaderFunc[R]
	output *Sender[Message[R]]
	recv   *Receiver[Message[R]]
	buffer int
	onDone func(r *Reader[R])
}

// ReaderOption is a functional option for configuring a Reader
type ReaderOption[R any] func(*Reader[R])

// WithOutputBuffer sets how many messages may be buffered ahead of the
// consumer. Sizes below 1 select an unbounded output.
func WithOutputBuffer[R any](size int) ReaderOption[R] {
	return func(r *Reader[R]) {
		r.buffer = size
	}
}

// WithReaderLogger sets the logger for the reader's lifecycle and read
// errors.
func WithReaderLogger[R any](l Logger) ReaderOption[R] {
	return func(r *Reader[R]) {
		r.setLogger(l)
	}
}

// WithReaderOnDone sets the callback to be called when the reader finishes
func WithReaderOnDone[R any](fn func(*Reader[R])) ReaderOption[R] {
	return func(r *Reader[R]) {
		r.onDone = fn
	}
}

// NewReader creates a new reader instance with functional options.
// The reader function is required as the first parameter, with optional
// configuration via functional options.
//
// Examples:
//
//	// Simple usage, one message buffered
//	reader := NewReader(myReaderFunc)
//
//	// With options
//	reader := NewReader(myReaderFunc,
//	    WithOutputBuffer[int](100),
//	    WithReaderOnDone(func(r *Reader[int]) { log.Println("done") }))
func NewReader[R any](read ReaderFunc[R], opts ...ReaderOption[R]) *Reader[R] {
	out := &Reader[R]{
		RunnerBase: newRunnerBase("reader"),
		Read:       read,
		buffer:     1,
	}
	for _, opt := range opts {
		opt(out)
	}
	if out.buffer > 0 {
		out.output, out.recv, _ = NewBounded[Message[R]](out.buffer)
	} else {
		out.output, out.recv = NewUnbounded[Message[R]]()
	}
	out.start()
	return out
}

// OutputChan returns the receiver on which messages arrive. Closing it
// (and every clone) makes the reader stop after its current read.
func (r *Reader[R]) OutputChan() *Receiver[Message[R]] {
	return r.recv
}

func (r *Reader[R]) start() {
	r.RunnerBase.start()
	// Read may block indefinitely, so it runs on its own goroutine and the
	// runner finishes as soon as it is stopped.
	finished := make(chan error, 1)
	go func() {
		finished <- r.readLoop()
	}()
	go func() {
		var err error
		select {
		case err = <-finished:
		case <-r.ctx.Done():
		}
		r.cleanup(err)
	}()
}

func (r *Reader[R]) readLoop() error {
	for r.ctx.Err() == nil {
		value, err := r.Read()
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
		}
		if serr := r.output.SendContext(r.ctx, Message[R]{Value: value, Error: err}); serr != nil {
			return quietStop(serr)
		}
		if err != nil {
			r.log.Debugf("read error: %v", err)
			return err
		}
	}
	return nil
}

func (r *Reader[R]) cleanup(err error) {
	r.output.Close()
	if r.onDone != nil {
		r.onDone(r)
	}
	r.RunnerBase.cleanup(err)
}
