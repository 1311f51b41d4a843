package gochan

import (
	"context"
	"errors"
)

func idMapperFunc[T any](input T) (output T, skip bool, stop bool) {
	output = input
	return
}

// Mapper connects an input and output channel applying transforms between
// them. It receives from the input, applies MapFunc and sends the result
// to the output.
//
// The Mapper takes ownership of both handles and closes them when it
// finishes, so end-of-stream flows downstream: once every sender of the
// input is closed and the input is drained, the output Sender is closed.
// Clone a handle before passing it in to keep using it.
type Mapper[I any, O any] struct {
	*RunnerBase
	input  *Receiver[I]
	output *Sender[O]

	// MapFunc is applied to each value in the input channel
	// and returns a tuple of 3 things - outval, skip, stop
	// if skip is false, outval is sent to the output channel
	// if stop is true, then the entire mapper stops processing any further elements.
	MapFunc func(I) (O, bool, bool)
	onDone  func(p *Mapper[I, O])
}

// MapperOption configures a Mapper.
type MapperOption[I any, O any] func(*Mapper[I, O])

// WithMapperOnDone sets a callback run on the mapper's goroutine after it
// has closed its handles.
func WithMapperOnDone[I any, O any](fn func(*Mapper[I, O])) MapperOption[I, O] {
	return func(m *Mapper[I, O]) {
		m.onDone = fn
	}
}

// WithMapperLogger sets the logger for the mapper's lifecycle events.
func WithMapperLogger[I any, O any](l Logger) MapperOption[I, O] {
	return func(m *Mapper[I, O]) {
		m.setLogger(l)
	}
}

// NewMapper creates and starts a mapper between input and output.
// The mapper function returns (output, skip, stop) where:
// - output: the transformed value
// - skip: if true, the output is not sent to the output channel
// - stop: if true, the mapper stops processing further elements
func NewMapper[T any, U any](input *Receiver[T], output *Sender[U], mapper func(T) (U, bool, bool), opts ...MapperOption[T, U]) *Mapper[T, U] {
	out := &Mapper[T, U]{
		RunnerBase: newRunnerBase("mapper"),
		input:      input,
		output:     output,
		MapFunc:    mapper,
	}
	for _, opt := range opts {
		opt(out)
	}
	out.start()
	return out
}

// NewPipe creates a new pipe that connects an input and output channel.
// A pipe is a mapper with the identity function, so it simply forwards
// all values from input to output without transformation.
func NewPipe[T any](input *Receiver[T], output *Sender[T], opts ...MapperOption[T, T]) *Mapper[T, T] {
	return NewMapper(input, output, idMapperFunc, opts...)
}

// Input returns the receiver the mapper drains.
func (m *Mapper[I, O]) Input() *Receiver[I] {
	return m.input
}

func (m *Mapper[I, O]) start() {
	m.RunnerBase.start()
	go func() {
		var err error
		defer func() { m.cleanup(err) }()
		err = m.run()
	}()
}

func (m *Mapper[I, O]) run() error {
	for {
		value, err := m.input.RecvContext(m.ctx)
		if err != nil {
			return quietStop(err)
		}
		outval, skip, stop := m.MapFunc(value)
		if !skip {
			if err := m.output.SendContext(m.ctx, outval); err != nil {
				return quietStop(err)
			}
		}
		if stop {
			return nil
		}
	}
}

func (m *Mapper[I, O]) cleanup(err error) {
	m.input.Close()
	m.output.Close()
	if m.onDone != nil {
		m.onDone(m)
	}
	m.RunnerBase.cleanup(err)
}

// quietStop maps the ordinary ways a runner ends (upstream finished,
// downstream gone, Stop called) to a nil error.
func quietStop(err error) error {
	if errors.Is(err, ErrDisconnected) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
