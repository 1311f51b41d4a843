package gochan

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type options struct {
	name    string
	logger  Logger
	metrics *Metrics
}

// Option configures a channel at construction.
type Option func(*options)

// WithName names the channel in logs and metric labels. Without it the
// channel's ID is used.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger for channel lifecycle events.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLogrus is WithLogger for a plain logrus logger.
func WithLogrus(l *logrus.Logger) Option {
	return WithLogger(NewLogrusLogger(l))
}

// WithMetrics records channel activity in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: defaultLogger}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewBounded creates a channel that buffers at most capacity values; sends
// on a full channel block. It returns ErrInvalidCapacity if capacity < 1.
func NewBounded[T any](capacity int, opts ...Option) (*Sender[T], *Receiver[T], error) {
	if capacity < 1 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	s, r := handles(newCore(newFixedRing[T](capacity), capacity, opts))
	return s, r, nil
}

// NewUnbounded creates a channel whose sends never block on capacity.
func NewUnbounded[T any](opts ...Option) (*Sender[T], *Receiver[T]) {
	return handles(newCore(newGrowableRing[T](), 0, opts))
}

func handles[T any](c *core[T]) (*Sender[T], *Receiver[T]) {
	return &Sender[T]{core: c}, &Receiver[T]{core: c}
}
