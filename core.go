package gochan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a channel as a whole (not of a handle).
// Both closures are one way: a channel never returns to StateOpen.
type State int

const (
	// StateOpen means senders and receivers are both alive.
	StateOpen State = iota
	// StateSendClosed means every sender is gone but values are still
	// buffered for receivers to drain.
	StateSendClosed
	// StateDrained means every sender is gone and the buffer is empty; any
	// receive now fails with ErrDisconnected.
	StateDrained
	// StateReceiveClosed means every receiver is gone; sends fail with
	// ErrDisconnected whatever the buffer held.
	StateReceiveClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSendClosed:
		return "send-closed"
	case StateDrained:
		return "drained"
	case StateReceiveClosed:
		return "receive-closed"
	}
	return "unknown"
}

// Stats is a point-in-time snapshot of a channel.
type Stats struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Length           int    `json:"length"`
	Capacity         int    `json:"capacity"`
	Senders          int    `json:"senders"`
	Receivers        int    `json:"receivers"`
	BlockedSenders   int    `json:"blocked_senders"`
	BlockedReceivers int    `json:"blocked_receivers"`
	TotalSent        uint64 `json:"total_sent"`
	TotalReceived    uint64 `json:"total_received"`
	TotalDiscarded   uint64 `json:"total_discarded"`
	State            State  `json:"state"`
}

// handleState is the per-handle bookkeeping. It is guarded by the core lock.
type handleState struct {
	closed bool
	parked int
}

// core is the shared queue behind every Sender and Receiver of a channel.
// Every field below mu is guarded by it.
type core[T any] struct {
	id   uuid.UUID
	name string
	log  Logger

	mu        sync.Mutex
	buf       *ring[T]
	capacity  int
	senders   int
	receivers int

	sendClosed bool
	recvClosed bool

	sendq waitQueue
	recvq waitQueue

	totalSent      uint64
	totalReceived  uint64
	totalDiscarded uint64

	metrics *channelMetrics
}

func newCore[T any](buf *ring[T], capacity int, opts []Option) *core[T] {
	o := buildOptions(opts)
	c := &core[T]{
		id:        uuid.New(),
		buf:       buf,
		capacity:  capacity,
		senders:   1,
		receivers: 1,
	}
	c.name = o.name
	if c.name == "" {
		c.name = c.id.String()
	}
	c.log = o.logger.WithField("channel", c.name)
	c.metrics = o.metrics.forChannel(c.name)
	c.observe()
	if capacity > 0 {
		c.log.Debugf("created bounded channel, capacity %d", capacity)
	} else {
		c.log.Debugf("created unbounded channel")
	}
	return c
}

// ID returns the unique identifier assigned at construction.
func (c *core[T]) ID() string {
	return c.id.String()
}

// Name returns the channel name, which defaults to its ID.
func (c *core[T]) Name() string {
	return c.name
}

// Cap returns the capacity of a bounded channel, or 0 if unbounded.
func (c *core[T]) Cap() int {
	return c.capacity
}

// IsBounded reports whether sends can block on a full buffer.
func (c *core[T]) IsBounded() bool {
	return c.capacity > 0
}

// Len returns the number of buffered values.
func (c *core[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len()
}

// SenderCount returns the number of live Sender handles.
func (c *core[T]) SenderCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.senders
}

// ReceiverCount returns the number of live Receiver handles.
func (c *core[T]) ReceiverCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receivers
}

// State returns the channel lifecycle state.
func (c *core[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

// Stats returns a consistent snapshot of the channel counters.
func (c *core[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		ID:               c.id.String(),
		Name:             c.name,
		Length:           c.buf.Len(),
		Capacity:         c.capacity,
		Senders:          c.senders,
		Receivers:        c.receivers,
		BlockedSenders:   c.sendq.Len(),
		BlockedReceivers: c.recvq.Len(),
		TotalSent:        c.totalSent,
		TotalReceived:    c.totalReceived,
		TotalDiscarded:   c.totalDiscarded,
		State:            c.state(),
	}
}

func (c *core[T]) state() State {
	switch {
	case c.recvClosed:
		return StateReceiveClosed
	case c.sendClosed && c.buf.Len() == 0:
		return StateDrained
	case c.sendClosed:
		return StateSendClosed
	}
	return StateOpen
}

func (c *core[T]) observe() {
	c.metrics.observe(c.buf.Len(), c.sendq.Len(), c.recvq.Len(), c.senders, c.receivers)
}

// park blocks the caller on q until it is notified, ctx is done or timeout
// fires. It must be called with c.mu held and returns with c.mu held. A nil
// timeout never fires.
func (c *core[T]) park(ctx context.Context, h *handleState, q *waitQueue, timeout <-chan time.Time) error {
	w := q.Enqueue()
	h.parked++
	c.observe()
	c.mu.Unlock()

	var err error
	select {
	case <-w.Done():
	case <-ctx.Done():
		err = ctx.Err()
	case <-timeout:
		err = ErrTimeout
	}

	c.mu.Lock()
	h.parked--
	if err != nil {
		q.Abandon(w)
	}
	c.observe()
	return err
}

// send enqueues v. When block is false a full buffer fails with ErrFull
// instead of parking.
func (c *core[T]) send(ctx context.Context, h *handleState, v T, block bool, timeout <-chan time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		if h.closed {
			return sendError(v, ErrHandleClosed)
		}
		if c.recvClosed {
			return sendError(v, ErrDisconnected)
		}
		if c.buf.Push(v) {
			c.totalSent++
			c.metrics.addSent()
			c.recvq.NotifyOne()
			c.observe()
			return nil
		}
		if !block {
			return sendError(v, ErrFull)
		}
		if err := c.park(ctx, h, &c.sendq, timeout); err != nil {
			return sendError(v, err)
		}
	}
}

// recv dequeues the oldest value. Buffered values are handed out even after
// every sender has gone.
func (c *core[T]) recv(ctx context.Context, h *handleState, block bool, timeout <-chan time.Time) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		if h.closed {
			return zero, ErrHandleClosed
		}
		if v, ok := c.buf.Pop(); ok {
			c.totalReceived++
			c.metrics.addReceived()
			c.sendq.NotifyOne()
			c.observe()
			return v, nil
		}
		if c.sendClosed {
			return zero, ErrDisconnected
		}
		if !block {
			return zero, ErrEmpty
		}
		if err := c.park(ctx, h, &c.recvq, timeout); err != nil {
			return zero, err
		}
	}
}

func (c *core[T]) cloneSender(h *handleState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h.closed {
		return ErrHandleClosed
	}
	c.senders++
	c.observe()
	return nil
}

func (c *core[T]) cloneReceiver(h *handleState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h.closed {
		return ErrHandleClosed
	}
	c.receivers++
	c.observe()
	return nil
}

func (c *core[T]) closeSender(h *handleState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h.closed {
		return ErrHandleClosed
	}
	h.closed = true
	c.senders--
	if h.parked > 0 {
		// wake calls blocked on this handle so they can see it closed
		c.sendq.NotifyAll()
	}
	if c.senders == 0 {
		c.sendClosed = true
		c.recvq.NotifyAll()
		c.log.Debugf("send side closed with %d values buffered", c.buf.Len())
	}
	c.observe()
	return nil
}

func (c *core[T]) closeReceiver(h *handleState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h.closed {
		return ErrHandleClosed
	}
	h.closed = true
	c.receivers--
	if h.parked > 0 {
		c.recvq.NotifyAll()
	}
	if c.receivers == 0 {
		c.recvClosed = true
		n := c.buf.Clear()
		c.totalDiscarded += uint64(n)
		c.metrics.addDiscarded(n)
		c.sendq.NotifyAll()
		if n > 0 {
			c.log.Warnf("receive side closed, discarded %d buffered values", n)
		} else {
			c.log.Debugf("receive side closed")
		}
	}
	c.observe()
	return nil
}
