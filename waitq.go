package gochan

import "container/list"

// waiter is one goroutine parked in a send or receive call. The notify
// channel has a single slot so a notification never blocks the notifier.
type waiter struct {
	notify chan struct{}
	elem   *list.Element
}

// Done returns the channel that receives the wake-up token.
func (w *waiter) Done() <-chan struct{} {
	return w.notify
}

// waitQueue is a FIFO of parked goroutines. All methods must be called with
// the owning core's lock held.
type waitQueue struct {
	waiters list.List
}

func (q *waitQueue) Len() int {
	return q.waiters.Len()
}

// Enqueue parks a new waiter at the tail.
func (q *waitQueue) Enqueue() *waiter {
	w := &waiter{notify: make(chan struct{}, 1)}
	w.elem = q.waiters.PushBack(w)
	return w
}

// NotifyOne wakes the oldest waiter, if any, and reports whether one was
// woken. The woken waiter is removed from the queue.
func (q *waitQueue) NotifyOne() bool {
	front := q.waiters.Front()
	if front == nil {
		return false
	}
	w := q.waiters.Remove(front).(*waiter)
	w.elem = nil
	w.notify <- struct{}{}
	return true
}

// NotifyAll wakes every parked waiter.
func (q *waitQueue) NotifyAll() {
	for q.NotifyOne() {
	}
}

// Abandon removes a waiter that stopped waiting because of a timeout or a
// cancelled context. If the waiter had already been notified, the wake-up
// is handed to the next waiter so it is not lost.
func (q *waitQueue) Abandon(w *waiter) {
	if w.elem != nil {
		q.waiters.Remove(w.elem)
		w.elem = nil
		return
	}
	q.NotifyOne()
}
