package gochan

import (
	"context"
	"sync"
)

// RunnerBase is the lifecycle shared by the goroutine-backed components in
// this package. The runner's context is cancelled by Stop and is passed to
// every blocking channel call the runner makes, so Stop never waits on a
// parked Send or Recv.
type RunnerBase struct {
	name       string
	ctx        context.Context
	cancel     context.CancelFunc
	closedChan chan error
	done       chan struct{}
	log        Logger

	mu        sync.Mutex
	isRunning bool
}

func newRunnerBase(name string) *RunnerBase {
	ctx, cancel := context.WithCancel(context.Background())
	return &RunnerBase{
		name:       name,
		ctx:        ctx,
		cancel:     cancel,
		closedChan: make(chan error, 1),
		done:       make(chan struct{}),
		log:        defaultLogger.WithField("component", name),
	}
}

// setLogger replaces the runner's logger. It must be called before start.
func (r *RunnerBase) setLogger(l Logger) {
	if l != nil {
		r.log = l.WithField("component", r.name)
	}
}

func (r *RunnerBase) start() {
	r.mu.Lock()
	r.isRunning = true
	r.mu.Unlock()
	r.log.Debugf("started")
}

// cleanup marks the runner finished and publishes err on ClosedChan. It
// must run exactly once, from the runner's own goroutine.
func (r *RunnerBase) cleanup(err error) {
	r.mu.Lock()
	r.isRunning = false
	r.mu.Unlock()
	r.cancel()
	r.log.Debugf("stopped")
	if err != nil {
		r.closedChan <- err
	}
	close(r.closedChan)
	close(r.done)
}

// Stop cancels the runner and waits for its goroutine to finish. It is
// safe to call more than once, but not from the runner's own callbacks.
func (r *RunnerBase) Stop() error {
	r.cancel()
	<-r.done
	return nil
}

// IsRunning returns true until the runner's goroutine has finished.
func (r *RunnerBase) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isRunning
}

// ClosedChan delivers the error that ended the runner, if any, and is then
// closed. A clean finish closes it without a value.
func (r *RunnerBase) ClosedChan() <-chan error {
	return r.closedChan
}

// Done is closed once the runner has fully finished.
func (r *RunnerBase) Done() <-chan struct{} {
	return r.done
}
