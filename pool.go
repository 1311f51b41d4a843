package gochan

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrJobPanicked marks a result whose job panicked inside the work func.
var ErrJobPanicked = errors.New("gochan: job panicked")

// WorkFunc processes one job. The context is cancelled when the pool is
// stopped.
type WorkFunc[J any, R any] func(ctx context.Context, job J) (R, error)

// WorkerPool runs a fixed number of workers over a shared job channel.
// Each worker holds its own clone of the job Receiver (fan-out: every job
// goes to exactly one worker) and of the result Sender (fan-in: all
// results land in one channel). Results carry the job in Message.Source.
//
// Close stops intake and lets workers drain what is queued; the results
// channel disconnects once the last worker exits. Stop cancels in-flight
// work instead.
type WorkerPool[J any, R any] struct {
	*RunnerBase
	work    WorkFunc[J, R]
	jobs    *Sender[J]
	results *Receiver[Message[R]]
	workers int
	wg      sync.WaitGroup

	panicHandler func(job J, recovered any)
}

type poolOptions[J any, R any] struct {
	name         string
	jobs         Config
	results      Config
	chanOpts     []Option
	panicHandler func(job J, recovered any)
}

// PoolOption configures a WorkerPool.
type PoolOption[J any, R any] func(*poolOptions[J, R])

// WithPoolName names the pool; its channels are named <name>.jobs and
// <name>.results.
func WithPoolName[J any, R any](name string) PoolOption[J, R] {
	return func(o *poolOptions[J, R]) {
		o.name = name
	}
}

// WithJobQueue configures the job channel. By default it is bounded to
// the number of workers, so Submit applies backpressure.
func WithJobQueue[J any, R any](cfg Config) PoolOption[J, R] {
	return func(o *poolOptions[J, R]) {
		o.jobs = cfg
	}
}

// WithResultQueue configures the result channel, unbounded by default.
func WithResultQueue[J any, R any](cfg Config) PoolOption[J, R] {
	return func(o *poolOptions[J, R]) {
		o.results = cfg
	}
}

// WithChannelOptions passes options (logger, metrics) to both channels. A
// logger given here is also used by the pool itself.
func WithChannelOptions[J any, R any](opts ...Option) PoolOption[J, R] {
	return func(o *poolOptions[J, R]) {
		o.chanOpts = append(o.chanOpts, opts...)
	}
}

// WithPanicHandler is called, on the worker goroutine, with any value
// recovered from a panicking job.
func WithPanicHandler[J any, R any](fn func(job J, recovered any)) PoolOption[J, R] {
	return func(o *poolOptions[J, R]) {
		o.panicHandler = fn
	}
}

// NewWorkerPool creates and starts a pool of workers running work.
func NewWorkerPool[J any, R any](workers int, work WorkFunc[J, R], opts ...PoolOption[J, R]) (*WorkerPool[J, R], error) {
	if workers < 1 {
		return nil, fmt.Errorf("workers must be positive, got %d", workers)
	}
	o := poolOptions[J, R]{
		name:    "pool",
		jobs:    Config{Mode: ModeBounded, Capacity: workers},
		results: Config{Mode: ModeUnbounded},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.jobs.Name == "" {
		o.jobs.Name = o.name + ".jobs"
	}
	if o.results.Name == "" {
		o.results.Name = o.name + ".results"
	}

	jobsTx, jobsRx, err := New[J](o.jobs, o.chanOpts...)
	if err != nil {
		return nil, fmt.Errorf("jobs: %w", err)
	}
	resultsTx, resultsRx, err := New[Message[R]](o.results, o.chanOpts...)
	if err != nil {
		jobsTx.Close()
		jobsRx.Close()
		return nil, fmt.Errorf("results: %w", err)
	}

	p := &WorkerPool[J, R]{
		RunnerBase:   newRunnerBase(o.name),
		work:         work,
		jobs:         jobsTx,
		results:      resultsRx,
		workers:      workers,
		panicHandler: o.panicHandler,
	}
	p.setLogger(buildOptions(o.chanOpts).logger)
	p.start(jobsRx, resultsTx)
	return p, nil
}

// NewWorkerPoolFromConfig builds a pool from a validated PoolConfig.
func NewWorkerPoolFromConfig[J any, R any](cfg PoolConfig, work WorkFunc[J, R], opts ...PoolOption[J, R]) (*WorkerPool[J, R], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = append([]PoolOption[J, R]{
		WithJobQueue[J, R](cfg.Jobs),
		WithResultQueue[J, R](cfg.Results),
	}, opts...)
	return NewWorkerPool(cfg.Workers, work, opts...)
}

func (p *WorkerPool[J, R]) start(jobs *Receiver[J], results *Sender[Message[R]]) {
	p.RunnerBase.start()
	for i := 0; i < p.workers; i++ {
		rx, _ := jobs.Clone()
		tx, _ := results.Clone()
		p.wg.Add(1)
		go p.worker(rx, tx)
	}
	// the workers now hold the only handles on these sides
	jobs.Close()
	results.Close()

	go func() {
		p.wg.Wait()
		p.jobs.Close()
		p.RunnerBase.cleanup(nil)
	}()
}

func (p *WorkerPool[J, R]) worker(jobs *Receiver[J], results *Sender[Message[R]]) {
	defer p.wg.Done()
	defer jobs.Close()
	defer results.Close()
	for {
		job, err := jobs.RecvContext(p.ctx)
		if err != nil {
			return
		}
		err = results.SendContext(p.ctx, p.runJob(job))
		if err != nil && !errors.Is(err, ErrDisconnected) {
			return
		}
		// with nobody reading results, keep draining jobs
	}
}

func (p *WorkerPool[J, R]) runJob(job J) (msg Message[R]) {
	msg.Source = job
	defer func() {
		if r := recover(); r != nil {
			msg.Error = fmt.Errorf("%w: %v", ErrJobPanicked, r)
			p.log.Warnf("job panicked: %v", r)
			if p.panicHandler != nil {
				p.panicHandler(job, r)
			}
		}
	}()
	msg.Value, msg.Error = p.work(p.ctx, job)
	return msg
}

// Submit queues a job, blocking while the job queue is full. It fails with
// ErrHandleClosed after Close, and with ErrDisconnected if the workers have
// all exited.
func (p *WorkerPool[J, R]) Submit(job J) error {
	return p.jobs.Send(job)
}

// TrySubmit queues a job without blocking.
func (p *WorkerPool[J, R]) TrySubmit(job J) error {
	return p.jobs.TrySend(job)
}

// SubmitContext queues a job, giving up when ctx is done.
func (p *WorkerPool[J, R]) SubmitContext(ctx context.Context, job J) error {
	return p.jobs.SendContext(ctx, job)
}

// Jobs returns a new Sender on the job queue for an extra producer. The
// caller must close it; the queue only drains once every such clone and
// the pool itself are closed.
func (p *WorkerPool[J, R]) Jobs() (*Sender[J], error) {
	return p.jobs.Clone()
}

// Results returns the receiver for job results.
func (p *WorkerPool[J, R]) Results() *Receiver[Message[R]] {
	return p.results
}

// Workers returns the number of workers the pool was started with.
func (p *WorkerPool[J, R]) Workers() int {
	return p.workers
}

// Close stops accepting jobs from the pool's own Submit methods. Workers
// finish everything already queued and then exit.
func (p *WorkerPool[J, R]) Close() error {
	err := p.jobs.Close()
	if errors.Is(err, ErrHandleClosed) {
		return nil
	}
	return err
}

// Wait blocks until every worker has exited.
func (p *WorkerPool[J, R]) Wait() {
	<-p.Done()
}
