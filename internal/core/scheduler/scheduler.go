// Package scheduler defers state-mutating callbacks to a safe flush point in
// the frame loop.
package scheduler

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/zeusync/ecs/internal/core/observability/log"
	"github.com/zeusync/ecs/pkg/sequence"
)

const defaultCapacity = 64

type task struct {
	label string
	fn    func()
}

// Stats counts scheduler activity since construction.
type Stats struct {
	Scheduled uint64
	Executed  uint64
	Failed    uint64
	Flushes   uint64
}

// Deferred is a FIFO command queue drained once per frame by Flush.
// Callbacks scheduled while a flush is running land in the next flush.
// Deferred is single-threaded: Schedule and Flush must be called from the
// goroutine that drives the frame loop.
type Deferred struct {
	log      log.Log
	pending  *sequence.Queue[task]
	flushing bool
	stats    Stats
}

func New(logger log.Log, capacity int) *Deferred {
	if logger == nil {
		logger = log.Nop()
	}
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Deferred{
		log:     logger.With(log.String("component", "scheduler")),
		pending: sequence.NewQueue[task](capacity),
	}
}

// Schedule enqueues fn for the next flush. The label only serves diagnostics.
func (d *Deferred) Schedule(label string, fn func()) {
	if fn == nil {
		d.log.Warn("nil callback dropped", log.String("label", label))
		return
	}
	d.pending.Enqueue(task{label: label, fn: fn})
	d.stats.Scheduled++
}

// Flush runs every callback that was pending when Flush was called, in
// enqueue order. A panicking callback is recovered and reported in the
// returned error; the rest of the batch still runs.
func (d *Deferred) Flush() error {
	if d.flushing {
		return ErrReentrantFlush
	}
	d.flushing = true
	defer func() { d.flushing = false }()

	d.stats.Flushes++
	batch := d.pending.Len()
	var errs error
	for i := 0; i < batch; i++ {
		t, ok := d.pending.Dequeue()
		if !ok {
			break
		}
		if err := d.run(t); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// FlushAll flushes until the queue is empty or maxPasses flushes ran.
func (d *Deferred) FlushAll(maxPasses int) error {
	var errs error
	for pass := 0; pass < maxPasses && !d.pending.IsEmpty(); pass++ {
		errs = multierr.Append(errs, d.Flush())
	}
	return errs
}

func (d *Deferred) Pending() int {
	return d.pending.Len()
}

func (d *Deferred) Stats() Stats {
	return d.stats
}

func (d *Deferred) run(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.stats.Failed++
			err = fmt.Errorf("%w: %s: %v", ErrCallbackPanicked, t.label, r)
			d.log.Error("scheduled callback panicked",
				log.String("label", t.label),
				log.Any("panic", r),
			)
		}
	}()
	t.fn()
	d.stats.Executed++
	return nil
}
