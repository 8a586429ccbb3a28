package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/maskpaint/internal/logging"
)

// WorkerPool is a pool of goroutines executing submitted jobs.
//
// Each worker owns a queue and steals from the others when its own queue is
// empty, so one slow stroke job does not hold up checkpoint scans queued
// behind it.
type WorkerPool struct {
	workers    int
	workQueues []chan func()

	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// next is the round-robin cursor for Submit.
	next atomic.Uint32
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case work := <-own:
			run(work)
		default:
			if stolen := p.steal(id); stolen != nil {
				run(stolen)
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case work := <-own:
				run(work)
			}
		}
	}
}

// run executes a job on a worker goroutine. A panic is logged and
// swallowed so the worker survives.
func run(work func()) {
	if work == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Error("parallel: job panicked", "panic", r)
		}
	}()
	work()
}

// drain executes everything still queued so that no caller waiting on a
// job is left blocked after Close.
func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			run(work)
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// Submit queues a single job. It reports false if the pool is closed, in
// which case fn will never run.
func (p *WorkerPool) Submit(fn func()) bool {
	if fn == nil || !p.running.Load() {
		return false
	}
	idx := int(p.next.Add(1)) % p.workers
	select {
	case p.workQueues[idx] <- fn:
		return true
	case <-p.done:
		return false
	}
}

// ExecuteAll distributes work across the workers and waits for all of it.
// If the pool is closed, the remaining items run on the calling goroutine
// so the result is still complete. If an item panics, the first panic is
// re-raised on the calling goroutine once every item has finished.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if !p.running.Load() {
		for _, fn := range work {
			if fn != nil {
				fn()
			}
		}
		return
	}

	var (
		wg        sync.WaitGroup
		panicOnce sync.Once
		panicVal  any
		panicked  bool
	)
	wg.Add(len(work))
	for i, fn := range work {
		wrapped := func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() {
						panicVal, panicked = r, true
					})
				}
			}()
			if fn != nil {
				fn()
			}
		}
		select {
		case p.workQueues[i%p.workers] <- wrapped:
		case <-p.done:
			wrapped()
		}
	}
	wg.Wait()
	if panicked {
		panic(panicVal)
	}
}

// Close stops accepting work, runs what is queued and stops the workers.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int { return p.workers }

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool { return p.running.Load() }
