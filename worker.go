package main

import (
	"runtime/debug"
	"sync"
)

const workerQueueDepth = 256

// worker runs queued jobs on a single dedicated goroutine so network
// fetches and image decodes never touch the render thread. Jobs have no
// result channel; they report failure through logs and shared state.
type worker struct {
	mu     sync.Mutex
	jobs   chan func()
	closed bool
	done   chan struct{}
}

func newWorker() *worker {
	w := &worker{
		jobs: make(chan func(), workerQueueDepth),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *worker) run() {
	for job := range w.jobs {
		w.runOne(job)
	}
	logDebug("worker exiting")
	close(w.done)
}

// runOne isolates a panicking job so it cannot kill the worker silently.
func (w *worker) runOne(job func()) {
	defer func() {
		if r := recover(); r != nil {
			logError("worker job panic: %v\n%s", r, debug.Stack())
		}
	}()
	job()
}

// spawn enqueues a job without blocking the caller. Jobs from one caller
// run in the order they were spawned. Jobs submitted after close, or past
// the queue depth, are dropped with a log line.
func (w *worker) spawn(job func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		logError("worker: spawn after close dropped")
		return
	}
	select {
	case w.jobs <- job:
	default:
		logError("worker: queue full, job dropped")
	}
}

// close stops accepting jobs and blocks until the in-flight job finishes
// and the worker goroutine exits.
func (w *worker) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.jobs)
	w.mu.Unlock()
	<-w.done
}
