/*
 * MIT License
 *
 * Copyright (c) 2024 prinbee authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package daemon

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
	"github.com/nabbar/prinbee/metrics"
)

// MinWorkers bounds the worker pool size to 2..2×CPU, with
// golang.org/x/sync/semaphore gating the in-flight count.
const MinWorkers = 2

// ClampWorkerCount enforces [MinWorkers, 2*NumCPU].
func ClampWorkerCount(n int) int {
	max := 2 * runtime.NumCPU()
	if n < MinWorkers {
		return MinWorkers
	}
	if n > max {
		return max
	}
	return n
}

// HandlerFunc processes one Payload and reports whether it should be
// requeued for the next Stage of a multi-phase operation.
type HandlerFunc func(p *Payload) (requeue bool, err errors.Error)

// WorkerPool is a single MPMC FIFO of payloads: a
// bounded buffered channel feeding a fixed number of goroutines, each
// gated by a weighted semaphore so queue depth in flight never exceeds
// the configured worker count.
type WorkerPool struct {
	queue    chan *Payload
	sem      *semaphore.Weighted
	log      logger.Logger
	dispatch func(p *Payload) (requeue bool, err errors.Error)
	metrics  *metrics.Metrics
}

// SetMetrics attaches the operational counters; nil leaves the pool
// unobserved.
func (wp *WorkerPool) SetMetrics(m *metrics.Metrics) { wp.metrics = m }

// NewWorkerPool creates a pool of ClampWorkerCount(workers) goroutines
// consuming a FIFO of the given capacity, routing each payload through
// dispatch.
func NewWorkerPool(workers, capacity int, dispatch func(p *Payload) (requeue bool, err errors.Error), log logger.Logger) *WorkerPool {
	n := ClampWorkerCount(workers)
	wp := &WorkerPool{
		queue:    make(chan *Payload, capacity),
		sem:      semaphore.NewWeighted(int64(n)),
		dispatch: dispatch,
		log:      log,
	}
	for i := 0; i < n; i++ {
		go wp.run()
	}
	return wp
}

func (wp *WorkerPool) run() {
	ctx := context.Background()
	for p := range wp.queue {
		if err := wp.sem.Acquire(ctx, 1); err != nil {
			continue
		}
		wp.process(p)
		wp.sem.Release(1)
	}
}

func (wp *WorkerPool) process(p *Payload) {
	if wp.metrics != nil {
		wp.metrics.QueueDepth.Dec()
		wp.metrics.PayloadsTotal.WithLabelValues(p.Msg.Header.Name.String()).Inc()
	}
	requeue, err := wp.dispatch(p)
	if err != nil && wp.log != nil {
		wp.log.Error("daemon: worker dispatch failed", logger.F("error", err.Error()))
	}
	if requeue {
		p.Stage++
		wp.Push(p)
	}
}

// Push enqueues p without blocking the event loop: if the queue is
// full the payload is dropped and logged rather than stalling the
// caller.
func (wp *WorkerPool) Push(p *Payload) bool {
	select {
	case wp.queue <- p:
		if wp.metrics != nil {
			wp.metrics.QueueDepth.Inc()
		}
		return true
	default:
		if wp.log != nil {
			wp.log.Warn("daemon: worker queue full, dropping payload")
		}
		return false
	}
}

// Drain closes the queue and returns at once; it does not wait for the
// workers to finish the payloads still queued or in flight.
func (wp *WorkerPool) Drain() {
	close(wp.queue)
}
