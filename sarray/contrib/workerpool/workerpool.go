// Copyright 2025 go-systolic Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package workerpool runs independent simulation scenarios on a fixed set of
// goroutines.
//
// Engines are single-threaded and exclusively owned, so parallelism only ever
// happens across scenarios: each task builds, drives and discards its own
// engine.
//
//	pool := workerpool.New(0)
//	defer pool.Close()
//	pool.Each(len(seeds), func(i int) {
//	    results[i] = runScenario(seeds[i])
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent set of workers reused across batches.
type Pool struct {
	workers int
	tasks   chan task

	// mu is held for reading while a batch submits tasks and for writing
	// while Close shuts the channel.
	mu     sync.RWMutex
	closed bool
}

type task struct {
	run  func()
	done *sync.WaitGroup
}

// New starts a pool of workers goroutines. workers <= 0 means GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: workers,
		tasks:   make(chan task, workers),
	}
	for range workers {
		go p.loop()
	}
	return p
}

func (p *Pool) loop() {
	for t := range p.tasks {
		t.run()
		t.done.Done()
	}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Close stops the workers after queued work finishes. It is safe to call
// more than once and concurrently with Each or Range: a batch already
// submitting finishes on the workers, later batches run on the caller's
// goroutine.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.tasks)
}

// Each calls fn(i) for every i in [0, n) and blocks until all calls return.
// Indices are handed out one at a time, so uneven scenario lengths balance
// across workers. Calls may run in any order.
func (p *Pool) Each(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := min(p.workers, n)
	p.mu.RLock()
	if p.closed || workers == 1 {
		p.mu.RUnlock()
		for i := range n {
			fn(i)
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		p.tasks <- task{
			run: func() {
				for {
					i := int(next.Add(1)) - 1
					if i >= n {
						return
					}
					fn(i)
				}
			},
			done: &wg,
		}
	}
	p.mu.RUnlock()
	wg.Wait()
}

// Range splits [0, n) into one contiguous chunk per worker and calls
// fn(start, end) for each, blocking until all return.
func (p *Pool) Range(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := min(p.workers, n)
	p.mu.RLock()
	if p.closed || workers == 1 {
		p.mu.RUnlock()
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		p.tasks <- task{
			run:  func() { fn(start, end) },
			done: &wg,
		}
	}
	p.mu.RUnlock()
	wg.Wait()
}
