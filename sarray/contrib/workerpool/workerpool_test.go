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

package workerpool

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()
	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}

	def := New(0)
	defer def.Close()
	if def.Workers() != runtime.GOMAXPROCS(0) {
		t.Errorf("Workers() = %d, want %d", def.Workers(), runtime.GOMAXPROCS(0))
	}
}

func TestEach(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 1000
	results := make([]int, n)
	var calls atomic.Int64
	pool.Each(n, func(i int) {
		results[i] = i * 3
		calls.Add(1)
	})

	if calls.Load() != int64(n) {
		t.Fatalf("fn called %d times, want %d", calls.Load(), n)
	}
	for i, v := range results {
		if v != i*3 {
			t.Fatalf("results[%d] = %d, want %d", i, v, i*3)
		}
	}
}

func TestRange(t *testing.T) {
	pool := New(3)
	defer pool.Close()

	for _, n := range []int{1, 2, 3, 10, 101} {
		seen := make([]int32, n)
		pool.Range(n, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, c)
			}
		}
	}
}

func TestEmptyAndClosed(t *testing.T) {
	pool := New(2)
	pool.Each(0, func(int) { t.Fatal("fn called for n=0") })
	pool.Range(-1, func(int, int) { t.Fatal("fn called for n<0") })

	pool.Close()
	pool.Close()

	sum := 0
	pool.Each(5, func(i int) { sum += i })
	if sum != 10 {
		t.Errorf("closed pool Each sum = %d, want 10", sum)
	}
}

func TestCloseDuringBatches(t *testing.T) {
	for range 50 {
		pool := New(4)
		var calls atomic.Int64
		done := make(chan struct{})
		go func() {
			defer close(done)
			for range 20 {
				pool.Each(16, func(int) { calls.Add(1) })
				pool.Range(16, func(start, end int) { calls.Add(int64(end - start)) })
			}
		}()
		pool.Close()
		<-done
		if got := calls.Load(); got != 20*32 {
			t.Fatalf("calls = %d, want %d", got, 20*32)
		}
	}
}
