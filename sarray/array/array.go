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

package array

import (
	"fmt"

	"github.com/ajroetker/go-systolic/sarray"
	"github.com/ajroetker/go-systolic/sarray/mac"
)

// Engine is a cycle-accurate model of an N×N systolic MAC array.
//
// A operands enter at the left edge of each row and move one column right per
// cycle. B operands enter at the top of each column and move one row down per
// cycle. Every cell computes a×b plus the running sum its upper neighbor held
// on the previous cycle (row 0 adds the staged C bias instead), so partial
// sums drift down the array and leave through row N-1.
//
// An Engine is not safe for concurrent use. Stage the inputs of a cycle with
// PutARow, PutBCol and PutCCol, then call Step exactly once.
type Engine[In, Acc any] struct {
	n    int
	unit mac.Unit[In, Acc]
	cfg  config

	stageA []slot[In]
	stageB []slot[In]
	stageC []slot[Acc]

	aRegs [][]In
	bRegs [][]In
	acc   [][]Acc
	prev  [][]Acc

	cycle int
}

// slot is a single-entry staging buffer for one array edge input.
// full means a value is present; staged means it was written during the
// current cycle.
type slot[T any] struct {
	v      T
	full   bool
	staged bool
}

// New builds an n×n engine computing with unit. The unit fixes the numeric
// format for the engine's whole lifetime. n must be positive.
func New[In, Acc any](n int, unit mac.Unit[In, Acc], opts ...Option) *Engine[In, Acc] {
	if n <= 0 {
		panic(fmt.Sprintf("array: dimension must be positive, got %d", n))
	}
	if unit == nil {
		panic("array: nil MAC unit")
	}
	if f := unit.Format(); !f.Valid() {
		panic(fmt.Sprintf("array: MAC unit reports invalid format %d", int(f)))
	}

	e := &Engine[In, Acc]{n: n, unit: unit}
	for _, opt := range opts {
		opt(&e.cfg)
	}
	e.alloc()
	return e
}

func (e *Engine[In, Acc]) alloc() {
	n := e.n
	e.stageA = make([]slot[In], n)
	e.stageB = make([]slot[In], n)
	e.stageC = make([]slot[Acc], n)
	e.aRegs = grid[In](n)
	e.bRegs = grid[In](n)
	e.acc = grid[Acc](n)
	e.prev = grid[Acc](n)
	e.cycle = 0
}

// grid allocates an n×n matrix backed by one contiguous slice.
func grid[T any](n int) [][]T {
	backing := make([]T, n*n)
	g := make([][]T, n)
	for i := range g {
		g[i] = backing[i*n : (i+1)*n : (i+1)*n]
	}
	return g
}

// Reset returns the engine to its freshly constructed state, keeping N, the
// MAC unit and the options.
func (e *Engine[In, Acc]) Reset() {
	e.alloc()
}

// N returns the array dimension.
func (e *Engine[In, Acc]) N() int {
	return e.n
}

// Cycle returns the number of Step calls since construction or Reset.
func (e *Engine[In, Acc]) Cycle() int {
	return e.cycle
}

// Format returns the numeric format of the engine's MAC unit.
func (e *Engine[In, Acc]) Format() sarray.Format {
	return e.unit.Format()
}

// BoundsPolicy returns the out-of-range contract the engine was built with.
func (e *Engine[In, Acc]) BoundsPolicy() BoundsPolicy {
	return e.cfg.bounds
}

// PutARow stages v at the left edge of row. It is consumed by the next Step.
// It reports whether the value was accepted; see BoundsPolicy.
func (e *Engine[In, Acc]) PutARow(row int, v In) bool {
	return put(e, e.stageA, "A row", row, v)
}

// PutBCol stages v at the top edge of col. It is consumed by the next Step.
// It reports whether the value was accepted; see BoundsPolicy.
func (e *Engine[In, Acc]) PutBCol(col int, v In) bool {
	return put(e, e.stageB, "B column", col, v)
}

// PutCCol stages the bias added by row 0 of col on the next Step.
// The bias is consumed by that Step; later Steps add zero unless C is staged
// again or the Engine was built WithStickyBias.
// It reports whether the value was accepted; see BoundsPolicy.
func (e *Engine[In, Acc]) PutCCol(col int, v Acc) bool {
	return put(e, e.stageC, "C column", col, v)
}

func put[In, Acc, T any](e *Engine[In, Acc], slots []slot[T], what string, idx int, v T) bool {
	if idx < 0 || idx >= e.n {
		if e.cfg.bounds == PanicOutOfRange {
			panic(fmt.Sprintf("array: %s index %d out of range [0, %d)", what, idx, e.n))
		}
		return false
	}
	s := &slots[idx]
	if s.staged && e.cfg.bounds == PanicOutOfRange {
		panic(fmt.Sprintf("array: %s %d staged twice in cycle %d", what, idx, e.cycle))
	}
	s.v, s.full, s.staged = v, true, true
	return true
}

// take returns the slot's value, or the zero value if it is empty.
// Unless keep is set the slot is emptied.
func take[T any](s *slot[T], keep bool) T {
	v := s.v
	if !s.full {
		var zero T
		v = zero
	}
	s.staged = false
	if !keep {
		*s = slot[T]{}
	}
	return v
}

// Step advances the array by one clock cycle and returns the accumulator
// values of the bottom row, one per column. The returned slice belongs to the
// caller.
//
// A value staged in row k before Step s is multiplied by cell (k, j) on Step
// s+1+j. A value staged in column j before Step s is multiplied by cell (k, j)
// on Step s+1+k. A bias staged in column j before Step s enters row 0 on Step
// s, so it reaches the bottom row N-1 Steps later.
func (e *Engine[In, Acc]) Step() []Acc {
	n := e.n

	// All cells read the accumulators of the previous cycle.
	for i := range n {
		copy(e.prev[i], e.acc[i])
	}

	for j := range n {
		bias := take(&e.stageC[j], e.cfg.stickyBias)
		for i := range n {
			c := bias
			if i > 0 {
				c = e.prev[i-1][j]
			}
			e.acc[i][j] = e.unit.MAC(e.aRegs[i][j], e.bRegs[i][j], c)
		}
	}

	for i := range n {
		row := e.aRegs[i]
		copy(row[1:], row[:n-1])
		row[0] = take(&e.stageA[i], false)
	}

	for j := range n {
		for i := n - 1; i > 0; i-- {
			e.bRegs[i][j] = e.bRegs[i-1][j]
		}
		e.bRegs[0][j] = take(&e.stageB[j], false)
	}

	e.cycle++
	out := make([]Acc, n)
	copy(out, e.acc[n-1])
	return out
}
