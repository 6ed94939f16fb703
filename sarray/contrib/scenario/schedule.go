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

package scenario

import (
	"fmt"

	"github.com/ajroetker/go-systolic/sarray"
	"github.com/ajroetker/go-systolic/sarray/array"
	"github.com/ajroetker/go-systolic/sarray/mac"
)

// Put stages one value on one edge index.
type Put[T any] struct {
	Index int
	Value T
}

// Beat is everything staged before one Step.
type Beat[In, Acc any] struct {
	A []Put[In]
	B []Put[In]
	C []Put[Acc]
}

// Schedule is a cycle-by-cycle staging plan: one Beat per Step.
type Schedule[In, Acc any] struct {
	Name  string
	N     int
	Beats []Beat[In, Acc]

	// Rows is the number of wavefronts whose results Deskew can extract.
	// Schedules that are not wavefronts leave it zero.
	Rows int

	// StickyBias reports whether the schedule expects C to stay resident.
	StickyBias bool
}

// Wavefront stages one wavefront per row of m, one row starting per cycle.
// See the package documentation for the timing.
func Wavefront[In sarray.Operands, Acc sarray.Accumulators](m Matrices[In, Acc]) Schedule[In, Acc] {
	n, rows := m.N(), m.Rows()
	s := Schedule[In, Acc]{
		Name:  "wavefront",
		N:     n,
		Rows:  rows,
		Beats: make([]Beat[In, Acc], 2*n+rows-1),
	}
	for c := range s.Beats {
		bt := &s.Beats[c]
		for r := range rows {
			if k := c - r; k >= 0 && k < n {
				bt.A = append(bt.A, Put[In]{k, m.A[r][k]})
				bt.B = append(bt.B, Put[In]{k, m.B[r][k]})
			}
			if j := c - r - 1; j >= 0 && j < n {
				bt.C = append(bt.C, Put[Acc]{j, m.C[r][j]})
			}
		}
	}
	return s
}

// Historical reproduces the load sequence of the older HDL testbench: every
// staging call is issued before the first Step, walking
// (i, j) over the N×N grid and staging A[j][i], B[j][i] and C[j][i] when
// i == j, then stepping 2N-1 times with a resident bias. Only the diagonal
// survives, so on Step N each column j outputs A[j][j]*B[j][j] + C[j][j] and
// every other Step from N-1 on outputs C[j][j].
func Historical[In sarray.Operands, Acc sarray.Accumulators](m Matrices[In, Acc]) Schedule[In, Acc] {
	n := m.N()
	s := Schedule[In, Acc]{
		Name:       "historical",
		N:          n,
		Beats:      make([]Beat[In, Acc], 2*n-1),
		StickyBias: true,
	}
	load := &s.Beats[0]
	for i := range n {
		for j := range n {
			if i != j {
				continue
			}
			load.A = append(load.A, Put[In]{j, m.A[j][i]})
			load.B = append(load.B, Put[In]{j, m.B[j][i]})
			load.C = append(load.C, Put[Acc]{j, m.C[j][i]})
		}
	}
	return s
}

// NewEngine builds an engine sized and configured for s.
func (s Schedule[In, Acc]) NewEngine(unit mac.Unit[In, Acc], opts ...array.Option) *array.Engine[In, Acc] {
	if s.StickyBias {
		opts = append(opts, array.WithStickyBias())
	}
	return array.New(s.N, unit, opts...)
}

// Trace is the bottom-row output of every Step, in order.
type Trace[Acc any] [][]Acc

// Run applies each Beat of s to e and steps once per Beat.
func Run[In, Acc any](e *array.Engine[In, Acc], s Schedule[In, Acc]) Trace[Acc] {
	tr := make(Trace[Acc], 0, len(s.Beats))
	for _, bt := range s.Beats {
		for _, p := range bt.A {
			e.PutARow(p.Index, p.Value)
		}
		for _, p := range bt.B {
			e.PutBCol(p.Index, p.Value)
		}
		for _, p := range bt.C {
			e.PutCCol(p.Index, p.Value)
		}
		tr = append(tr, e.Step())
	}
	return tr
}

// ExitCycle returns the Step on which output (r, j) of a wavefront schedule
// leaves an n×n array.
func ExitCycle(n, r, j int) int {
	return n + r + j
}

// Deskew extracts the rows×n wavefront results from a trace, taking output
// (r, j) from the Step it exits on.
func Deskew[Acc any](tr Trace[Acc], n, rows int) ([][]Acc, error) {
	if need := ExitCycle(n, rows-1, n-1) + 1; len(tr) < need {
		return nil, fmt.Errorf("scenario: trace has %d cycles, %d wavefronts on N=%d need %d",
			len(tr), rows, n, need)
	}
	out := make([][]Acc, rows)
	for r := range rows {
		out[r] = make([]Acc, n)
		for j := range n {
			out[r][j] = tr[ExitCycle(n, r, j)][j]
		}
	}
	return out, nil
}
