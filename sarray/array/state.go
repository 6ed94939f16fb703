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

// State is a deep copy of an engine's internal pipeline, for tests and
// debugging traces. Modifying it does not affect the engine.
type State[In, Acc any] struct {
	Cycle int

	// ARegs[i][j] is the A operand cell (i, j) multiplies on the next Step.
	ARegs [][]In

	// BRegs[i][j] is the B operand cell (i, j) multiplies on the next Step.
	BRegs [][]In

	// Acc[i][j] is the result cell (i, j) computed on the last Step.
	Acc [][]Acc

	// Pending A, B and C inputs staged for the next Step; nil entries are
	// empty slots.
	StagedA []*In
	StagedB []*In
	StagedC []*Acc
}

// Snapshot copies the engine's registers, accumulators and staging slots.
func (e *Engine[In, Acc]) Snapshot() State[In, Acc] {
	return State[In, Acc]{
		Cycle:   e.cycle,
		ARegs:   cloneGrid(e.aRegs),
		BRegs:   cloneGrid(e.bRegs),
		Acc:     cloneGrid(e.acc),
		StagedA: pending(e.stageA),
		StagedB: pending(e.stageB),
		StagedC: pending(e.stageC),
	}
}

func cloneGrid[T any](g [][]T) [][]T {
	out := grid[T](len(g))
	for i := range g {
		copy(out[i], g[i])
	}
	return out
}

func pending[T any](slots []slot[T]) []*T {
	out := make([]*T, len(slots))
	for i, s := range slots {
		if s.full {
			v := s.v
			out[i] = &v
		}
	}
	return out
}
