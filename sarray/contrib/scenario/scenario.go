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

// Package scenario drives an array engine the way a testbench does: it
// generates operand matrices, turns them into per-cycle staging schedules,
// records the bottom-row output of every cycle, and checks it against
// independent oracles.
//
// # Wavefront schedule
//
// Operands move one cell per cycle in both directions and partial sums move
// one row per cycle, so a B value travels down its column alongside the
// partial sum it multiplies into. Each wavefront r therefore carries one
// weight per column and the array computes
//
//	out[r][j] = B[r][j] * sum_k A[r][k] + C[r][j]
//
// with A[r][k] entering row k on cycle r+k, B[r][j] entering column j on
// cycle r+j and C[r][j] entering column j on cycle r+j+1. Output (r, j)
// leaves the bottom row on cycle N+r+j: the last column of a wavefront is
// valid 2N-1 cycles after the cycle that loads its first operand.
package scenario

import (
	"math/rand/v2"

	"github.com/samber/lo"

	"github.com/ajroetker/go-systolic/sarray"
)

// Matrices holds the inputs of a scenario. Row r of each matrix is the data
// of wavefront r: A[r] feeds the rows of the array, B[r] the columns and C[r]
// the biases.
type Matrices[In sarray.Operands, Acc sarray.Accumulators] struct {
	A, B [][]In
	C    [][]Acc
}

// N returns the array dimension the matrices are shaped for.
func (m Matrices[In, Acc]) N() int {
	if len(m.A) == 0 {
		return 0
	}
	return len(m.A[0])
}

// Rows returns the number of wavefronts.
func (m Matrices[In, Acc]) Rows() int {
	return len(m.A)
}

// RandomInt8 draws A, B and C uniformly from [-128, 127].
func RandomInt8(rng *rand.Rand, n int) Matrices[int8, int64] {
	i8 := func(int) int8 { return int8(rng.IntN(256) - 128) }
	i64 := func(int) int64 { return int64(rng.IntN(256) - 128) }
	return Matrices[int8, int64]{
		A: square(n, i8),
		B: square(n, i8),
		C: square(n, i64),
	}
}

// RandomBFloat16 draws A, B and C uniformly from [-10, 10), truncated to
// BFloat16 the way the hardware encoder does. C is returned widened to
// float32 but carries only BFloat16 precision, matching the 16-bit bias port.
func RandomBFloat16(rng *rand.Rand, n int) Matrices[sarray.BFloat16, float32] {
	bf := func(int) sarray.BFloat16 { return sarray.TruncateBFloat16(float32(rng.Float64()*20 - 10)) }
	bias := func(i int) float32 { return bf(i).Float32() }
	return Matrices[sarray.BFloat16, float32]{
		A: square(n, bf),
		B: square(n, bf),
		C: square(n, bias),
	}
}

func square[T any](n int, gen func(int) T) [][]T {
	return lo.Times(n, func(int) []T {
		return lo.Times(n, gen)
	})
}
