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
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/ajroetker/go-systolic/sarray"
	"github.com/ajroetker/go-systolic/sarray/mac"
)

// DefaultRelTol is the relative tolerance CompareRelative uses when none is
// given.
const DefaultRelTol = 1e-3

// minCompared is the magnitude below which CompareRelative skips a lane.
const minCompared = 1e-6

// ErrMismatch is matched by every *MismatchError.
var ErrMismatch = errors.New("scenario: result mismatch")

// MismatchError reports the first lane that differs on a cycle.
type MismatchError struct {
	Cycle int
	Lane  int
	Want  any
	Got   any
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("cycle %d lane %d: model %v, observed %v", e.Cycle, e.Lane, e.Want, e.Got)
}

// Is makes errors.Is(err, ErrMismatch) true.
func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

// MatMulInt8 is the plain triple-loop product A×B + C in int64.
func MatMulInt8(a, b [][]int8, c [][]int64) [][]int64 {
	n := len(a)
	out := make([][]int64, n)
	for i := range n {
		out[i] = make([]int64, len(b[0]))
		for j := range out[i] {
			sum := c[i][j]
			for k := range b {
				sum += int64(a[i][k]) * int64(b[k][j])
			}
			out[i][j] = sum
		}
	}
	return out
}

// MatMulBFloat16 is A×B + C evaluated in float64.
func MatMulBFloat16(a, b [][]sarray.BFloat16, c [][]float32) [][]float64 {
	n := len(a)
	out := make([][]float64, n)
	for i := range n {
		out[i] = make([]float64, len(b[0]))
		for j := range out[i] {
			sum := float64(c[i][j])
			for k := range b {
				sum += a[i][k].Float64() * b[k][j].Float64()
			}
			out[i][j] = sum
		}
	}
	return out
}

// WavefrontInt8 computes the wavefront results B[r][j]*sum(A[r]) + C[r][j]
// directly in int64, without the MAC unit.
func WavefrontInt8(m Matrices[int8, int64]) [][]int64 {
	return lo.Map(m.A, func(row []int8, r int) []int64 {
		sum := lo.SumBy(row, func(v int8) int64 { return int64(v) })
		return lo.Map(m.B[r], func(w int8, j int) int64 {
			return int64(w)*sum + m.C[r][j]
		})
	})
}

// Expected computes the wavefront results with unit in the order the array
// accumulates them: the bias first, then row 0 down to row N-1. The result is
// bit-identical to what a correctly timed engine produces.
func Expected[In sarray.Operands, Acc sarray.Accumulators](m Matrices[In, Acc], unit mac.Unit[In, Acc]) [][]Acc {
	return lo.Map(m.A, func(row []In, r int) []Acc {
		return lo.Map(m.B[r], func(w In, j int) Acc {
			acc := m.C[r][j]
			for _, a := range row {
				acc = unit.MAC(a, w, acc)
			}
			return acc
		})
	})
}

// CompareExact returns a *MismatchError for the first lane where got differs
// from want.
func CompareExact[T comparable](cycle int, want, got []T) error {
	if len(want) != len(got) {
		return fmt.Errorf("%w: cycle %d has %d lanes, want %d", ErrMismatch, cycle, len(got), len(want))
	}
	for i := range want {
		if want[i] != got[i] {
			return &MismatchError{Cycle: cycle, Lane: i, Want: want[i], Got: got[i]}
		}
	}
	return nil
}

// CompareRelative compares floating lanes with a relative tolerance. Lanes
// whose model value is within 1e-6 of zero are not compared. tol <= 0 means
// DefaultRelTol.
func CompareRelative(cycle int, want, got []float32, tol float64) error {
	if tol <= 0 {
		tol = DefaultRelTol
	}
	if len(want) != len(got) {
		return fmt.Errorf("%w: cycle %d has %d lanes, want %d", ErrMismatch, cycle, len(got), len(want))
	}
	for i := range want {
		w, g := float64(want[i]), float64(got[i])
		if math.Abs(w) <= minCompared {
			continue
		}
		if math.IsNaN(g) || math.Abs(w-g)/math.Abs(w) >= tol {
			return &MismatchError{Cycle: cycle, Lane: i, Want: want[i], Got: got[i]}
		}
	}
	return nil
}

// AnyNonzero reports whether any lane is non-zero. Early cycles of a run
// output all zeros while the pipeline fills; testbenches skip those.
func AnyNonzero[T comparable](row []T) bool {
	var zero T
	return lo.ContainsBy(row, func(v T) bool { return v != zero })
}
