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

// Package mac is the reference arithmetic of one systolic array cell:
// a×b+c evaluated in the cell's numeric format.
//
// Units are stateless values. An engine holds one by value and calls it once
// per cell per cycle, so every implementation must be pure and deterministic.
package mac

import (
	"fmt"
	"math"

	"github.com/ajroetker/go-systolic/sarray"
)

// Unit computes one multiply-accumulate step. In is the operand type carried
// by the A and B registers; Acc is the running-sum type.
type Unit[In, Acc any] interface {
	MAC(a, b In, c Acc) Acc
	Format() sarray.Format
}

// MaxInt8Product is the largest magnitude a single int8×int8 product can
// reach: (-128)×(-128).
const MaxInt8Product = 1 << 14

// SafeInt8Depth is the number of full-magnitude products an int64 running
// sum can absorb from zero without any possibility of overflow.
const SafeInt8Depth = math.MaxInt64 / MaxInt8Product

// Int8 is the integer-mode unit: signed 8-bit operands, int64 accumulator.
//
// The result is exact. An accumulate-in value close enough to the int64
// limits to overflow panics instead of wrapping.
type Int8 struct{}

var _ Unit[int8, int64] = Int8{}

// MAC returns a*b + c.
func (Int8) MAC(a, b int8, c int64) int64 {
	return addInt64(int64(a)*int64(b), c)
}

// Format returns sarray.FormatInt8.
func (Int8) Format() sarray.Format {
	return sarray.FormatInt8
}

func addInt64(x, y int64) int64 {
	s := x + y
	// Overflow iff both operands share a sign and the sum does not.
	if (x >= 0) == (y >= 0) && (s >= 0) != (x >= 0) {
		panic(fmt.Sprintf("mac: int64 accumulator overflow: %d + %d", x, y))
	}
	return s
}

// BFloat16 is the reduced-precision unit: BFloat16 operands widened to
// float32, float32 accumulator.
//
// The product of two BFloat16 values has at most 16 significant bits and is
// therefore exact in float32; the only rounding is the final add. The result
// is not re-truncated to BFloat16: comparisons against hardware are done with
// a relative tolerance that absorbs the hardware's own truncation.
type BFloat16 struct{}

var _ Unit[sarray.BFloat16, float32] = BFloat16{}

// MAC returns a*b + c.
func (BFloat16) MAC(a, b sarray.BFloat16, c float32) float32 {
	// The explicit conversion pins the product to float32 so the compiler
	// cannot fuse it with the add.
	p := float32(a.Float32() * b.Float32())
	return p + c
}

// Format returns sarray.FormatBFloat16.
func (BFloat16) Format() sarray.Format {
	return sarray.FormatBFloat16
}

// Reference evaluates a*b+c in the domain selected by the format tag, with
// all values carried as float64. It is the tag-dispatched form of the units
// above, for drivers that only know the format at run time.
//
// For FormatInt8, a and b must be integers in [-128, 127] and c an integer.
// For FormatBFloat16, a and b are truncated to BFloat16 and c to float32
// before the unit runs. Violations and unknown formats panic.
func Reference(f sarray.Format, a, b, c float64) float64 {
	switch f {
	case sarray.FormatInt8:
		return float64(Int8{}.MAC(toInt8(a), toInt8(b), toInt64(c)))
	case sarray.FormatBFloat16:
		ab := sarray.TruncateBFloat16(float32(a))
		bb := sarray.TruncateBFloat16(float32(b))
		return float64(BFloat16{}.MAC(ab, bb, float32(c)))
	default:
		panic(fmt.Sprintf("mac: invalid format %d", int(f)))
	}
}

func toInt8(v float64) int8 {
	if v != math.Trunc(v) || v < math.MinInt8 || v > math.MaxInt8 {
		panic(fmt.Sprintf("mac: %v is not an int8 operand", v))
	}
	return int8(v)
}

func toInt64(v float64) int64 {
	if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		panic(fmt.Sprintf("mac: %v is not an int64 accumulator value", v))
	}
	return int64(v)
}
