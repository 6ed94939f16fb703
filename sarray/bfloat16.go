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

package sarray

import (
	"fmt"
	"math"
)

// BFloat16 is the reduced-precision operand format of the MAC array.
//
// Format: Sign (1 bit) | Exponent (8 bits) | Mantissa (7 bits)
//
//	S | EEEEEEEE | MMMMMMM
//
// It is the upper half of an IEEE-754 float32, so decoding is a 16-bit left
// shift. The hardware encodes by truncation (dropping the low 16 bits), which
// is what TruncateBFloat16 does. RoundBFloat16 is provided for callers that
// want the nearest representable value instead.
type BFloat16 uint16

const (
	BFloat16Zero    BFloat16 = 0x0000
	BFloat16NegZero BFloat16 = 0x8000
	BFloat16One     BFloat16 = 0x3F80
	BFloat16NegOne  BFloat16 = 0xBF80
	BFloat16Max     BFloat16 = 0x7F7F // ~3.39e38
	BFloat16Inf     BFloat16 = 0x7F80
	BFloat16NegInf  BFloat16 = 0xFF80
	BFloat16NaN     BFloat16 = 0x7FC0

	// BFloat16Epsilon is the gap between 1.0 and the next representable value.
	BFloat16Epsilon = 1.0 / 128
)

// BFloat16ToFloat32 widens b to float32. The conversion is exact.
func BFloat16ToFloat32(b BFloat16) float32 {
	return math.Float32frombits(uint32(b) << 16)
}

// TruncateBFloat16 keeps the upper 16 bits of f's encoding.
// This matches the hardware encoder: no rounding. A NaN whose payload lives
// only in the low 16 bits would truncate to infinity, so the quiet bit is set.
func TruncateBFloat16(f float32) BFloat16 {
	bits := math.Float32bits(f)
	if bits&0x7FFFFFFF > 0x7F800000 {
		return BFloat16((bits >> 16) | 0x0040)
	}
	return BFloat16(bits >> 16)
}

// RoundBFloat16 converts f to the nearest BFloat16, ties to even.
func RoundBFloat16(f float32) BFloat16 {
	bits := math.Float32bits(f)
	if bits&0x7FFFFFFF > 0x7F800000 {
		return BFloat16((bits >> 16) | 0x0040)
	}
	bits += 0x7FFF + ((bits >> 16) & 1)
	return BFloat16(bits >> 16)
}

// Float32 widens b to float32.
func (b BFloat16) Float32() float32 {
	return BFloat16ToFloat32(b)
}

// Float64 widens b to float64.
func (b BFloat16) Float64() float64 {
	return float64(BFloat16ToFloat32(b))
}

// Bits returns the raw encoding.
func (b BFloat16) Bits() uint16 {
	return uint16(b)
}

// IsNaN reports whether b is a NaN.
func (b BFloat16) IsNaN() bool {
	return b&0x7F80 == 0x7F80 && b&0x7F != 0
}

// IsInf reports whether b is positive or negative infinity.
func (b BFloat16) IsInf() bool {
	return b&0x7FFF == 0x7F80
}

// IsZero reports whether b is positive or negative zero.
func (b BFloat16) IsZero() bool {
	return b&0x7FFF == 0
}

// IsNegative reports whether the sign bit is set.
func (b BFloat16) IsNegative() bool {
	return b&0x8000 != 0
}

// String formats b as its float32 value.
func (b BFloat16) String() string {
	return fmt.Sprintf("%g", b.Float32())
}
