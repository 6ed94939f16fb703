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

// Package lanes converts between the array's per-column results and the
// single wide bit-vector a hardware simulation exposes them as.
//
// The hardware packs N result lanes of LaneBits bits each, least significant
// lane first: lane 0 occupies bits [0, 32), lane 1 bits [32, 64), and so on.
// Bit streams are little-endian byte slices, so byte 0 holds bits [0, 8).
//
// Example:
//
//	vec, _ := lanes.ParseHex("0x00000004_00000003_00000002_00000001", 4)
//	got := lanes.Int32Lanes(vec) // [1 2 3 4]
package lanes

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ajroetker/go-systolic/sarray"
)

// LaneBits is the width of one result lane on the hardware output port.
const LaneBits = 32

// ErrWidth is returned when a value does not fit the requested lane layout.
var ErrWidth = errors.New("lanes: bit-vector width mismatch")

// PackedSize returns the number of bytes needed to hold n values of bitWidth
// bits each.
func PackedSize(n, bitWidth int) int {
	if bitWidth <= 0 || n <= 0 {
		return 0
	}
	return (n*bitWidth + 7) / 8
}

// Pack writes each value of src into dst using exactly bitWidth bits, lowest
// index in the lowest bits. Bits of a value above bitWidth are dropped.
// dst must hold PackedSize(len(src), bitWidth) bytes and is OR-ed into, so it
// should start zeroed. Pack returns the number of bytes written.
func Pack(src []uint32, bitWidth int, dst []byte) int {
	if len(src) == 0 || bitWidth <= 0 {
		return 0
	}
	bitWidth = min(bitWidth, 32)
	mask := uint32(uint64(1)<<bitWidth - 1)

	bitPos, bytePos := 0, 0
	for _, v := range src {
		v &= mask
		for remaining := bitWidth; remaining > 0; {
			n := min(remaining, 8-bitPos)
			dst[bytePos] |= byte((v & (1<<n - 1)) << bitPos)
			v >>= n
			remaining -= n
			bitPos += n
			if bitPos == 8 {
				bitPos = 0
				bytePos++
			}
		}
	}
	if bitPos > 0 {
		return bytePos + 1
	}
	return bytePos
}

// Unpack reads len(dst) values of bitWidth bits each from src. It stops early
// if src runs out and returns the number of values read.
func Unpack(src []byte, bitWidth int, dst []uint32) int {
	if bitWidth <= 0 {
		return 0
	}
	bitWidth = min(bitWidth, 32)
	totalBits := len(src) * 8

	bitPos, bytePos := 0, 0
	for i := range dst {
		if bytePos*8+bitPos+bitWidth > totalBits {
			return i
		}
		var v uint32
		shift := 0
		for remaining := bitWidth; remaining > 0; {
			n := min(remaining, 8-bitPos)
			bits := (src[bytePos] >> bitPos) & byte(1<<n-1)
			v |= uint32(bits) << shift
			shift += n
			remaining -= n
			bitPos += n
			if bitPos == 8 {
				bitPos = 0
				bytePos++
			}
		}
		dst[i] = v
	}
	return len(dst)
}

// ParseHex parses a simulator bit-vector value printed in hexadecimal into
// n 32-bit lanes. A "0x" prefix and "_" separators are accepted. The value may
// have fewer digits than the full vector (leading zeros omitted) but not more.
func ParseHex(s string, n int) ([]uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return nil, fmt.Errorf("lanes: empty hex value")
	}
	digits := n * LaneBits / 4
	if len(s) > digits {
		s = strings.TrimLeft(s, "0")
		if len(s) > digits {
			return nil, fmt.Errorf("%w: %d hex digits for %d lanes", ErrWidth, len(s), n)
		}
	}

	// Walk from the least significant digit so lane 0 fills first.
	packed := make([]byte, PackedSize(n, LaneBits))
	for i := 0; i < len(s); i++ {
		d, ok := hexDigit(s[len(s)-1-i])
		if !ok {
			return nil, fmt.Errorf("lanes: invalid hex digit %q in %q", s[len(s)-1-i], s)
		}
		packed[i/2] |= d << (4 * (i % 2))
	}
	out := make([]uint32, n)
	Unpack(packed, LaneBits, out)
	return out, nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// FormatHex renders lanes as one zero-padded hexadecimal bit-vector, most
// significant lane first, the way a waveform viewer prints it.
func FormatHex(lanes []uint32) string {
	var sb strings.Builder
	sb.WriteString("0x")
	for i := len(lanes) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%08x", lanes[i])
	}
	return sb.String()
}

// Int32Lanes sign-extends each lane as a two's complement int32.
func Int32Lanes(lanes []uint32) []int64 {
	out := make([]int64, len(lanes))
	for i, v := range lanes {
		out[i] = int64(int32(v))
	}
	return out
}

// BFloat16Lanes decodes the low 16 bits of each lane as a BFloat16.
func BFloat16Lanes(lanes []uint32) []float32 {
	out := make([]float32, len(lanes))
	for i, v := range lanes {
		out[i] = sarray.BFloat16(uint16(v)).Float32()
	}
	return out
}

// FromInt64 encodes model results as the hardware would: two's complement,
// truncated to 32 bits. It reports ErrWidth if a value does not fit an int32.
func FromInt64(vals []int64) ([]uint32, error) {
	out := make([]uint32, len(vals))
	for i, v := range vals {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("%w: lane %d value %d exceeds int32", ErrWidth, i, v)
		}
		out[i] = uint32(int32(v))
	}
	return out, nil
}

// FromFloat32 encodes model results as BFloat16 lanes, truncating like the
// hardware encoder.
func FromFloat32(vals []float32) []uint32 {
	out := make([]uint32, len(vals))
	for i, v := range vals {
		out[i] = uint32(sarray.TruncateBFloat16(v))
	}
	return out
}
