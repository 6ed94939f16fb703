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

package lanes

import (
	"errors"
	"slices"
	"testing"
)

func TestPackedSize(t *testing.T) {
	tests := []struct {
		n, width, want int
	}{
		{0, 32, 0},
		{4, 0, 0},
		{4, 32, 16},
		{4, 4, 2},
		{3, 5, 2},
		{1, 1, 1},
	}
	for _, tt := range tests {
		if got := PackedSize(tt.n, tt.width); got != tt.want {
			t.Errorf("PackedSize(%d, %d) = %d, want %d", tt.n, tt.width, got, tt.want)
		}
	}
}

func TestPackNibbles(t *testing.T) {
	src := []uint32{5, 12, 3, 15}
	dst := make([]byte, PackedSize(len(src), 4))
	if n := Pack(src, 4, dst); n != 2 {
		t.Fatalf("Pack wrote %d bytes, want 2", n)
	}
	if want := []byte{0xC5, 0xF3}; !slices.Equal(dst, want) {
		t.Fatalf("Pack = %x, want %x", dst, want)
	}

	got := make([]uint32, len(src))
	if n := Unpack(dst, 4, got); n != len(src) {
		t.Fatalf("Unpack read %d values, want %d", n, len(src))
	}
	if !slices.Equal(got, src) {
		t.Errorf("Unpack = %v, want %v", got, src)
	}
}

func TestPackLaneOrder(t *testing.T) {
	src := []uint32{0x11223344, 0xAABBCCDD}
	dst := make([]byte, PackedSize(2, LaneBits))
	Pack(src, LaneBits, dst)
	want := []byte{0x44, 0x33, 0x22, 0x11, 0xDD, 0xCC, 0xBB, 0xAA}
	if !slices.Equal(dst, want) {
		t.Errorf("Pack = %x, want %x (lane 0 in the low bytes)", dst, want)
	}
}

func TestPackUnpackWidths(t *testing.T) {
	src := []uint32{0, 1, 0x7F, 0xFFFFFFFF, 0x80000000, 12345, 0xDEADBEEF}
	for width := 1; width <= 32; width++ {
		mask := uint32(uint64(1)<<width - 1)
		dst := make([]byte, PackedSize(len(src), width))
		Pack(src, width, dst)
		got := make([]uint32, len(src))
		Unpack(dst, width, got)
		for i := range src {
			if got[i] != src[i]&mask {
				t.Fatalf("width %d: lane %d = %#x, want %#x", width, i, got[i], src[i]&mask)
			}
		}
	}
}

func TestUnpackShortInput(t *testing.T) {
	got := make([]uint32, 4)
	if n := Unpack([]byte{1, 0, 0, 0, 2, 0}, LaneBits, got); n != 1 {
		t.Errorf("Unpack read %d lanes from 6 bytes, want 1", n)
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want []uint32
	}{
		{"Full", "0x00000004000000030000000200000001", 4, []uint32{1, 2, 3, 4}},
		{"Underscores", "0x00000004_00000003_00000002_00000001", 4, []uint32{1, 2, 3, 4}},
		{"ShortValue", "1f", 4, []uint32{0x1f, 0, 0, 0}},
		{"UpperCase", "0XFFFFFFFF00000000", 2, []uint32{0, 0xFFFFFFFF}},
		{"ExtraLeadingZeros", "0000000000000005", 1, []uint32{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.in, tt.n)
			if err != nil {
				t.Fatalf("ParseHex(%q) error: %v", tt.in, err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseHexErrors(t *testing.T) {
	if _, err := ParseHex("", 4); err == nil {
		t.Error("ParseHex(\"\") succeeded")
	}
	if _, err := ParseHex("0x12g4", 4); err == nil {
		t.Error("ParseHex with invalid digit succeeded")
	}
	if _, err := ParseHex("0x100000000", 1); !errors.Is(err, ErrWidth) {
		t.Errorf("ParseHex too wide: err = %v, want ErrWidth", err)
	}
}

func TestFormatHex(t *testing.T) {
	lanes := []uint32{1, 2, 0xFFFFFFFF}
	want := "0xffffffff0000000200000001"
	if got := FormatHex(lanes); got != want {
		t.Fatalf("FormatHex = %s, want %s", got, want)
	}
	back, err := ParseHex(want, 3)
	if err != nil || !slices.Equal(back, lanes) {
		t.Errorf("ParseHex(FormatHex) = %v, %v; want %v", back, err, lanes)
	}
}

func TestInt32Lanes(t *testing.T) {
	got := Int32Lanes([]uint32{0xFFFFFFFF, 0x80000000, 7})
	want := []int64{-1, -2147483648, 7}
	if !slices.Equal(got, want) {
		t.Errorf("Int32Lanes = %v, want %v", got, want)
	}

	enc, err := FromInt64(want)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(Int32Lanes(enc), want) {
		t.Errorf("Int32Lanes(FromInt64(%v)) = %v", want, Int32Lanes(enc))
	}
	if _, err := FromInt64([]int64{1 << 31}); !errors.Is(err, ErrWidth) {
		t.Errorf("FromInt64(2^31) err = %v, want ErrWidth", err)
	}
}

func TestBFloat16Lanes(t *testing.T) {
	// Upper lane bits are ignored; only the low 16 carry the value.
	got := BFloat16Lanes([]uint32{0x3F80, 0xDEAD4000, 0xBF80})
	want := []float32{1, 2, -1}
	if !slices.Equal(got, want) {
		t.Errorf("BFloat16Lanes = %v, want %v", got, want)
	}

	// 1.01 truncates to 1.0078125.
	enc := FromFloat32([]float32{1.01, -2})
	if want := []uint32{0x3F81, 0xC000}; !slices.Equal(enc, want) {
		t.Errorf("FromFloat32 = %#x, want %#x", enc, want)
	}
}
