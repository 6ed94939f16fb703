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

package matfile

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-systolic/sarray"
)

func TestRead(t *testing.T) {
	in := "Matrix A (4x4)\n1 2 3 4\n-5 6 7 8\n\n9 10 11 12\n13 14 15 -128\n"
	m, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 4, m.N())
	assert.Equal(t, []float64{-5, 6, 7, 8}, m[1])
	assert.Equal(t, -128.0, m[3][3])
}

func TestReadFloats(t *testing.T) {
	m, err := Read(strings.NewReader("header\n1.5 -2.25\n3e2 0.001\n"))
	require.NoError(t, err)
	assert.Equal(t, Matrix{{1.5, -2.25}, {300, 0.001}}, m)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name, in string
	}{
		{"Empty", ""},
		{"HeaderOnly", "header\n"},
		{"NotANumber", "h\n1 x\n"},
		{"Ragged", "h\n1 2\n3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestWriteRead(t *testing.T) {
	m := Matrix{{1, -2}, {0.5, 127}}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "# header", m))
	assert.Equal(t, "# header\n1 -2\n0.5 127\n", buf.String())

	back, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, m, back)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	a := [][]int8{{1, 2}, {3, 4}}
	b := [][]int8{{-1, 0}, {0, -128}}
	c := [][]int64{{100, 0}, {0, -100}}
	require.NoError(t, WriteDir(dir, FromInt8(a, b, c)))

	s, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, s.N())

	ga, gb, gc, err := s.Int8()
	require.NoError(t, err)
	assert.Equal(t, a, ga)
	assert.Equal(t, b, gb)
	assert.Equal(t, c, gc)
}

func TestLoadDirErrors(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, AName), []byte("h\n1\n"), 0o644))
		_, err := LoadDir(context.Background(), dir)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteDir(dir, Set{
			A: Matrix{{1, 2}, {3, 4}},
			B: Matrix{{1}},
			C: Matrix{{1, 2}, {3, 4}},
		}))
		_, err := LoadDir(context.Background(), dir)
		assert.ErrorIs(t, err, ErrDimension)
	})

	t.Run("Cancelled", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteDir(dir, Set{A: Matrix{{1}}, B: Matrix{{1}}, C: Matrix{{1}}}))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := LoadDir(ctx, dir)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestInt8Range(t *testing.T) {
	tests := []struct {
		name string
		set  Set
	}{
		{"AboveInt8", Set{A: Matrix{{128}}, B: Matrix{{0}}, C: Matrix{{0}}}},
		{"BelowInt8", Set{A: Matrix{{0}}, B: Matrix{{-129}}, C: Matrix{{0}}}},
		{"Fraction", Set{A: Matrix{{0.5}}, B: Matrix{{0}}, C: Matrix{{0}}}},
		{"FractionalBias", Set{A: Matrix{{0}}, B: Matrix{{0}}, C: Matrix{{1.25}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := tt.set.Int8()
			assert.ErrorIs(t, err, ErrRange)
		})
	}
}

func TestBFloat16Conversion(t *testing.T) {
	s := Set{
		A: Matrix{{1.01, -2}},
		B: Matrix{{0.5, 3}},
		C: Matrix{{1.01, 0}},
	}
	a, b, c, err := s.BFloat16()
	require.NoError(t, err)
	assert.Equal(t, sarray.BFloat16(0x3F81), a[0][0])
	assert.Equal(t, float32(-2), a[0][1].Float32())
	assert.Equal(t, float32(0.5), b[0][0].Float32())
	// The bias goes through the same 16-bit port as the operands.
	assert.Equal(t, float32(1.0078125), c[0][0])
	assert.Zero(t, math.Float32bits(c[0][0])&0xFFFF)

	back := FromBFloat16(a, b, c)
	assert.Equal(t, 1.0078125, back.A[0][0])
}

func TestBFloat16BiasPrecision(t *testing.T) {
	s := Set{
		A: Matrix{{-5.5625, 0}, {0, 0}},
		B: Matrix{{1, 1}, {1, 1}},
		C: Matrix{{5.576232, -3.14159}, {1e-3, 9.99}},
	}
	_, _, c, err := s.BFloat16()
	require.NoError(t, err)
	for i, row := range c {
		for j, v := range row {
			assert.Zero(t, math.Float32bits(v)&0xFFFF, "C[%d][%d] = %v", i, j, v)
		}
	}
	// The bias reaches the hardware at BFloat16 precision.
	assert.Equal(t, float32(5.5625), c[0][0])
}
