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

// Package matfile reads and writes the A, B and C matrix text files of a
// test case.
//
// Each file starts with one header line, which is ignored, followed by one
// matrix row per line with whitespace-separated numbers. Integer-mode cases
// use integers; BFloat16 cases use decimal floats.
package matfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-systolic/sarray"
)

// File names of a test case directory.
const (
	AName = "A_matrix.txt"
	BName = "B_matrix.txt"
	CName = "C_matrix.txt"
)

var (
	// ErrMalformed reports a file that does not follow the matrix format.
	ErrMalformed = errors.New("matfile: malformed matrix")

	// ErrDimension reports matrices that are not square or disagree in size.
	ErrDimension = errors.New("matfile: dimension mismatch")

	// ErrRange reports a value that cannot be represented in the target format.
	ErrRange = errors.New("matfile: value out of range")
)

// Matrix is a row-major matrix of parsed values.
type Matrix [][]float64

// N returns the dimension of a square matrix, or -1 if m is not square.
func (m Matrix) N() int {
	for _, row := range m {
		if len(row) != len(m) {
			return -1
		}
	}
	return len(m)
}

// Set is the three matrices of one test case.
type Set struct {
	A, B, C Matrix
}

// N returns the common dimension of the set.
func (s Set) N() int {
	return s.A.N()
}

// Validate checks that all three matrices are square with the same size.
func (s Set) Validate() error {
	n := s.A.N()
	if n <= 0 {
		return fmt.Errorf("%w: A is not a non-empty square matrix", ErrDimension)
	}
	if s.B.N() != n || s.C.N() != n {
		return fmt.Errorf("%w: A is %dx%d, B is %s, C is %s",
			ErrDimension, n, n, shape(s.B), shape(s.C))
	}
	return nil
}

func shape(m Matrix) string {
	if len(m) == 0 {
		return "empty"
	}
	return fmt.Sprintf("%dx%d", len(m), len(m[0]))
}

// Read parses one matrix file: the first line is skipped, blank lines are
// ignored, and all rows must have the same number of columns.
func Read(r io.Reader) (Matrix, error) {
	sc := bufio.NewScanner(r)
	var m Matrix
	line := 0
	for sc.Scan() {
		line++
		if line == 1 {
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %q is not a number", ErrMalformed, line, f)
			}
			row[i] = v
		}
		if len(m) > 0 && len(row) != len(m[0]) {
			return nil, fmt.Errorf("%w: line %d has %d columns, expected %d",
				ErrMalformed, line, len(row), len(m[0]))
		}
		m = append(m, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformed)
	}
	return m, nil
}

// ReadFile parses the matrix file at path.
func ReadFile(path string) (Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadDir reads A_matrix.txt, B_matrix.txt and C_matrix.txt from dir
// concurrently and validates their shapes.
func LoadDir(ctx context.Context, dir string) (Set, error) {
	var s Set
	g, ctx := errgroup.WithContext(ctx)
	for _, f := range []struct {
		name string
		dst  *Matrix
	}{
		{AName, &s.A},
		{BName, &s.B},
		{CName, &s.C},
	} {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := ReadFile(filepath.Join(dir, f.name))
			if err != nil {
				return err
			}
			*f.dst = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Set{}, err
	}
	if err := s.Validate(); err != nil {
		return Set{}, err
	}
	return s, nil
}

// Write emits header followed by m, one row per line. Integral values are
// written without a fractional part.
func Write(w io.Writer, header string, m Matrix) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, header)
	for _, row := range m {
		for j, v := range row {
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteDir writes the set into dir as A_matrix.txt, B_matrix.txt and
// C_matrix.txt, creating dir if needed.
func WriteDir(dir string, s Set) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, f := range []struct {
		name, header string
		m            Matrix
	}{
		{AName, "# Matrix A", s.A},
		{BName, "# Matrix B", s.B},
		{CName, "# Matrix C", s.C},
	} {
		if err := writeFile(filepath.Join(dir, f.name), f.header, f.m); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path, header string, m Matrix) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, header, m)
}

// Int8 converts the set for integer mode. A and B must hold integers in
// [-128, 127]; C must hold integers representable as int64.
func (s Set) Int8() (a, b [][]int8, c [][]int64, err error) {
	if a, err = convert(s.A, "A", toInt8); err != nil {
		return nil, nil, nil, err
	}
	if b, err = convert(s.B, "B", toInt8); err != nil {
		return nil, nil, nil, err
	}
	if c, err = convert(s.C, "C", toInt64); err != nil {
		return nil, nil, nil, err
	}
	return a, b, c, nil
}

// BFloat16 converts the set for reduced-precision mode. All three matrices
// are truncated to BFloat16; C is returned widened to float32 for the
// accumulator.
func (s Set) BFloat16() (a, b [][]sarray.BFloat16, c [][]float32, err error) {
	toBF16 := func(v float64) (sarray.BFloat16, bool) {
		return sarray.TruncateBFloat16(float32(v)), true
	}
	toF32 := func(v float64) (float32, bool) {
		return sarray.TruncateBFloat16(float32(v)).Float32(), true
	}
	if a, err = convert(s.A, "A", toBF16); err != nil {
		return nil, nil, nil, err
	}
	if b, err = convert(s.B, "B", toBF16); err != nil {
		return nil, nil, nil, err
	}
	if c, err = convert(s.C, "C", toF32); err != nil {
		return nil, nil, nil, err
	}
	return a, b, c, nil
}

func convert[T any](m Matrix, name string, fn func(float64) (T, bool)) ([][]T, error) {
	out := make([][]T, len(m))
	for i, row := range m {
		out[i] = make([]T, len(row))
		for j, v := range row {
			t, ok := fn(v)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d][%d] = %v", ErrRange, name, i, j, v)
			}
			out[i][j] = t
		}
	}
	return out, nil
}

func toInt8(v float64) (int8, bool) {
	if v != math.Trunc(v) || v < math.MinInt8 || v > math.MaxInt8 {
		return 0, false
	}
	return int8(v), true
}

func toInt64(v float64) (int64, bool) {
	if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}

// FromInt8 builds a Set from integer-mode matrices.
func FromInt8(a, b [][]int8, c [][]int64) Set {
	return Set{A: widen(a), B: widen(b), C: widen(c)}
}

// FromBFloat16 builds a Set from reduced-precision matrices.
func FromBFloat16(a, b [][]sarray.BFloat16, c [][]float32) Set {
	f := func(v sarray.BFloat16) float64 { return v.Float64() }
	return Set{A: mapMatrix(a, f), B: mapMatrix(b, f), C: widen(c)}
}

func widen[T sarray.Numbers](m [][]T) Matrix {
	return mapMatrix(m, func(v T) float64 { return float64(v) })
}

func mapMatrix[T any](m [][]T, fn func(T) float64) Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = fn(v)
		}
	}
	return out
}
