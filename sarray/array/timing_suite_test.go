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

package array_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ajroetker/go-systolic/sarray"
	"github.com/ajroetker/go-systolic/sarray/array"
	"github.com/ajroetker/go-systolic/sarray/mac"
)

func TestTiming(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pipeline Timing Suite")
}

var _ = Describe("Pipeline timing", func() {
	const n = 4
	var e *array.Engine[int8, int64]

	// steps runs k idle Steps and returns their outputs.
	steps := func(k int) [][]int64 {
		var out [][]int64
		for range k {
			out = append(out, e.Step())
		}
		return out
	}

	BeforeEach(func() {
		e = array.New(n, mac.Int8{}, array.WithStrictBounds())
	})

	Describe("a bias alone", func() {
		BeforeEach(func() {
			e.PutCCol(2, 42)
		})

		It("reaches the bottom row N-1 Steps after it enters row 0", func() {
			trace := steps(2 * n)
			for s, row := range trace {
				if s == n-1 {
					Expect(row).To(Equal([]int64{0, 0, 42, 0}), "Step %d", s)
				} else {
					Expect(row).To(HaveEach(int64(0)), "Step %d", s)
				}
			}
		})
	})

	Describe("one operand pair in row k and column j", func() {
		DescribeTable("reaches the bottom row on Step N only when k == j",
			func(k, j int, wantStep int) {
				Expect(e.PutARow(k, 5)).To(BeTrue())
				Expect(e.PutBCol(j, 7)).To(BeTrue())
				trace := steps(3 * n)
				for s, row := range trace {
					if s == wantStep {
						Expect(row[j]).To(Equal(int64(35)), "Step %d", s)
					} else {
						Expect(row[j]).To(BeZero(), "Step %d", s)
					}
				}
			},
			Entry("corner (0, 0)", 0, 0, n),
			Entry("diagonal (2, 2)", 2, 2, n),
			Entry("bottom right (3, 3)", 3, 3, n),
			Entry("off diagonal never meets", 1, 2, -1),
		)
	})

	Describe("format", func() {
		It("is fixed by the MAC unit", func() {
			Expect(e.Format()).To(Equal(sarray.FormatInt8))
			bf := array.New(n, mac.BFloat16{})
			Expect(bf.Format()).To(Equal(sarray.FormatBFloat16))
		})
	})

	Describe("strict bounds", func() {
		It("panics on a second A value in one cycle", func() {
			e.PutARow(1, 1)
			Expect(func() { e.PutARow(1, 2) }).To(Panic())
		})

		It("accepts the same slot again after a Step", func() {
			e.PutARow(1, 1)
			e.Step()
			Expect(e.PutARow(1, 2)).To(BeTrue())
		})

		It("panics on an index outside the array", func() {
			Expect(func() { e.PutCCol(n, 1) }).To(Panic())
			Expect(func() { e.PutBCol(-1, 1) }).To(Panic())
		})
	})
})
