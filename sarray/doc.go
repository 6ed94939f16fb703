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

// Package sarray holds the numeric formats shared by the systolic array
// reference model: the format tag selecting integer or reduced-precision
// floating arithmetic, the BFloat16 scalar type, and a report of the host's
// native support for those formats.
//
// The model itself lives in sub-packages:
//
//   - sarray/mac: the stateless multiply-accumulate reference unit
//   - sarray/array: the cycle-accurate N×N systolic simulation engine
//   - sarray/contrib/...: driver-side helpers (matrix files, packed result
//     lanes, random scenarios, a worker pool for independent runs)
//
// Basic usage:
//
//	e := array.New(4, mac.Int8{})
//	e.PutARow(0, 3)
//	e.PutBCol(0, 2)
//	e.PutCCol(0, 1)
//	for range 7 {
//	    bottom := e.Step()
//	    _ = bottom // compare against the hardware's packed result lanes
//	}
//
// All arithmetic is pure Go and bit-identical on every host. CPUFeatures only
// reports what the host could accelerate; it never changes results.
package sarray
