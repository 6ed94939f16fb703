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

// Operands is a constraint for the values that flow through the A and B
// propagation registers.
type Operands interface {
	~int8 | ~uint16
}

// Accumulators is a constraint for running-sum values: the C bias inputs and
// every accumulator cell.
type Accumulators interface {
	~int64 | ~float32
}

// Numbers is a constraint for the plain numeric types the drivers compute
// oracles in.
type Numbers interface {
	~int8 | ~int64 | ~float32 | ~float64
}
