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

package array

// BoundsPolicy is the contract for Put* calls with an index outside [0, N).
type BoundsPolicy int

const (
	// IgnoreOutOfRange drops the write and makes the Put* call return false.
	// Restaging a slot that is already full in the same cycle overwrites it.
	// Older testbenches relied on this.
	IgnoreOutOfRange BoundsPolicy = iota

	// PanicOutOfRange panics on an out-of-range index, and on staging a slot
	// that already holds a value for the current cycle.
	PanicOutOfRange
)

// String returns the policy name.
func (p BoundsPolicy) String() string {
	switch p {
	case IgnoreOutOfRange:
		return "ignore"
	case PanicOutOfRange:
		return "panic"
	default:
		return "unknown"
	}
}

type config struct {
	bounds     BoundsPolicy
	stickyBias bool
}

// Option configures an Engine at construction.
type Option func(*config)

// WithBoundsPolicy sets the out-of-range contract. The default is
// IgnoreOutOfRange.
func WithBoundsPolicy(p BoundsPolicy) Option {
	return func(c *config) {
		c.bounds = p
	}
}

// WithStrictBounds is shorthand for WithBoundsPolicy(PanicOutOfRange).
func WithStrictBounds() Option {
	return WithBoundsPolicy(PanicOutOfRange)
}

// WithStickyBias keeps a staged C value feeding row 0 on every cycle until it
// is overwritten, instead of consuming it after one cycle. Traces recorded by
// older testbenches assume a resident bias.
func WithStickyBias() Option {
	return func(c *config) {
		c.stickyBias = true
	}
}
