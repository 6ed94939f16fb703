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
	"errors"
	"fmt"
	"strings"
)

// Format selects the numeric domain a MAC cell computes in.
// It is fixed for the lifetime of an engine.
type Format int

const (
	// FormatInt8 multiplies signed 8-bit operands and accumulates into int64.
	FormatInt8 Format = iota

	// FormatBFloat16 multiplies BFloat16 operands and accumulates into float32.
	FormatBFloat16
)

// ErrUnknownFormat is returned by ParseFormat for names it does not recognize.
var ErrUnknownFormat = errors.New("unknown numeric format")

// String returns the canonical name of the format.
func (f Format) String() string {
	switch f {
	case FormatInt8:
		return "int8"
	case FormatBFloat16:
		return "bf16"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Valid reports whether f is one of the defined formats.
func (f Format) Valid() bool {
	return f == FormatInt8 || f == FormatBFloat16
}

// Select returns the value the hardware expects on its per-column format
// select input: 0 for int8, 1 for bf16.
func (f Format) Select() uint8 {
	switch f {
	case FormatInt8:
		return 0
	case FormatBFloat16:
		return 1
	default:
		panic(fmt.Sprintf("sarray: invalid format %d", int(f)))
	}
}

// ParseFormat parses a format name. Accepted names are "int8", "bf16" and
// "bfloat16", case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int8", "i8":
		return FormatInt8, nil
	case "bf16", "bfloat16":
		return FormatBFloat16, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Set implements pflag.Value so a Format can be bound directly to a flag.
func (f *Format) Set(s string) error {
	v, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string {
	return "format"
}
