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
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// Features describes the host's native support for the array's formats.
// The reference model never uses it to pick a code path; it exists so a
// testbench log records the machine a run happened on.
type Features struct {
	Arch string

	// BF16 is set when the CPU has BFloat16 dot-product or matrix
	// instructions (AVX-512 BF16, AMX-BF16).
	BF16 bool

	// Int8Dot is set when the CPU has int8 dot-product instructions
	// (AVX-512 VNNI, AVX-VNNI, ARM I8MM or ASIMD dot product).
	Int8Dot bool

	// Names lists the individual feature flags that were detected.
	Names []string
}

// CPUFeatures probes the host CPU.
func CPUFeatures() Features {
	f := Features{Arch: runtime.GOARCH}
	add := func(ok bool, name string) bool {
		if ok {
			f.Names = append(f.Names, name)
		}
		return ok
	}

	switch runtime.GOARCH {
	case "amd64", "386":
		bf := add(cpu.X86.HasAVX512BF16, "avx512bf16")
		amx := add(cpu.X86.HasAMXBF16, "amxbf16")
		vnni := add(cpu.X86.HasAVX512VNNI, "avx512vnni")
		avxVNNI := add(cpu.X86.HasAVXVNNI, "avxvnni")
		f.BF16 = bf || amx
		f.Int8Dot = vnni || avxVNNI
	case "arm64":
		i8mm := add(cpu.ARM64.HasI8MM, "i8mm")
		dot := add(cpu.ARM64.HasASIMDDP, "asimddp")
		f.Int8Dot = i8mm || dot
	}
	return f
}

// NativeBF16 reports whether the host has BFloat16 arithmetic instructions.
func NativeBF16() bool {
	return CPUFeatures().BF16
}

// String returns a one-line summary, e.g. "amd64 [avx512bf16 avx512vnni]".
func (f Features) String() string {
	return f.Arch + " [" + strings.Join(f.Names, " ") + "]"
}
