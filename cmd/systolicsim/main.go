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

// Command systolicsim runs the cycle-accurate systolic array model and
// compares it against traces captured from a hardware simulation.
//
// Usage:
//
//	systolicsim gen -n 4 --format int8 --out data/          # random A/B/C matrix files
//	systolicsim run --dir data/ --format int8               # per-cycle bottom-row outputs
//	systolicsim run --dir data/ --format int8 --hex > exp   # packed bit-vectors, one per cycle
//	systolicsim check --dir data/ --format int8 --trace dut.txt
//	systolicsim batch -n 8 --format bf16 --scenarios 1000
//	systolicsim info
//
// The log level is taken from --log-level or the SYSTOLICSIM_LOG_LEVEL
// environment variable (debug, info, warn, error). Logs go to stderr; results
// go to stdout.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
