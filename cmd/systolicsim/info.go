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

package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-systolic/sarray"
)

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print version and host CPU features relevant to int8 and bf16",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			f := sarray.CPUFeatures()
			fmt.Fprintf(w, "systolicsim %s (%s)\n", version(), runtime.Version())
			fmt.Fprintf(w, "cpu:      %s\n", f)
			fmt.Fprintf(w, "bf16:     %v\n", f.BF16)
			fmt.Fprintf(w, "int8 dot: %v\n", f.Int8Dot)
			a.log.Debug("cpu features", "arch", f.Arch, "flags", f.Names)
			return nil
		},
	}
}

func version() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "(devel)"
}
