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
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ajroetker/go-systolic/sarray"
	"github.com/ajroetker/go-systolic/sarray/contrib/matfile"
	"github.com/ajroetker/go-systolic/sarray/contrib/scenario"
)

// logLevelEnv overrides the default log level.
const logLevelEnv = "SYSTOLICSIM_LOG_LEVEL"

// app holds state shared by all subcommands.
type app struct {
	logLevel string
	log      *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: slog.New(slog.DiscardHandler)}
	root := &cobra.Command{
		Use:           "systolicsim",
		Short:         "Cycle-accurate reference model of an N×N systolic MAC array",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
				return fmt.Errorf("invalid log level %q: %w", a.logLevel, err)
			}
			a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	def := os.Getenv(logLevelEnv)
	if def == "" {
		def = "info"
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", def,
		"log level (debug, info, warn, error); defaults to $"+logLevelEnv)

	root.AddCommand(
		a.newRunCmd(),
		a.newGenCmd(),
		a.newCheckCmd(),
		a.newBatchCmd(),
		a.newInfoCmd(),
	)
	return root
}

// inputs selects the matrices and schedule a model run uses.
type inputs struct {
	format   sarray.Format
	n        int
	dir      string
	seed     uint64
	schedule string
}

func (in *inputs) register(fs *pflag.FlagSet) {
	fs.Var(&in.format, "format", "numeric format (int8, bf16)")
	fs.IntVarP(&in.n, "size", "n", 4, "array dimension N; ignored with --dir")
	fs.StringVar(&in.dir, "dir", "", "directory holding A_matrix.txt, B_matrix.txt and C_matrix.txt")
	fs.Uint64Var(&in.seed, "seed", 1, "seed for random matrices when --dir is not set")
	fs.StringVar(&in.schedule, "schedule", "wavefront", "staging schedule (wavefront, historical)")
}

func (in *inputs) int8Matrices(ctx context.Context) (scenario.Matrices[int8, int64], error) {
	if in.dir == "" {
		return scenario.RandomInt8(rand.New(rand.NewPCG(in.seed, 0)), in.n), nil
	}
	set, err := matfile.LoadDir(ctx, in.dir)
	if err != nil {
		return scenario.Matrices[int8, int64]{}, err
	}
	a, b, c, err := set.Int8()
	if err != nil {
		return scenario.Matrices[int8, int64]{}, err
	}
	in.n = set.N()
	return scenario.Matrices[int8, int64]{A: a, B: b, C: c}, nil
}

func (in *inputs) bfloat16Matrices(ctx context.Context) (scenario.Matrices[sarray.BFloat16, float32], error) {
	if in.dir == "" {
		return scenario.RandomBFloat16(rand.New(rand.NewPCG(in.seed, 0)), in.n), nil
	}
	set, err := matfile.LoadDir(ctx, in.dir)
	if err != nil {
		return scenario.Matrices[sarray.BFloat16, float32]{}, err
	}
	a, b, c, err := set.BFloat16()
	if err != nil {
		return scenario.Matrices[sarray.BFloat16, float32]{}, err
	}
	in.n = set.N()
	return scenario.Matrices[sarray.BFloat16, float32]{A: a, B: b, C: c}, nil
}

func (in *inputs) validate() error {
	if in.dir == "" && in.n <= 0 {
		return fmt.Errorf("array dimension must be positive, got %d", in.n)
	}
	switch in.schedule {
	case "wavefront", "historical":
		return nil
	}
	return fmt.Errorf("unknown schedule %q (want wavefront or historical)", in.schedule)
}

func buildSchedule[In sarray.Operands, Acc sarray.Accumulators](name string, m scenario.Matrices[In, Acc]) scenario.Schedule[In, Acc] {
	if name == "historical" {
		return scenario.Historical(m)
	}
	return scenario.Wavefront(m)
}
