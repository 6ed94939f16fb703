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
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-systolic/sarray"
	"github.com/ajroetker/go-systolic/sarray/contrib/lanes"
	"github.com/ajroetker/go-systolic/sarray/contrib/scenario"
	"github.com/ajroetker/go-systolic/sarray/mac"
)

func (a *app) newRunCmd() *cobra.Command {
	var (
		in  inputs
		hex bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the model and print the bottom-row output of every cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := in.validate(); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch in.format {
			case sarray.FormatInt8:
				m, err := in.int8Matrices(cmd.Context())
				if err != nil {
					return err
				}
				return printRun(a.log, w, in.schedule, m, mac.Int8{}, hex, lanes.FromInt64)
			case sarray.FormatBFloat16:
				m, err := in.bfloat16Matrices(cmd.Context())
				if err != nil {
					return err
				}
				return printRun(a.log, w, in.schedule, m, mac.BFloat16{}, hex, encodeBFloat16)
			}
			return fmt.Errorf("%w: %v", sarray.ErrUnknownFormat, in.format)
		},
	}
	in.register(cmd.Flags())
	cmd.Flags().BoolVar(&hex, "hex", false, "print one packed hex bit-vector per cycle instead of lane values")
	return cmd
}

func encodeBFloat16(vals []float32) ([]uint32, error) {
	return lanes.FromFloat32(vals), nil
}

// simulate runs the named schedule over m on a fresh engine.
func simulate[In sarray.Operands, Acc sarray.Accumulators](log *slog.Logger, schedule string, m scenario.Matrices[In, Acc], unit mac.Unit[In, Acc]) (scenario.Schedule[In, Acc], scenario.Trace[Acc]) {
	s := buildSchedule(schedule, m)
	e := s.NewEngine(unit)
	log.Info("simulating",
		"format", e.Format(),
		"n", s.N,
		"schedule", s.Name,
		"cycles", len(s.Beats),
		"sticky_bias", s.StickyBias)
	tr := scenario.Run(e, s)
	for c, row := range tr {
		log.Debug("step", "cycle", c, "out", row)
	}
	return s, tr
}

func printRun[In sarray.Operands, Acc sarray.Accumulators](log *slog.Logger, w io.Writer, schedule string, m scenario.Matrices[In, Acc], unit mac.Unit[In, Acc], hex bool, encode func([]Acc) ([]uint32, error)) error {
	s, tr := simulate(log, schedule, m, unit)
	if hex {
		for c, row := range tr {
			vec, err := encode(row)
			if err != nil {
				return fmt.Errorf("cycle %d: %w", c, err)
			}
			fmt.Fprintln(w, lanes.FormatHex(vec))
		}
		return nil
	}

	for c, row := range tr {
		fmt.Fprintf(w, "cycle %d: %v\n", c, row)
	}
	if s.Rows == 0 {
		return nil
	}
	results, err := scenario.Deskew(tr, s.N, s.Rows)
	if err != nil {
		return err
	}
	for r, row := range results {
		fmt.Fprintf(w, "result %d: %v\n", r, row)
	}
	return nil
}
