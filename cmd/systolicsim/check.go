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
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-systolic/sarray"
	"github.com/ajroetker/go-systolic/sarray/contrib/lanes"
	"github.com/ajroetker/go-systolic/sarray/contrib/scenario"
	"github.com/ajroetker/go-systolic/sarray/mac"
)

func (a *app) newCheckCmd() *cobra.Command {
	var (
		in        inputs
		tracePath string
		tol       float64
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare a hardware output trace against the model cycle by cycle",
		Long: `check reads a trace file holding the hardware's packed output vector for
each cycle, one hexadecimal value per line (blank lines and lines starting with
'#' are ignored), and compares it with the model running the same inputs.
Cycles where the model output is all zeros are skipped. Integer results must
match exactly; BFloat16 results must match within --tol relative error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := in.validate(); err != nil {
				return err
			}
			if tracePath == "" {
				return errors.New("--trace is required")
			}
			observed, err := readTrace(tracePath)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch in.format {
			case sarray.FormatInt8:
				m, err := in.int8Matrices(cmd.Context())
				if err != nil {
					return err
				}
				_, tr := simulate(a.log, in.schedule, m, mac.Int8{})
				return checkTrace(a.log, w, tr, observed, in.n, lanes.Int32Lanes, scenario.CompareExact[int64])
			case sarray.FormatBFloat16:
				m, err := in.bfloat16Matrices(cmd.Context())
				if err != nil {
					return err
				}
				_, tr := simulate(a.log, in.schedule, m, mac.BFloat16{})
				compare := func(cycle int, want, got []float32) error {
					return scenario.CompareRelative(cycle, want, got, tol)
				}
				return checkTrace(a.log, w, tr, observed, in.n, lanes.BFloat16Lanes, compare)
			}
			return fmt.Errorf("%w: %v", sarray.ErrUnknownFormat, in.format)
		},
	}
	in.register(cmd.Flags())
	cmd.Flags().StringVar(&tracePath, "trace", "", "file with one hex output vector per cycle")
	// Lanes carry truncated BFloat16.
	cmd.Flags().Float64Var(&tol, "tol", sarray.BFloat16Epsilon, "relative tolerance for bf16 results")
	return cmd
}

// readTrace returns the hex values of a trace file, one per cycle.
func readTrace(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

func checkTrace[Acc comparable](log *slog.Logger, w io.Writer, model scenario.Trace[Acc], observed []string, n int,
	decode func([]uint32) []Acc, compare func(cycle int, want, got []Acc) error) error {
	if len(observed) != len(model) {
		log.Warn("trace length differs from model", "observed", len(observed), "model", len(model))
	}

	var checked, failed int
	for c := range min(len(model), len(observed)) {
		if !scenario.AnyNonzero(model[c]) {
			continue
		}
		vec, err := lanes.ParseHex(observed[c], n)
		if err != nil {
			return fmt.Errorf("trace cycle %d: %w", c, err)
		}
		checked++
		if err := compare(c, model[c], decode(vec)); err != nil {
			failed++
			log.Error("mismatch", "cycle", c, "err", err)
			continue
		}
		log.Debug("match", "cycle", c)
	}

	fmt.Fprintf(w, "checked %d cycles, %d mismatched\n", checked, failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d cycles", scenario.ErrMismatch, failed, checked)
	}
	if checked == 0 {
		log.Warn("no cycle was compared; the model produced only zeros")
	}
	return nil
}
