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
	"os"
	"os/signal"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ajroetker/go-systolic/sarray/contrib/scenario"
	"github.com/ajroetker/go-systolic/sarray/contrib/workerpool"
)

// maxLoggedFailures bounds how many failing scenarios batch logs.
const maxLoggedFailures = 10

func (a *app) newBatchCmd() *cobra.Command {
	var (
		cfg     scenario.BatchConfig
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run many random wavefront scenarios in parallel against the oracles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			pool := workerpool.New(workers)
			defer pool.Close()
			a.log.Info("starting batch",
				"format", cfg.Format,
				"n", cfg.N,
				"scenarios", cfg.Scenarios,
				"workers", pool.Workers(),
				"seed", cfg.Seed)

			rep, err := scenario.RunBatch(ctx, pool, cfg)
			for _, ferr := range lo.Slice(rep.Failures, 0, maxLoggedFailures) {
				a.log.Error("scenario failed", "err", ferr)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s N=%d: %d passed, %d failed, %d skipped in %v\n",
				cfg.Format, cfg.N, rep.Passed, rep.Failed, rep.Skipped, rep.Elapsed)
			if err != nil {
				return err
			}
			if !rep.OK() {
				return fmt.Errorf("%w: %d of %d scenarios failed", scenario.ErrMismatch, rep.Failed, cfg.Scenarios)
			}
			return nil
		},
	}
	cmd.Flags().Var(&cfg.Format, "format", "numeric format (int8, bf16)")
	cmd.Flags().IntVarP(&cfg.N, "size", "n", 8, "array dimension N")
	cmd.Flags().IntVar(&cfg.Scenarios, "scenarios", 100, "number of random scenarios")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 1, "base random seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines; 0 means GOMAXPROCS")
	return cmd
}
