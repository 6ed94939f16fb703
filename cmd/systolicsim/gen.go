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
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-systolic/sarray"
	"github.com/ajroetker/go-systolic/sarray/contrib/matfile"
	"github.com/ajroetker/go-systolic/sarray/contrib/scenario"
)

func (a *app) newGenCmd() *cobra.Command {
	var (
		format sarray.Format
		n      int
		seed   uint64
		out    string
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Write random A, B and C matrix files",
		Long: `gen draws random matrices and writes them as A_matrix.txt, B_matrix.txt
and C_matrix.txt. The same --seed passed to run without --dir simulates the
same matrices.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			if n <= 0 {
				return fmt.Errorf("array dimension must be positive, got %d", n)
			}
			rng := rand.New(rand.NewPCG(seed, 0))
			var set matfile.Set
			switch format {
			case sarray.FormatInt8:
				m := scenario.RandomInt8(rng, n)
				set = matfile.FromInt8(m.A, m.B, m.C)
			case sarray.FormatBFloat16:
				m := scenario.RandomBFloat16(rng, n)
				set = matfile.FromBFloat16(m.A, m.B, m.C)
			default:
				return fmt.Errorf("%w: %v", sarray.ErrUnknownFormat, format)
			}
			if err := matfile.WriteDir(out, set); err != nil {
				return err
			}
			a.log.Info("wrote matrices", "dir", out, "format", format, "n", n, "seed", seed)
			return nil
		},
	}
	cmd.Flags().Var(&format, "format", "numeric format (int8, bf16)")
	cmd.Flags().IntVarP(&n, "size", "n", 4, "array dimension N")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&out, "out", "", "output directory")
	return cmd
}
