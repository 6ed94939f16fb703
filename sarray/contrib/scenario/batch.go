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

package scenario

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/samber/lo"

	"github.com/ajroetker/go-systolic/sarray"
	"github.com/ajroetker/go-systolic/sarray/array"
	"github.com/ajroetker/go-systolic/sarray/contrib/workerpool"
	"github.com/ajroetker/go-systolic/sarray/mac"
)

// errSkipped marks scenarios that never ran because the batch was cancelled.
var errSkipped = errors.New("scenario: skipped")

// BatchConfig describes a batch of random wavefront scenarios.
type BatchConfig struct {
	N         int
	Scenarios int
	Seed      uint64
	Format    sarray.Format
}

// BatchReport summarizes a batch. Failures holds the errors of failed
// scenarios in scenario order.
type BatchReport struct {
	Config   BatchConfig
	Passed   int
	Failed   int
	Skipped  int
	Failures []error
	Elapsed  time.Duration
}

// OK reports whether every scenario ran and passed.
func (r BatchReport) OK() bool {
	return r.Failed == 0 && r.Skipped == 0
}

// RunBatch runs cfg.Scenarios random scenarios across pool. Scenario i draws
// its operands from a PCG stream seeded with (cfg.Seed, i), so a batch is
// reproducible regardless of worker count. If ctx is cancelled, scenarios that
// have not started are skipped and ctx.Err() is returned with the partial
// report.
func RunBatch(ctx context.Context, pool *workerpool.Pool, cfg BatchConfig) (BatchReport, error) {
	rep := BatchReport{Config: cfg}
	if cfg.N <= 0 {
		return rep, fmt.Errorf("scenario: array dimension must be positive, got %d", cfg.N)
	}
	if !cfg.Format.Valid() {
		return rep, fmt.Errorf("%w: %d", sarray.ErrUnknownFormat, int(cfg.Format))
	}

	start := time.Now()
	errs := make([]error, cfg.Scenarios)
	pool.Each(cfg.Scenarios, func(i int) {
		if ctx.Err() != nil {
			errs[i] = errSkipped
			return
		}
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(i)))
		var err error
		switch cfg.Format {
		case sarray.FormatInt8:
			err = CheckInt8(RandomInt8(rng, cfg.N))
		case sarray.FormatBFloat16:
			err = CheckBFloat16(RandomBFloat16(rng, cfg.N))
		}
		if err != nil {
			err = fmt.Errorf("scenario %d: %w", i, err)
		}
		errs[i] = err
	})
	rep.Elapsed = time.Since(start)

	for _, err := range errs {
		switch {
		case err == nil:
			rep.Passed++
		case errors.Is(err, errSkipped):
			rep.Skipped++
		default:
			rep.Failed++
		}
	}
	rep.Failures = lo.Filter(errs, func(err error, _ int) bool {
		return err != nil && !errors.Is(err, errSkipped)
	})
	return rep, ctx.Err()
}

// CheckInt8 runs m as a wavefront schedule on a strict-bounds engine and
// checks every result against both the MAC-unit oracle and the direct int64
// oracle.
func CheckInt8(m Matrices[int8, int64]) error {
	got, err := simulate(m, mac.Int8{})
	if err != nil {
		return err
	}
	if err := compareWavefront(m.N(), Expected(m, mac.Int8{}), got); err != nil {
		return err
	}
	return compareWavefront(m.N(), WavefrontInt8(m), got)
}

// CheckBFloat16 runs m as a wavefront schedule and checks every result is
// bit-identical to the MAC-unit oracle.
func CheckBFloat16(m Matrices[sarray.BFloat16, float32]) error {
	got, err := simulate(m, mac.BFloat16{})
	if err != nil {
		return err
	}
	return compareWavefront(m.N(), Expected(m, mac.BFloat16{}), got)
}

func simulate[In sarray.Operands, Acc sarray.Accumulators](m Matrices[In, Acc], unit mac.Unit[In, Acc]) ([][]Acc, error) {
	s := Wavefront(m)
	e := s.NewEngine(unit, array.WithStrictBounds())
	return Deskew(Run(e, s), s.N, s.Rows)
}

func compareWavefront[T comparable](n int, want, got [][]T) error {
	for r := range want {
		for j := range want[r] {
			if want[r][j] != got[r][j] {
				return &MismatchError{Cycle: ExitCycle(n, r, j), Lane: j, Want: want[r][j], Got: got[r][j]}
			}
		}
	}
	return nil
}
