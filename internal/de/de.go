// Package de implements differential evolution (DE/rand/1/bin) over the
// unit box [0,1]^dim. Callers that optimize over the ratio simplex
// renormalize inside the objective.
package de

import (
	"context"
	"math/rand/v2"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Objective is a pure function of a candidate vector; lower is better.
// It must be safe for concurrent calls.
type Objective func(x []float64) float64

type Config struct {
	Dim       int
	Objective Objective

	// PopSize is the population size; 0 selects min(15*Dim, 90), floor 20.
	PopSize int
	// CR is the crossover rate; 0 selects 0.9.
	CR float64
	// MaxGenerations bounds the search; 0 selects 60.
	MaxGenerations int
	// Stall stops the search after this many generations without
	// improvement; 0 selects 16.
	Stall int
	// Target stops the search once the best value reaches it.
	Target float64
	// Deadline is the wall-clock cutoff. The initial population is always
	// evaluated so a best-effort result exists even past the deadline.
	Deadline time.Time
	// Workers bounds concurrent objective evaluations; 0 selects GOMAXPROCS.
	Workers int
	// Seed fixes the random source for reproducible runs.
	Seed uint64
	// Init holds optional seed members copied into the initial population.
	Init [][]float64
}

// Sample is one evaluated candidate, recorded for downstream refinement.
type Sample struct {
	X     []float64
	Value float64
}

type Result struct {
	Best             []float64
	BestValue        float64
	InitialBest      float64
	Evaluations      int
	Generations      int
	TargetMet        bool
	Converged        bool // target met or generation/stall budget exhausted
	EarlyTermination bool // deadline or context cut the search short
	History          []Sample
}

// Run executes the search. The returned Result is always usable; ctx
// cancellation and deadline expiry surface as EarlyTermination, not errors.
func Run(ctx context.Context, cfg Config) Result {
	pop := cfg.popSize()
	gens := cfg.MaxGenerations
	if gens <= 0 {
		gens = 60
	}
	stall := cfg.Stall
	if stall <= 0 {
		stall = 16
	}
	cr := cfg.CR
	if cr <= 0 {
		cr = 0.9
	}
	rnd := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	// Initial population: seed members first, uniform random for the rest.
	xs := make([][]float64, pop)
	for i := range xs {
		xs[i] = make([]float64, cfg.Dim)
		if i < len(cfg.Init) && len(cfg.Init[i]) == cfg.Dim {
			copy(xs[i], cfg.Init[i])
			continue
		}
		for d := range xs[i] {
			xs[i][d] = rnd.Float64()
		}
	}

	var res Result
	values := cfg.evalAll(ctx, xs)
	res.Evaluations = pop
	res.History = appendSamples(res.History, xs, values)

	bestIdx := argmin(values)
	res.Best = append([]float64(nil), xs[bestIdx]...)
	res.BestValue = values[bestIdx]
	res.InitialBest = values[bestIdx]

	trials := make([][]float64, pop)
	for i := range trials {
		trials[i] = make([]float64, cfg.Dim)
	}
	sinceImprovement := 0
	for g := 0; g < gens; g++ {
		if res.BestValue <= cfg.Target {
			res.TargetMet = true
			res.Converged = true
			return res
		}
		if ctx.Err() != nil || (!cfg.Deadline.IsZero() && time.Now().After(cfg.Deadline)) {
			res.EarlyTermination = true
			return res
		}

		// Mutation factor with per-generation dither in [0.5, 1.0).
		f := 0.5 + 0.5*rnd.Float64()
		for i := range pop {
			r1, r2, r3 := distinctIndices(rnd, pop, i)
			jrand := rnd.IntN(cfg.Dim)
			for d := range cfg.Dim {
				if d == jrand || rnd.Float64() < cr {
					v := xs[r1][d] + f*(xs[r2][d]-xs[r3][d])
					trials[i][d] = clamp01(v)
				} else {
					trials[i][d] = xs[i][d]
				}
			}
		}

		trialValues := cfg.evalAll(ctx, trials)
		res.Evaluations += pop
		res.History = appendSamples(res.History, trials, trialValues)
		res.Generations++

		improved := false
		for i := range pop {
			if trialValues[i] <= values[i] {
				copy(xs[i], trials[i])
				values[i] = trialValues[i]
				if trialValues[i] < res.BestValue {
					res.BestValue = trialValues[i]
					copy(res.Best, trials[i])
					improved = true
				}
			}
		}
		if improved {
			sinceImprovement = 0
		} else {
			sinceImprovement++
			if sinceImprovement >= stall {
				break
			}
		}
	}
	res.TargetMet = res.BestValue <= cfg.Target
	res.Converged = true
	return res
}

func (cfg Config) popSize() int {
	if cfg.PopSize > 0 {
		return max(cfg.PopSize, 4)
	}
	return max(min(15*cfg.Dim, 90), 20)
}

// evalAll evaluates candidates concurrently with a bounded worker group.
func (cfg Config) evalAll(ctx context.Context, xs [][]float64) []float64 {
	values := make([]float64, len(xs))
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || len(xs) == 1 {
		for i, x := range xs {
			values[i] = cfg.Objective(x)
		}
		return values
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, x := range xs {
		g.Go(func() error {
			values[i] = cfg.Objective(x)
			return nil
		})
	}
	_ = g.Wait()
	return values
}

func appendSamples(h []Sample, xs [][]float64, values []float64) []Sample {
	for i := range xs {
		h = append(h, Sample{X: append([]float64(nil), xs[i]...), Value: values[i]})
	}
	return h
}

func distinctIndices(rnd *rand.Rand, n, exclude int) (int, int, int) {
	pick := func(taken ...int) int {
	retry:
		for {
			v := rnd.IntN(n)
			if v == exclude {
				continue
			}
			for _, t := range taken {
				if v == t {
					continue retry
				}
			}
			return v
		}
	}
	r1 := pick()
	r2 := pick(r1)
	r3 := pick(r1, r2)
	return r1, r2, r3
}

func argmin(values []float64) int {
	return floats.MinIdx(values)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
