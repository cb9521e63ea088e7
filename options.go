package paintmix

import (
	"fmt"
	"log/slog"
	"time"
)

type Option func(*Optimizer) error

// WithAlgorithm selects the ratio-search strategy. The default is
// AlgorithmAuto, which resolves to differential evolution for small pools
// or tight budgets and to the TPE hybrid otherwise.
func WithAlgorithm(a Algorithm) Option {
	return func(o *Optimizer) error {
		switch a {
		case AlgorithmAuto, AlgorithmDifferentialEvolution, AlgorithmTPEHybrid:
			o.algorithm = a
			return nil
		}
		return fmt.Errorf("unknown algorithm %q", a)
	}
}

// WithSeed fixes the random seed for reproducible runs. Without this option
// every run draws a fresh seed; the seed in use is logged either way.
func WithSeed(seed uint64) Option {
	return func(o *Optimizer) error {
		o.seed = seed
		o.seedSet = true
		return nil
	}
}

// WithPopulationSize overrides the differential-evolution population size.
func WithPopulationSize(n int) Option {
	return func(o *Optimizer) error {
		if n < 4 {
			return fmt.Errorf("population size must be at least 4, got %d", n)
		}
		o.popSize = n
		return nil
	}
}

// WithWorkers bounds concurrent candidate evaluations within a run.
// The default is GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *Optimizer) error {
		if n < 1 {
			return fmt.Errorf("workers must be at least 1, got %d", n)
		}
		o.workers = n
		return nil
	}
}

// WithAutoThresholds tunes when AlgorithmAuto enables the TPE hybrid:
// pools of at most poolSize paints, or budgets below minBudget, run
// differential evolution only. These are policy knobs, not contract.
func WithAutoThresholds(poolSize int, minBudget time.Duration) Option {
	return func(o *Optimizer) error {
		if poolSize < MinPoolSize {
			return fmt.Errorf("auto pool threshold must be at least %d, got %d", MinPoolSize, poolSize)
		}
		o.autoPoolSize = poolSize
		o.autoMinBudget = minBudget
		return nil
	}
}

// WithPrefilterLimit caps how many candidate paints enter the combinatorial
// subset search. Larger pools are pre-filtered by color proximity to the
// target.
func WithPrefilterLimit(n int) Option {
	return func(o *Optimizer) error {
		if n < MinPoolSize {
			return fmt.Errorf("prefilter limit must be at least %d, got %d", MinPoolSize, n)
		}
		o.prefilterLimit = n
		return nil
	}
}

// WithCombinationCap bounds the number of paint subsets searched per run.
func WithCombinationCap(n int) Option {
	return func(o *Optimizer) error {
		if n < 1 {
			return fmt.Errorf("combination cap must be at least 1, got %d", n)
		}
		o.combinationCap = n
		return nil
	}
}

// WithLogger routes run diagnostics (seed, resolved algorithm, outcome)
// to the given structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) error {
		if l == nil {
			return fmt.Errorf("logger must not be nil")
		}
		o.logger = l
		return nil
	}
}
