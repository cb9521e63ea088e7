// Package paintmix computes physical paint-mixing formulas: given a target
// CIE L*a*b* color and a pool of candidate paints characterized by
// Kubelka-Munk coefficients, it searches paint subsets and ratio vectors for
// the mix minimizing the CIEDE2000 distance to the target, subject to
// paint-count, volume and time constraints.
package paintmix

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Mode policy defaults. The optimizer honors whatever values the request
// carries after validation; these only fill unset fields.
const (
	standardAccuracyTarget = 5.0
	standardMaxPaintCount  = 3
	standardTimeLimitMS    = 10000

	enhancedAccuracyTarget = 2.0
	enhancedMaxPaintCount  = 5
	enhancedTimeLimitMS    = 28000
)

// DefaultTotalVolumeML is the preferred formula volume when the request
// carries no volume constraints.
const DefaultTotalVolumeML = 100.0

// Optimize runs a single optimization with the specified options.
// This is a convenience function that creates an Optimizer instance and
// calls its Optimize method.
func Optimize(ctx context.Context, req Request, opts ...Option) (*Response, error) {
	o, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return o.Optimize(ctx, req)
}

// Optimizer holds the tuning knobs shared by optimization runs. Runs carry
// no shared mutable state and may execute concurrently.
type Optimizer struct {
	algorithm      Algorithm
	seed           uint64
	seedSet        bool
	popSize        int
	workers        int
	prefilterLimit int
	combinationCap int
	autoPoolSize   int
	autoMinBudget  time.Duration
	logger         *slog.Logger
}

// New initializes an Optimizer. For default values, refer to the init
// method and the option docs.
func New(opts ...Option) (*Optimizer, error) {
	o := new(Optimizer)
	if err := o.init(opts...); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Optimizer) init(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	if o.algorithm == "" {
		o.algorithm = AlgorithmAuto
	}
	if o.prefilterLimit == 0 {
		o.prefilterLimit = 16
	}
	if o.combinationCap == 0 {
		o.combinationCap = 200
	}
	if o.autoPoolSize == 0 {
		o.autoPoolSize = 8
	}
	if o.autoMinBudget == 0 {
		o.autoMinBudget = 5 * time.Second
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return nil
}

// Optimize validates the request and runs the subset/ratio search.
//
// Error semantics: a non-nil error is returned only for contract violations
// (*ValidationError). Domain conditions are reported in the Response:
// infeasible constraints set Success to false with a structured code, and an
// exhausted time budget still succeeds with EarlyTermination set in the
// metrics and the best-so-far formula attached.
func (o *Optimizer) Optimize(ctx context.Context, req Request) (*Response, error) {
	req = applyModeDefaults(req)
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	seed := o.seed
	if !o.seedSet {
		seed = rand.Uint64()
	}
	algorithm := o.resolveAlgorithm(len(req.AvailablePaints), time.Duration(req.TimeLimitMS)*time.Millisecond)
	o.logger.Debug("optimization run",
		"seed", seed,
		"algorithm", algorithm,
		"pool", len(req.AvailablePaints),
		"maxPaintCount", req.MaxPaintCount,
		"timeLimitMs", req.TimeLimitMS,
		"accuracyTarget", req.AccuracyTarget,
	)

	s := newSearch(o, req, algorithm, seed)
	resp := s.run(ctx)
	o.logger.Debug("optimization done",
		"seed", seed,
		"success", resp.Success,
		"error", resp.Error,
		"deltaE", finalDeltaE(resp),
	)
	return resp, nil
}

// resolveAlgorithm maps AlgorithmAuto to a concrete strategy: small pools
// and tight budgets run differential evolution only, larger budgets enable
// the TPE refinement pass.
func (o *Optimizer) resolveAlgorithm(poolSize int, budget time.Duration) Algorithm {
	if o.algorithm != AlgorithmAuto {
		return o.algorithm
	}
	if poolSize <= o.autoPoolSize || budget < o.autoMinBudget {
		return AlgorithmDifferentialEvolution
	}
	return AlgorithmTPEHybrid
}

func applyModeDefaults(req Request) Request {
	mode := req.Mode
	if mode == "" {
		mode = ModeStandard
		req.Mode = mode
	}
	if req.AccuracyTarget == 0 {
		if mode == ModeEnhanced {
			req.AccuracyTarget = enhancedAccuracyTarget
		} else {
			req.AccuracyTarget = standardAccuracyTarget
		}
	}
	if req.MaxPaintCount == 0 {
		if mode == ModeEnhanced {
			req.MaxPaintCount = enhancedMaxPaintCount
		} else {
			req.MaxPaintCount = standardMaxPaintCount
		}
	}
	if req.TimeLimitMS == 0 {
		if mode == ModeEnhanced {
			req.TimeLimitMS = enhancedTimeLimitMS
		} else {
			req.TimeLimitMS = standardTimeLimitMS
		}
	}
	return req
}

func finalDeltaE(resp *Response) float64 {
	if resp.Formula == nil {
		return -1
	}
	return resp.Formula.DeltaE
}
