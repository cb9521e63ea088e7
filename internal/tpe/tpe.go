// Package tpe implements a tree-structured Parzen estimator refinement pass.
//
// The estimator is seeded with the evaluation history of a preceding
// population search: observations are split at the gamma quantile into a
// "good" and a "bad" set, candidate vectors are drawn from per-dimension
// Gaussian kernels centered on good observations, and the candidate with
// the highest density ratio l(x)/g(x) is evaluated each round.
package tpe

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// Observation is one evaluated point of the objective being refined.
type Observation struct {
	X     []float64
	Value float64
}

type Config struct {
	Dim       int
	Objective func(x []float64) float64

	// Gamma is the quantile separating good from bad observations;
	// 0 selects 0.25.
	Gamma float64
	// Candidates is the number of kernel draws scored per round;
	// 0 selects 24.
	Candidates int
	// Rounds is the number of objective evaluations; 0 selects 30.
	Rounds int
	// Target stops the refinement once the best value reaches it.
	Target float64
	// Deadline is the wall-clock cutoff.
	Deadline time.Time
	// Seed fixes the random source.
	Seed uint64
}

type Result struct {
	Best             []float64
	BestValue        float64
	Rounds           int
	Evaluations      int
	TargetMet        bool
	EarlyTermination bool
}

const minBandwidth = 0.02

// Refine improves on the seed history. It needs enough observations to
// form both kernel sets; with fewer than eight it returns the best seed
// unchanged.
func Refine(ctx context.Context, cfg Config, history []Observation) Result {
	obs := slices.Clone(history)
	slices.SortFunc(obs, func(a, b Observation) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})

	var res Result
	if len(obs) > 0 {
		res.Best = slices.Clone(obs[0].X)
		res.BestValue = obs[0].Value
	} else {
		res.BestValue = math.Inf(1)
	}
	if len(obs) < 8 {
		return res
	}

	gamma := cfg.Gamma
	if gamma <= 0 || gamma >= 1 {
		gamma = 0.25
	}
	candidates := cfg.Candidates
	if candidates <= 0 {
		candidates = 24
	}
	rounds := cfg.Rounds
	if rounds <= 0 {
		rounds = 30
	}

	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x6a09e667f3bcc909)
	rnd := rand.New(src)

	x := make([]float64, cfg.Dim)
	for range rounds {
		if res.BestValue <= cfg.Target {
			res.TargetMet = true
			return res
		}
		if ctx.Err() != nil || (!cfg.Deadline.IsZero() && time.Now().After(cfg.Deadline)) {
			res.EarlyTermination = true
			return res
		}

		split := min(max(int(math.Ceil(gamma*float64(len(obs)))), 4), len(obs)-4)
		good, bad := obs[:split], obs[split:]
		goodKDE := newKDE(good, cfg.Dim, src)
		badKDE := newKDE(bad, cfg.Dim, src)

		var bestCand []float64
		bestScore := math.Inf(-1)
		for range candidates {
			center := good[rnd.IntN(len(good))].X
			goodKDE.sampleAround(center, x)
			score := goodKDE.logDensity(x) - badKDE.logDensity(x)
			if score > bestScore {
				bestScore = score
				bestCand = slices.Clone(x)
			}
		}

		v := cfg.Objective(bestCand)
		res.Evaluations++
		res.Rounds++
		obs = insertSorted(obs, Observation{X: bestCand, Value: v})
		if v < res.BestValue {
			res.BestValue = v
			res.Best = slices.Clone(bestCand)
		}
	}
	res.TargetMet = res.BestValue <= cfg.Target
	return res
}

// kde is a product of per-dimension Gaussian Parzen kernels with a shared
// per-dimension bandwidth (the standard deviation of the set, floored).
type kde struct {
	points  []Observation
	kernels []distuv.Normal
}

func newKDE(points []Observation, dim int, src rand.Source) *kde {
	k := &kde{points: points, kernels: make([]distuv.Normal, dim)}
	for d := range dim {
		var mean, m2 float64
		for _, o := range points {
			mean += o.X[d]
		}
		mean /= float64(len(points))
		for _, o := range points {
			diff := o.X[d] - mean
			m2 += diff * diff
		}
		sigma := math.Sqrt(m2 / float64(len(points)))
		if sigma < minBandwidth {
			sigma = minBandwidth
		}
		k.kernels[d] = distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	}
	return k
}

// sampleAround draws a candidate from the kernels centered on a point,
// clamped to the unit box.
func (k *kde) sampleAround(center, dst []float64) {
	for d := range dst {
		v := center[d] + k.kernels[d].Rand()
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		dst[d] = v
	}
}

// logDensity evaluates the log of the averaged kernel density at x.
func (k *kde) logDensity(x []float64) float64 {
	var sum float64
	for _, o := range k.points {
		p := 1.0
		for d := range x {
			p *= k.kernels[d].Prob(x[d] - o.X[d])
		}
		sum += p
	}
	if sum <= 0 {
		return math.Inf(-1)
	}
	return math.Log(sum / float64(len(k.points)))
}

func insertSorted(obs []Observation, o Observation) []Observation {
	i, _ := slices.BinarySearchFunc(obs, o, func(a, b Observation) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})
	return slices.Insert(obs, i, o)
}
