package paintmix

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/paintmixr/paintmix/internal/de"
	"github.com/paintmixr/paintmix/internal/kubelka"
	"github.com/paintmixr/paintmix/internal/tpe"
	"github.com/paintmixr/paintmix/lab"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/combin"
)

const tieEps = 1e-6

// chromaMargin is the slack before a chromatic target counts as outside the
// pool's coverage.
const chromaMargin = 2.0

type search struct {
	o         *Optimizer
	algorithm Algorithm
	seed      uint64

	target         lab.Color
	paints         []Paint
	km             []kubelka.Paint
	policy         volumePolicy
	maxCount       int
	accuracyTarget float64
	budget         time.Duration

	warnings []string
}

// candidate is one fully evaluated subset result: fractions are projected
// into the component-volume box and the mix re-predicted without penalties.
type candidate struct {
	value     float64
	subset    []int
	fractions []float64
	total     float64
	mix       kubelka.Mixture
}

func newSearch(o *Optimizer, req Request, algorithm Algorithm, seed uint64) *search {
	s := &search{
		o:              o,
		algorithm:      algorithm,
		seed:           seed,
		target:         req.TargetColor,
		paints:         req.AvailablePaints,
		policy:         newVolumePolicy(req.VolumeConstraints),
		maxCount:       req.MaxPaintCount,
		accuracyTarget: req.AccuracyTarget,
		budget:         time.Duration(req.TimeLimitMS) * time.Millisecond,
	}
	return s
}

func (s *search) run(ctx context.Context) *Response {
	start := time.Now()
	deadline := start.Add(s.budget)

	s.prefilter()
	s.checkChromaticCoverage()
	s.km = make([]kubelka.Paint, len(s.paints))
	for i, p := range s.paints {
		s.km[i] = kubelka.Paint{
			K:               p.KubelkaMunk.K,
			S:               p.KubelkaMunk.S,
			Opacity:         p.Opacity,
			TintingStrength: p.TintingStrength,
			Color:           p.Color,
		}
	}

	subsets := s.enumerateSubsets()
	if len(subsets) == 0 {
		return &Response{
			Success:  false,
			Warnings: s.warnings,
			Error: fmt.Sprintf("%s: no subset of 2..%d paints satisfies the volume constraints",
				CodeVolumeConstraintsConflict, s.maxCount),
		}
	}

	var (
		best             *candidate
		iterations       int
		initialBest      = math.Inf(1)
		haveInitial      bool
		earlyTermination bool
	)
	for i, subset := range subsets {
		if i > 0 && (ctx.Err() != nil || time.Now().After(deadline)) {
			earlyTermination = true
			break
		}
		cand, stats := s.searchSubset(ctx, subset, i, deadline)
		iterations += stats.iterations
		if stats.earlyTermination {
			earlyTermination = true
		}
		if !haveInitial {
			initialBest = stats.initialBest
			haveInitial = true
		}
		if cand != nil && cand.better(best) {
			best = cand
		}
		if best != nil && best.value <= s.accuracyTarget {
			break
		}
	}

	if best == nil {
		return &Response{
			Success:  false,
			Warnings: s.warnings,
			Error:    fmt.Sprintf("%s: the search produced no feasible formula", CodeNoMatchFound),
		}
	}

	targetMet := best.value <= s.accuracyTarget
	if !targetMet {
		s.warnings = append(s.warnings,
			fmt.Sprintf("accuracy target %.1f not met; best delta E is %.2f", s.accuracyTarget, best.value))
	}
	if math.IsInf(initialBest, 1) {
		initialBest = best.value
	}
	improvement := 0.0
	if initialBest > 0 {
		improvement = (initialBest - best.value) / initialBest
	}

	return &Response{
		Success:  true,
		Formula:  s.buildFormula(best),
		Warnings: s.warnings,
		Metrics: &Metrics{
			TimeElapsedMS:       float64(time.Since(start).Microseconds()) / 1000,
			IterationsCompleted: iterations,
			AlgorithmUsed:       s.algorithm,
			ConvergenceAchieved: !earlyTermination,
			TargetMet:           targetMet,
			EarlyTermination:    earlyTermination,
			InitialBestDeltaE:   initialBest,
			FinalBestDeltaE:     best.value,
			ImprovementRate:     improvement,
		},
	}
}

type subsetStats struct {
	iterations       int
	initialBest      float64
	earlyTermination bool
}

// searchSubset runs the continuous ratio optimization for one paint subset.
func (s *search) searchSubset(ctx context.Context, subset []int, idx int, deadline time.Time) (*candidate, subsetStats) {
	k := len(subset)
	total, ok := s.policy.totalFor(k)
	if !ok {
		return nil, subsetStats{initialBest: math.Inf(1)}
	}
	loFrac, hiFrac := s.policy.fractionBounds(total)

	kmSub := make([]kubelka.Paint, k)
	for i, pi := range subset {
		kmSub[i] = s.km[pi]
	}
	objective := func(x []float64) float64 {
		f := make([]float64, len(x))
		copy(f, x)
		kubelka.Normalize(f)
		var penalty float64
		for _, v := range f {
			if v < loFrac {
				penalty += loFrac - v
			}
			if v > hiFrac {
				penalty += v - hiFrac
			}
		}
		m := kubelka.Mix(kmSub, f)
		return lab.DeltaE2000(s.target, m.Color) + 1000*penalty
	}

	uniform := make([]float64, k)
	for i := range uniform {
		uniform[i] = 1 / float64(k)
	}
	result := de.Run(ctx, de.Config{
		Dim:       k,
		Objective: objective,
		PopSize:   s.o.popSize,
		Target:    s.accuracyTarget,
		Deadline:  deadline,
		Workers:   s.o.workers,
		Seed:      s.seed + uint64(idx)*0x9e3779b97f4a7c15,
		Init:      [][]float64{kubelka.OptimizeRatios(s.target, kmSub, 12), uniform},
	})
	stats := subsetStats{
		iterations:       result.Generations,
		initialBest:      result.InitialBest,
		earlyTermination: result.EarlyTermination,
	}
	bestX := result.Best
	bestValue := result.BestValue

	if s.algorithm == AlgorithmTPEHybrid && !result.EarlyTermination && !result.TargetMet {
		history := make([]tpe.Observation, len(result.History))
		for i, h := range result.History {
			history[i] = tpe.Observation{X: h.X, Value: h.Value}
		}
		refined := tpe.Refine(ctx, tpe.Config{
			Dim:       k,
			Objective: objective,
			Target:    s.accuracyTarget,
			Deadline:  deadline,
			Seed:      s.seed ^ uint64(idx+1),
		}, history)
		stats.iterations += refined.Rounds
		if refined.EarlyTermination {
			stats.earlyTermination = true
		}
		if refined.BestValue < bestValue {
			bestX = refined.Best
			bestValue = refined.BestValue
		}
		bestX, bestValue = s.polish(objective, bestX, bestValue, deadline)
	}

	// Final exact evaluation: project into the component-volume box and
	// re-predict without penalty terms.
	fractions := slices.Clone(bestX)
	kubelka.Normalize(fractions)
	projectBox(fractions, loFrac, hiFrac)
	subset, fractions, kmSub = s.pruneTrace(subset, fractions, kmSub, loFrac, total)
	mix := kubelka.Mix(kmSub, fractions)
	return &candidate{
		value:     lab.DeltaE2000(s.target, mix.Color),
		subset:    subset,
		fractions: fractions,
		total:     total,
		mix:       mix,
	}, stats
}

// polish runs a short Nelder-Mead descent from the incumbent.
func (s *search) polish(objective func([]float64) float64, x []float64, value float64, deadline time.Time) ([]float64, float64) {
	settings := &optimize.Settings{MajorIterations: 200}
	if remaining := time.Until(deadline); remaining > 0 {
		settings.Runtime = remaining
	} else {
		return x, value
	}
	problem := optimize.Problem{Func: objective}
	res, err := optimize.Minimize(problem, slices.Clone(x), settings, &optimize.NelderMead{})
	if err != nil || res == nil || res.F >= value {
		return x, value
	}
	return res.X, res.F
}

// pruneTrace removes trace components (well under a dispensable volume)
// when no minimum component volume is in force, keeping at least two paints.
func (s *search) pruneTrace(subset []int, fractions []float64, kmSub []kubelka.Paint, loFrac, total float64) ([]int, []float64, []kubelka.Paint) {
	if loFrac > 0 {
		return subset, fractions, kmSub
	}
	const minTraceML = 0.005
	for len(fractions) > 2 {
		i := floats.MinIdx(fractions)
		if fractions[i]*total >= minTraceML {
			break
		}
		subset = slices.Delete(slices.Clone(subset), i, i+1)
		fractions = slices.Delete(slices.Clone(fractions), i, i+1)
		kmSub = slices.Delete(slices.Clone(kmSub), i, i+1)
		kubelka.Normalize(fractions)
	}
	return subset, fractions, kmSub
}

// better implements the tie-break policy: lower delta E; within tolerance,
// fewer paints, then larger minimum component volume, then first found.
func (c *candidate) better(than *candidate) bool {
	if than == nil {
		return true
	}
	switch {
	case c.value < than.value-tieEps:
		return true
	case c.value > than.value+tieEps:
		return false
	}
	if len(c.subset) != len(than.subset) {
		return len(c.subset) < len(than.subset)
	}
	return c.minComponentVolume() > than.minComponentVolume()+tieEps
}

func (c *candidate) minComponentVolume() float64 {
	return floats.Min(c.fractions) * c.total
}

// prefilter keeps only the paints nearest the target color once the pool
// exceeds the combinatorial limit.
func (s *search) prefilter() {
	if len(s.paints) <= s.o.prefilterLimit {
		return
	}
	ranked := slices.Clone(s.paints)
	sort.SliceStable(ranked, func(i, j int) bool {
		return lab.DeltaE2000(s.target, ranked[i].Color) < lab.DeltaE2000(s.target, ranked[j].Color)
	})
	s.warnings = append(s.warnings,
		fmt.Sprintf("candidate pool reduced from %d to %d paints by color proximity", len(s.paints), s.o.prefilterLimit))
	s.paints = ranked[:s.o.prefilterLimit]
}

func (s *search) checkChromaticCoverage() {
	var maxChroma float64
	for _, p := range s.paints {
		maxChroma = math.Max(maxChroma, p.Color.Chroma())
	}
	if c := s.target.Chroma(); c > maxChroma+chromaMargin {
		s.warnings = append(s.warnings, fmt.Sprintf(
			"target chroma %.1f exceeds the chromatic coverage of the candidate paints (max chroma %.1f); the best match will be muted",
			c, maxChroma))
	}
}

// enumerateSubsets lists paint index combinations for every feasible subset
// size, smallest first, truncated at the combination cap.
func (s *search) enumerateSubsets() [][]int {
	var subsets [][]int
	n := len(s.paints)
	for k := MinFormulaPaints; k <= min(s.maxCount, n); k++ {
		if _, ok := s.policy.totalFor(k); !ok {
			continue
		}
		for _, c := range combin.Combinations(n, k) {
			if len(subsets) >= s.o.combinationCap {
				return subsets
			}
			subsets = append(subsets, c)
		}
	}
	return subsets
}

func (s *search) buildFormula(c *candidate) *Formula {
	ratios := make([]PaintRatio, len(c.subset))
	for i, pi := range c.subset {
		volume := math.Round(c.fractions[i]*c.total*100) / 100
		ratios[i] = PaintRatio{
			PaintID:    s.paints[pi].ID,
			VolumeML:   volume,
			Percentage: volume / c.total * 100,
		}
	}
	sort.SliceStable(ratios, func(i, j int) bool { return ratios[i].VolumeML > ratios[j].VolumeML })
	return &Formula{
		PaintRatios:      ratios,
		TotalVolume:      c.total,
		PredictedColor:   c.mix.Color,
		DeltaE:           c.value,
		AccuracyRating:   RatingForDeltaE(c.value),
		MixingComplexity: ComplexityForCount(len(ratios)),
		KubelkaMunkK:     c.mix.K,
		KubelkaMunkS:     c.mix.S,
		Opacity:          c.mix.Opacity,
	}
}

// volumePolicy is the allowed total-volume band plus per-component bounds.
type volumePolicy struct {
	bandLo, bandHi   float64
	minComp, maxComp float64
}

func newVolumePolicy(vc *VolumeConstraints) volumePolicy {
	if vc == nil {
		return volumePolicy{
			bandLo:  DefaultTotalVolumeML,
			bandHi:  DefaultTotalVolumeML,
			maxComp: math.Inf(1),
		}
	}
	p := volumePolicy{bandLo: vc.MinTotalVolumeML, bandHi: vc.MaxTotalVolumeML, maxComp: math.Inf(1)}
	if !vc.AllowScaling {
		pinned := clampF(DefaultTotalVolumeML, p.bandLo, p.bandHi)
		p.bandLo, p.bandHi = pinned, pinned
	}
	if vc.MinimumComponentVolumeML != nil {
		p.minComp = *vc.MinimumComponentVolumeML
	}
	if vc.MaximumComponentVolumeML != nil {
		p.maxComp = *vc.MaximumComponentVolumeML
	}
	return p
}

// totalFor picks the total volume for a subset of k paints, or reports that
// no total inside the band can satisfy the per-component bounds.
func (p volumePolicy) totalFor(k int) (float64, bool) {
	lo := math.Max(p.bandLo, float64(k)*p.minComp)
	hi := p.bandHi
	if !math.IsInf(p.maxComp, 1) {
		hi = math.Min(hi, float64(k)*p.maxComp)
	}
	if lo > hi+1e-9 {
		return 0, false
	}
	return clampF(DefaultTotalVolumeML, lo, hi), true
}

func (p volumePolicy) fractionBounds(total float64) (lo, hi float64) {
	lo = 0
	if p.minComp > 0 {
		lo = p.minComp / total
	}
	hi = 1.0
	if !math.IsInf(p.maxComp, 1) {
		hi = math.Min(1, p.maxComp/total)
	}
	return lo, hi
}

// projectBox moves a normalized fraction vector into the box [lo,hi]^k
// while preserving the sum of 1, by proportional redistribution.
func projectBox(f []float64, lo, hi float64) {
	for range 32 {
		for i := range f {
			f[i] = clampF(f[i], lo, hi)
		}
		sum := floats.Sum(f)
		switch {
		case math.Abs(sum-1) < 1e-9:
			return
		case sum < 1:
			var room float64
			for _, v := range f {
				room += hi - v
			}
			if room <= 0 {
				return
			}
			d := 1 - sum
			for i := range f {
				f[i] += d * (hi - f[i]) / room
			}
		default:
			var room float64
			for _, v := range f {
				room += v - lo
			}
			if room <= 0 {
				return
			}
			d := sum - 1
			for i := range f {
				f[i] -= d * (f[i] - lo) / room
			}
		}
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
