package paintmix

import "github.com/paintmixr/paintmix/lab"

// Mode selects the default accuracy target, paint count and time budget.
type Mode string

const (
	ModeStandard Mode = "standard"
	ModeEnhanced Mode = "enhanced"
)

// Algorithm names the ratio-search strategy.
type Algorithm string

const (
	// AlgorithmAuto picks between the two concrete algorithms based on
	// candidate-pool size and time budget.
	AlgorithmAuto Algorithm = "auto"
	// AlgorithmDifferentialEvolution is a population-based stochastic search.
	AlgorithmDifferentialEvolution Algorithm = "differential_evolution"
	// AlgorithmTPEHybrid refines differential evolution's best candidates
	// with a tree-structured Parzen estimator and a Nelder-Mead polish.
	AlgorithmTPEHybrid Algorithm = "tpe_hybrid"
)

// KMCoefficients are the Kubelka-Munk absorption (k) and scattering (s)
// coefficients of a paint, both in [0,1].
type KMCoefficients struct {
	K float64 `json:"k"`
	S float64 `json:"s"`
}

// Paint is one candidate paint from a user's library. It is read-only input
// to the optimizer and is never mutated by it.
type Paint struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Brand           string         `json:"brand"`
	Color           lab.Color      `json:"color"`
	Opacity         float64        `json:"opacity"`
	TintingStrength float64        `json:"tintingStrength"`
	KubelkaMunk     KMCoefficients `json:"kubelkaMunk"`
}

// VolumeConstraints bound the total formula volume and, optionally, each
// component's volume. Max must be >= min at both levels.
type VolumeConstraints struct {
	MinTotalVolumeML         float64  `json:"min_total_volume_ml"`
	MaxTotalVolumeML         float64  `json:"max_total_volume_ml"`
	MinimumComponentVolumeML *float64 `json:"minimum_component_volume_ml,omitempty"`
	MaximumComponentVolumeML *float64 `json:"maximum_component_volume_ml,omitempty"`
	// AllowScaling lets the optimizer choose any total volume inside
	// [min, max]; when false the total is pinned to the clamped default
	// preference.
	AllowScaling bool `json:"allow_scaling"`
}

// PaintRatio is one component of a formula. Percentage is derived from
// volume: volume_ml / totalVolume * 100.
type PaintRatio struct {
	PaintID    string  `json:"paint_id"`
	VolumeML   float64 `json:"volume_ml"`
	Percentage float64 `json:"percentage"`
}

// AccuracyRating buckets a formula's delta E.
type AccuracyRating string

const (
	RatingExcellent  AccuracyRating = "excellent"
	RatingGood       AccuracyRating = "good"
	RatingAcceptable AccuracyRating = "acceptable"
	RatingPoor       AccuracyRating = "poor"
)

// RatingForDeltaE buckets a delta E value: <=1 excellent, <=2 good,
// <=5 acceptable, otherwise poor.
func RatingForDeltaE(deltaE float64) AccuracyRating {
	switch {
	case deltaE <= 1.0:
		return RatingExcellent
	case deltaE <= 2.0:
		return RatingGood
	case deltaE <= 5.0:
		return RatingAcceptable
	}
	return RatingPoor
}

// MixingComplexity buckets a formula's paint count.
type MixingComplexity string

const (
	ComplexitySimple   MixingComplexity = "simple"
	ComplexityModerate MixingComplexity = "moderate"
	ComplexityComplex  MixingComplexity = "complex"
)

// ComplexityForCount buckets a paint count: 2 simple, 3 moderate,
// 4-5 complex.
func ComplexityForCount(paints int) MixingComplexity {
	switch paints {
	case 2:
		return ComplexitySimple
	case 3:
		return ComplexityModerate
	}
	return ComplexityComplex
}

// Formula is the immutable result snapshot of a successful optimization run.
type Formula struct {
	PaintRatios      []PaintRatio     `json:"paintRatios"`
	TotalVolume      float64          `json:"totalVolume"`
	PredictedColor   lab.Color        `json:"predictedColor"`
	DeltaE           float64          `json:"deltaE"`
	AccuracyRating   AccuracyRating   `json:"accuracyRating"`
	MixingComplexity MixingComplexity `json:"mixingComplexity"`
	KubelkaMunkK     float64          `json:"kubelkaMunkK"`
	KubelkaMunkS     float64          `json:"kubelkaMunkS"`
	Opacity          float64          `json:"opacity"`
}

// Metrics describes the search process that produced a formula.
type Metrics struct {
	// TimeElapsedMS is the wall-clock duration of the run in milliseconds.
	TimeElapsedMS       float64   `json:"timeElapsed"`
	IterationsCompleted int       `json:"iterationsCompleted"`
	AlgorithmUsed       Algorithm `json:"algorithmUsed"`
	ConvergenceAchieved bool      `json:"convergenceAchieved"`
	TargetMet           bool      `json:"targetMet"`
	EarlyTermination    bool      `json:"earlyTermination"`
	InitialBestDeltaE   float64   `json:"initialBestDeltaE"`
	FinalBestDeltaE     float64   `json:"finalBestDeltaE"`
	// ImprovementRate is (initial-final)/initial, 0 when the initial best
	// is already 0.
	ImprovementRate float64 `json:"improvementRate"`
}

// Request is the optimization request contract. Paint-id references are
// resolved to full Paint records by the caller before reaching the core.
type Request struct {
	TargetColor       lab.Color          `json:"targetColor"`
	AvailablePaints   []Paint            `json:"availablePaints"`
	Mode              Mode               `json:"mode"`
	VolumeConstraints *VolumeConstraints `json:"volumeConstraints,omitempty"`
	// MaxPaintCount bounds formula size, 2..5; 0 selects the mode default.
	MaxPaintCount int `json:"maxPaintCount,omitempty"`
	// TimeLimitMS is the wall-clock budget in milliseconds, at most 30000;
	// 0 selects the mode default.
	TimeLimitMS int `json:"timeLimit,omitempty"`
	// AccuracyTarget is the delta E at which the search stops; 0 selects
	// the mode default.
	AccuracyTarget float64 `json:"accuracyTarget,omitempty"`
}

// Response is the optimization response contract. Success is false only for
// infeasible constraint combinations; a timed-out search still succeeds with
// its best-effort formula and EarlyTermination set in the metrics.
type Response struct {
	Success  bool     `json:"success"`
	Formula  *Formula `json:"formula"`
	Metrics  *Metrics `json:"metrics"`
	Warnings []string `json:"warnings"`
	Error    string   `json:"error,omitempty"`
}
