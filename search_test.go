package paintmix

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumePolicyDefaults(t *testing.T) {
	p := newVolumePolicy(nil)
	total, ok := p.totalFor(3)
	require.True(t, ok)
	assert.Equal(t, DefaultTotalVolumeML, total)

	lo, hi := p.fractionBounds(total)
	assert.Zero(t, lo)
	assert.Equal(t, 1.0, hi)
}

func TestVolumePolicyScaling(t *testing.T) {
	minComp := 40.0
	vc := &VolumeConstraints{
		MinTotalVolumeML:         50,
		MaxTotalVolumeML:         200,
		MinimumComponentVolumeML: &minComp,
		AllowScaling:             true,
	}
	p := newVolumePolicy(vc)

	// 2 components at 40ml minimum force the total up to 100 (the default
	// preference already satisfies it).
	total, ok := p.totalFor(2)
	require.True(t, ok)
	assert.Equal(t, 100.0, total)

	// 4 components need 160ml, above the preference; the band allows it.
	total, ok = p.totalFor(4)
	require.True(t, ok)
	assert.Equal(t, 160.0, total)

	// 6 components would need 240ml, over the band.
	_, ok = p.totalFor(6)
	assert.False(t, ok)
}

func TestVolumePolicyPinnedTotal(t *testing.T) {
	vc := &VolumeConstraints{MinTotalVolumeML: 100, MaxTotalVolumeML: 100}
	p := newVolumePolicy(vc)
	total, ok := p.totalFor(2)
	require.True(t, ok)
	assert.Equal(t, 100.0, total)
}

func TestProjectBox(t *testing.T) {
	test := []struct {
		name   string
		f      []float64
		lo, hi float64
	}{
		{"raise_to_min", []float64{0.9, 0.05, 0.05}, 0.1, 1},
		{"cap_at_max", []float64{0.8, 0.1, 0.1}, 0, 0.5},
		{"already_feasible", []float64{0.4, 0.3, 0.3}, 0.1, 0.6},
		{"tight_box", []float64{1, 0, 0, 0}, 0.2, 0.3},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			projectBox(tt.f, tt.lo, tt.hi)
			var sum float64
			for _, v := range tt.f {
				assert.GreaterOrEqual(t, v, tt.lo-1e-9)
				assert.LessOrEqual(t, v, tt.hi+1e-9)
				sum += v
			}
			assert.InDelta(t, 1, sum, 1e-6)
		})
	}
}

func TestCandidateTieBreak(t *testing.T) {
	two := &candidate{value: 1.0, subset: []int{0, 1}, fractions: []float64{0.5, 0.5}, total: 100}
	three := &candidate{value: 1.0, subset: []int{0, 1, 2}, fractions: []float64{0.4, 0.3, 0.3}, total: 100}
	assert.True(t, two.better(three), "fewer paints win a delta-E tie")
	assert.False(t, three.better(two))

	balanced := &candidate{value: 1.0, subset: []int{0, 1}, fractions: []float64{0.5, 0.5}, total: 100}
	skewed := &candidate{value: 1.0, subset: []int{2, 3}, fractions: []float64{0.9, 0.1}, total: 100}
	assert.True(t, balanced.better(skewed), "larger minimum component volume wins within equal counts")
	assert.False(t, skewed.better(balanced))

	strictlyBetter := &candidate{value: 0.5, subset: []int{0, 1, 2}, fractions: []float64{0.4, 0.3, 0.3}, total: 100}
	assert.True(t, strictlyBetter.better(two), "lower delta E beats any tie-break")

	first := &candidate{value: 1.0, subset: []int{0, 1}, fractions: []float64{0.5, 0.5}, total: 100}
	second := &candidate{value: 1.0 + tieEps/2, subset: []int{2, 3}, fractions: []float64{0.5, 0.5}, total: 100}
	assert.False(t, second.better(first), "first found wins an exact tie")
}

func TestResolveAlgorithmAuto(t *testing.T) {
	o, err := New()
	require.NoError(t, err)

	assert.Equal(t, AlgorithmDifferentialEvolution, o.resolveAlgorithm(4, 30*time.Second),
		"small pools stay on differential evolution")
	assert.Equal(t, AlgorithmDifferentialEvolution, o.resolveAlgorithm(20, time.Second),
		"tight budgets stay on differential evolution")
	assert.Equal(t, AlgorithmTPEHybrid, o.resolveAlgorithm(20, 28*time.Second))

	forced, err := New(WithAlgorithm(AlgorithmDifferentialEvolution))
	require.NoError(t, err)
	assert.Equal(t, AlgorithmDifferentialEvolution, forced.resolveAlgorithm(100, time.Hour))
}
