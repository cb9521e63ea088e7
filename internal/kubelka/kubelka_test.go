package kubelka

import (
	"testing"

	"github.com/paintmixr/paintmix/lab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	white = Paint{K: 0.01, S: 0.95, Opacity: 1, TintingStrength: 1, Color: lab.Color{L: 100}}
	black = Paint{K: 0.98, S: 0.02, Opacity: 1, TintingStrength: 1, Color: lab.Color{L: 0}}
)

func TestReflectanceRoundTrip(t *testing.T) {
	for _, r := range []float64{0.05, 0.1, 0.25, 0.5, 0.75, 0.9, 0.99} {
		q := KSFromReflectance(r)
		assert.InDelta(t, r, ReflectanceFromKS(q, 1), 1e-9, "R=%v", r)
	}
}

func TestReflectanceDegenerateCoefficients(t *testing.T) {
	assert.Equal(t, 0.0, ReflectanceFromKS(0.5, 0), "no scattering reflects nothing")
	assert.Equal(t, 1.0, ReflectanceFromKS(0, 0.5), "no absorption reflects fully")
}

func TestNormalize(t *testing.T) {
	test := []struct {
		name     string
		in       []float64
		expected []float64
	}{
		{"already_normal", []float64{0.5, 0.5}, []float64{0.5, 0.5}},
		{"rescale", []float64{2, 2}, []float64{0.5, 0.5}},
		{"negative_clamped", []float64{-1, 1, 1}, []float64{0, 0.5, 0.5}},
		{"all_zero_uniform", []float64{0, 0, 0, 0}, []float64{0.25, 0.25, 0.25, 0.25}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			Normalize(tt.in)
			require.Len(t, tt.in, len(tt.expected))
			for i := range tt.in {
				assert.InDelta(t, tt.expected[i], tt.in[i], 1e-12)
			}
		})
	}
}

func TestMixBlackFractionDarkens(t *testing.T) {
	paints := []Paint{white, black}
	prev := 101.0
	for _, fb := range []float64{0, 0.1, 0.3, 0.5, 0.7, 0.9, 1} {
		m := Mix(paints, []float64{1 - fb, fb})
		assert.Less(t, m.Color.L, prev, "black fraction %v must darken the mix", fb)
		prev = m.Color.L
	}
}

func TestMixPureComponents(t *testing.T) {
	m := Mix([]Paint{white, black}, []float64{1, 0})
	assert.Greater(t, m.Color.L, 90.0)
	m = Mix([]Paint{white, black}, []float64{0, 1})
	assert.Less(t, m.Color.L, 10.0)
}

func TestMixChromaticBlend(t *testing.T) {
	red := Paint{K: 0.4, S: 0.5, Opacity: 1, TintingStrength: 1, Color: lab.Color{L: 50, A: 60, B: 40}}
	m := Mix([]Paint{white, red}, []float64{0.5, 0.5})
	assert.InDelta(t, 30, m.Color.A, 0.5, "chromaticity blends by optical weight")
	assert.InDelta(t, 20, m.Color.B, 0.5)
}

func TestMixTintingStrengthShiftsWeight(t *testing.T) {
	weakBlack := black
	weakBlack.TintingStrength = 0.25
	strong := Mix([]Paint{white, black}, []float64{0.5, 0.5})
	weak := Mix([]Paint{white, weakBlack}, []float64{0.5, 0.5})
	assert.Greater(t, weak.Color.L, strong.Color.L,
		"a weaker black pigment must darken the mix less at equal volume")
}

func TestOptimizeRatiosImprovesOnUniform(t *testing.T) {
	target := lab.Color{L: 60}
	paints := []Paint{white, black}
	uniformErr := lab.DeltaE2000(target, Mix(paints, []float64{0.5, 0.5}).Color)

	f := OptimizeRatios(target, paints, 0)
	require.Len(t, f, 2)
	got := lab.DeltaE2000(target, Mix(paints, f).Color)
	assert.Less(t, got, uniformErr)
	assert.Less(t, got, 0.5, "pattern search should come close on a 1-D slice")
	assert.InDelta(t, 1, f[0]+f[1], 1e-9)
}
