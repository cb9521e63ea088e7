package lab_test

import (
	"math"
	"testing"

	"github.com/paintmixr/paintmix/lab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference pairs from Sharma, Wu & Dalal (2005), table 1.
func TestDeltaE2000ReferenceVectors(t *testing.T) {
	test := []struct {
		name     string
		c1, c2   lab.Color
		expected float64
	}{
		{"blue_chroma_1", lab.Color{L: 50, A: 2.6772, B: -79.7751}, lab.Color{L: 50, A: 0, B: -82.7485}, 2.0425},
		{"blue_chroma_2", lab.Color{L: 50, A: 3.1571, B: -77.2803}, lab.Color{L: 50, A: 0, B: -82.7485}, 2.8615},
		{"blue_chroma_3", lab.Color{L: 50, A: 2.8361, B: -74.0200}, lab.Color{L: 50, A: 0, B: -82.7485}, 3.4412},
		{"near_gray", lab.Color{L: 50, A: 0, B: 0}, lab.Color{L: 50, A: -1, B: 2}, 2.3669},
		{"hue_flip", lab.Color{L: 50, A: 2.4900, B: -0.0010}, lab.Color{L: 50, A: -2.4900, B: 0.0009}, 7.1792},
		{"green", lab.Color{L: 60.2574, A: -34.0099, B: 36.2677}, lab.Color{L: 60.4626, A: -34.1751, B: 39.4387}, 1.2644},
		{"cyan", lab.Color{L: 63.0109, A: -31.0961, B: -5.8663}, lab.Color{L: 62.8187, A: -29.7946, B: -4.0864}, 1.2630},
		{"light_neutral", lab.Color{L: 90.8027, A: -2.0831, B: 1.4410}, lab.Color{L: 91.1528, A: -1.6435, B: 0.0447}, 1.4441},
		{"near_black_1", lab.Color{L: 6.7747, A: -0.2908, B: -2.4247}, lab.Color{L: 5.8714, A: -0.0985, B: -2.2286}, 0.6377},
		{"near_black_2", lab.Color{L: 2.0776, A: 0.0795, B: -1.1350}, lab.Color{L: 0.9033, A: -0.0636, B: -0.5514}, 0.9082},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, lab.DeltaE2000(tt.c1, tt.c2), 0.01)
		})
	}
}

func TestDeltaE2000SymmetryAndIdentity(t *testing.T) {
	colors := []lab.Color{
		{L: 0, A: 0, B: 0},
		{L: 100, A: 0, B: 0},
		{L: 50, A: 25, B: 15},
		{L: 33.3, A: -40, B: 60},
		{L: 75, A: 120, B: -110},
		{L: 50, A: 0.001, B: -0.001}, // near-zero chroma
	}
	for _, a := range colors {
		assert.Zero(t, lab.DeltaE2000(a, a), "identity for %+v", a)
		for _, b := range colors {
			assert.Equal(t, lab.DeltaE2000(a, b), lab.DeltaE2000(b, a),
				"symmetry for %+v vs %+v", a, b)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	// In-gamut colors are generated from hex so the LAB values are known to
	// be representable in sRGB.
	hexes := []string{
		"#000000", "#ffffff", "#ff0000", "#00ff00", "#0000ff",
		"#808080", "#123456", "#abcdef", "#c08040", "#4b0082",
		"#f5deb3", "#2e8b57", "#708090", "#e0115f",
	}
	for _, h := range hexes {
		t.Run(h, func(t *testing.T) {
			c, err := lab.FromHex(h)
			require.NoError(t, err)

			back, err := lab.FromHex(c.Hex())
			require.NoError(t, err)
			assert.InDelta(t, c.L, back.L, 1.0)
			assert.InDelta(t, c.A, back.A, 1.0)
			assert.InDelta(t, c.B, back.B, 1.0)
		})
	}
}

func TestFromHexKnownValues(t *testing.T) {
	white, err := lab.FromHex("#ffffff")
	require.NoError(t, err)
	assert.InDelta(t, 100, white.L, 0.1)
	assert.InDelta(t, 0, white.A, 0.1)
	assert.InDelta(t, 0, white.B, 0.1)

	black, err := lab.FromHex("000000")
	require.NoError(t, err)
	assert.InDelta(t, 0, black.L, 0.1)

	_, err = lab.FromHex("#12345")
	assert.Error(t, err)
	_, err = lab.FromHex("#12345g")
	assert.Error(t, err)
}

func TestClamp(t *testing.T) {
	c := lab.Clamp(lab.Color{L: 120, A: -200, B: 300})
	assert.Equal(t, lab.Color{L: 100, A: -128, B: 127}, c)
}

func TestLightnessFromY(t *testing.T) {
	assert.InDelta(t, 100, lab.LightnessFromY(1), 1e-9)
	assert.InDelta(t, 0, lab.LightnessFromY(0), 1e-6)
	assert.True(t, math.Abs(lab.LightnessFromY(0.5)-76.07) < 0.1)
}
