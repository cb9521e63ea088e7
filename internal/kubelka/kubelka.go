// Package kubelka implements the Kubelka-Munk optical paint-mixing model.
//
// Each paint is characterized by a single-constant absorption coefficient K
// and scattering coefficient S. Mixing blends K and S linearly by volume
// fraction (weighted by tinting strength), then inverts K/S = (1-R)^2/(2R)
// back to a reflectance and maps it to a predicted LAB color. This is the
// standard first-order single-wavelength approximation; multi-wavelength
// mixing is intentionally out of scope.
package kubelka

import (
	"math"

	"github.com/paintmixr/paintmix/lab"
	"gonum.org/v1/gonum/floats"
)

// Paint holds the optical parameters of a single paint.
type Paint struct {
	K               float64 // absorption coefficient, [0,1]
	S               float64 // scattering coefficient, [0,1]
	Opacity         float64 // [0,1]
	TintingStrength float64 // [0,1]
	Color           lab.Color
}

// Mixture is the predicted optical result of physically mixing paints.
type Mixture struct {
	Color   lab.Color
	K, S    float64
	Opacity float64
}

const epsKS = 1e-9

// Normalize clamps negative fractions to zero and rescales the slice in
// place so it sums to 1. A slice with no positive mass becomes uniform.
func Normalize(fractions []float64) {
	for i, f := range fractions {
		if f < 0 || math.IsNaN(f) {
			fractions[i] = 0
		}
	}
	sum := floats.Sum(fractions)
	if sum <= 0 {
		for i := range fractions {
			fractions[i] = 1 / float64(len(fractions))
		}
		return
	}
	floats.Scale(1/sum, fractions)
}

// Mix predicts the color of mixing paints at the given volume fractions.
// Fractions are renormalized to sum to 1 before prediction; len(fractions)
// must equal len(paints).
func Mix(paints []Paint, fractions []float64) Mixture {
	f := make([]float64, len(fractions))
	copy(f, fractions)
	Normalize(f)

	// Optical weights: volume fraction scaled by tinting strength to model
	// pigment concentration effects. If every strength is zero the plain
	// volume fractions are used.
	w := make([]float64, len(f))
	for i, p := range paints {
		w[i] = f[i] * p.TintingStrength
	}
	if floats.Sum(w) <= 0 {
		copy(w, f)
	}
	Normalize(w)

	var m Mixture
	for i, p := range paints {
		m.K += w[i] * p.K
		m.S += w[i] * p.S
		m.Opacity += f[i] * p.Opacity
		m.Color.A += w[i] * p.Color.A
		m.Color.B += w[i] * p.Color.B
	}
	m.Color.L = lab.LightnessFromY(ReflectanceFromKS(m.K, m.S))
	m.Color = lab.Clamp(m.Color)
	return m
}

// ReflectanceFromKS inverts the Kubelka-Munk relation K/S = (1-R)^2/(2R),
// returning the reflectance R in [0,1]. A non-scattering film reflects
// nothing; a non-absorbing film reflects fully.
func ReflectanceFromKS(k, s float64) float64 {
	if s < epsKS {
		return 0
	}
	if k < epsKS {
		return 1
	}
	q := k / s
	r := 1 + q - math.Sqrt(q*q+2*q)
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// KSFromReflectance is the forward Kubelka-Munk ratio (1-R)^2/(2R).
func KSFromReflectance(r float64) float64 {
	if r < epsKS {
		r = epsKS
	}
	return (1 - r) * (1 - r) / (2 * r)
}
