// Package lab implements color math in the CIE L*a*b* color space.
//
// Colors are calculated relative to standard illuminant D65 and are
// comprised of three components:
//
//	+-----------+--------------+-------------+
//	| Component | Description  |    Range    |
//	+-----------+--------------+-------------+
//	| l         | lightness    | [   0, 100] |
//	| a         | green-red    | [-128, 127] |
//	| b         | blue-yellow  | [-128, 127] |
//	+-----------+--------------+-------------+
//
// sRGB <-> XYZ matrices and companding from:
// http://www.brucelindbloom.com/index.html?Eqn_RGB_to_XYZ.html
package lab

import (
	"fmt"
	"math"
	"strconv"
)

// Color is an immutable CIE L*a*b* value. Transformations return new values.
type Color struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// D65 reference white tristimulus values (2 degree observer).
const (
	refX = 95.047
	refY = 100.000
	refZ = 108.883
)

const (
	cieEpsilon = 0.008856 // (6/29)^3
	cieKappa   = 7.787    // (1/3)(29/6)^2
)

// Chroma returns the chroma C* = sqrt(a^2 + b^2).
func (c Color) Chroma() float64 { return math.Hypot(c.A, c.B) }

// Clamp returns c with each component forced into its valid range.
func Clamp(c Color) Color {
	return Color{
		L: clamp(c.L, 0, 100),
		A: clamp(c.A, -128, 127),
		B: clamp(c.B, -128, 127),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// fCIE is the cube-root lightness function used by the LAB transform,
// with the linear segment below cieEpsilon.
func fCIE(t float64) float64 {
	if t > cieEpsilon {
		return math.Cbrt(t)
	}
	return cieKappa*t + 16.0/116.0
}

func fCIEInv(t float64) float64 {
	if t3 := t * t * t; t3 > cieEpsilon {
		return t3
	}
	return (t - 16.0/116.0) / cieKappa
}

// LightnessFromY converts a luminance factor Y in [0,1] to CIE L*.
func LightnessFromY(y float64) float64 {
	return 116*fCIE(y) - 16
}

// Hex renders the color as a 6-digit sRGB hex string (#rrggbb).
// Out-of-gamut values are clamped to the sRGB cube.
func (c Color) Hex() string {
	r, g, b := c.sRGB()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// FromHex parses a #rrggbb (or rrggbb) string into a LAB color.
func FromHex(s string) (Color, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q: want 6 digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return fromRGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

func (c Color) sRGB() (uint8, uint8, uint8) {
	// LAB -> XYZ
	fy := (c.L + 16) / 116
	fx := fy + c.A/500
	fz := fy - c.B/200
	x := refX * fCIEInv(fx)
	y := refY * fCIEInv(fy)
	z := refZ * fCIEInv(fz)

	// XYZ -> linear sRGB
	x /= 100
	y /= 100
	z /= 100
	r := 3.2406*x - 1.5372*y - 0.4986*z
	g := -0.9689*x + 1.8758*y + 0.0415*z
	b := 0.0557*x - 0.2040*y + 1.0570*z

	return compand(r), compand(g), compand(b)
}

func fromRGB(r8, g8, b8 uint8) Color {
	r := linearize(float64(r8) / 255)
	g := linearize(float64(g8) / 255)
	b := linearize(float64(b8) / 255)

	// linear sRGB -> XYZ (D65)
	x := r*0.4124 + g*0.3576 + b*0.1805
	y := r*0.2126 + g*0.7152 + b*0.0722
	z := r*0.0193 + g*0.1192 + b*0.9505

	fx := fCIE(x * 100 / refX)
	fy := fCIE(y * 100 / refY)
	fz := fCIE(z * 100 / refZ)
	return Clamp(Color{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	})
}

// compand applies sRGB gamma companding and quantizes to 8 bits.
func compand(v float64) uint8 {
	if v <= 0.0031308 {
		v *= 12.92
	} else {
		v = 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}

func linearize(v float64) float64 {
	if v > 0.04045 {
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return v / 12.92
}
