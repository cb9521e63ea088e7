package lab

import "math"

// DeltaE2000 computes the CIEDE2000 color difference between two LAB colors.
//
// Follows Sharma, Wu & Dalal, "The CIEDE2000 Color-Difference Formula:
// Implementation Notes, Supplementary Test Data, and Mathematical
// Observations" (2005). All weighting factors (kL, kC, kH) are 1.
//
// The function is symmetric and returns 0 for identical colors. When either
// chroma is zero the hue angle is undefined; by convention the hue
// difference is treated as 0.
func DeltaE2000(c1, c2 Color) float64 {
	const pow25to7 = 6103515625.0 // 25^7

	chr1 := math.Hypot(c1.A, c1.B)
	chr2 := math.Hypot(c2.A, c2.B)
	cBar := (chr1 + chr2) / 2

	cBar7 := math.Pow(cBar, 7)
	g := 0.5 * (1 - math.Sqrt(cBar7/(cBar7+pow25to7)))

	a1p := (1 + g) * c1.A
	a2p := (1 + g) * c2.A
	c1p := math.Hypot(a1p, c1.B)
	c2p := math.Hypot(a2p, c2.B)
	h1p := hueAngle(a1p, c1.B)
	h2p := hueAngle(a2p, c2.B)

	dLp := c2.L - c1.L
	dCp := c2p - c1p

	var dhp float64
	switch {
	case c1p*c2p == 0:
		dhp = 0
	case math.Abs(h2p-h1p) <= 180:
		dhp = h2p - h1p
	case h2p-h1p > 180:
		dhp = h2p - h1p - 360
	default:
		dhp = h2p - h1p + 360
	}
	dHp := 2 * math.Sqrt(c1p*c2p) * math.Sin(rad(dhp)/2)

	lBar := (c1.L + c2.L) / 2
	cpBar := (c1p + c2p) / 2

	var hpBar float64
	switch {
	case c1p*c2p == 0:
		hpBar = h1p + h2p
	case math.Abs(h1p-h2p) <= 180:
		hpBar = (h1p + h2p) / 2
	case h1p+h2p < 360:
		hpBar = (h1p + h2p + 360) / 2
	default:
		hpBar = (h1p + h2p - 360) / 2
	}

	t := 1 -
		0.17*math.Cos(rad(hpBar-30)) +
		0.24*math.Cos(rad(2*hpBar)) +
		0.32*math.Cos(rad(3*hpBar+6)) -
		0.20*math.Cos(rad(4*hpBar-63))

	dTheta := 30 * math.Exp(-math.Pow((hpBar-275)/25, 2))
	cpBar7 := math.Pow(cpBar, 7)
	rc := 2 * math.Sqrt(cpBar7/(cpBar7+pow25to7))
	rt := -math.Sin(rad(2*dTheta)) * rc

	lm50 := (lBar - 50) * (lBar - 50)
	sl := 1 + 0.015*lm50/math.Sqrt(20+lm50)
	sc := 1 + 0.045*cpBar
	sh := 1 + 0.015*cpBar*t

	termL := dLp / sl
	termC := dCp / sc
	termH := dHp / sh
	return math.Sqrt(termL*termL + termC*termC + termH*termH + rt*termC*termH)
}

// hueAngle returns the hue angle in degrees in [0, 360), 0 when undefined.
func hueAngle(a, b float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	h := math.Atan2(b, a) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
