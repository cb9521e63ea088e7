package kubelka

import "github.com/paintmixr/paintmix/lab"

// OptimizeRatios runs a deterministic shrinking pattern search over the
// ratio simplex, minimizing the CIEDE2000 distance between the predicted
// mix and the target. It is the lightweight local search used for
// alternative-formula generation and for seeding the population search.
//
// steps bounds the number of shrink rounds; 0 selects the default.
func OptimizeRatios(target lab.Color, paints []Paint, steps int) []float64 {
	if steps <= 0 {
		steps = 24
	}
	n := len(paints)
	best := make([]float64, n)
	for i := range best {
		best[i] = 1 / float64(n)
	}
	bestErr := predictErr(target, paints, best)

	trial := make([]float64, n)
	step := 0.25
	for range steps {
		improved := false
		for i := range n {
			for _, dir := range [2]float64{step, -step} {
				copy(trial, best)
				trial[i] += dir
				if trial[i] < 0 {
					continue
				}
				if e := predictErr(target, paints, trial); e < bestErr {
					Normalize(trial)
					bestErr = e
					copy(best, trial)
					improved = true
				}
			}
		}
		if !improved {
			step /= 2
			if step < 1e-4 {
				break
			}
		}
	}
	Normalize(best)
	return best
}

func predictErr(target lab.Color, paints []Paint, fractions []float64) float64 {
	return lab.DeltaE2000(target, Mix(paints, fractions).Color)
}
