package bench

import (
	"context"
	"fmt"
	"testing"

	paintmix "github.com/paintmixr/paintmix"
	"github.com/paintmixr/paintmix/lab"
)

func pool(n int) []paintmix.Paint {
	paints := make([]paintmix.Paint, n)
	for i := range paints {
		t := float64(i) / float64(n-1)
		paints[i] = paintmix.Paint{
			ID:      fmt.Sprintf("paint-%02d", i),
			Color:   lab.Color{L: 100 * (1 - t), A: 40 * t, B: 40 * (1 - t)},
			Opacity: 1, TintingStrength: 0.5 + 0.5*t,
			KubelkaMunk: paintmix.KMCoefficients{K: 0.05 + 0.9*t, S: 0.95 - 0.9*t},
		}
	}
	return paints
}

func BenchmarkOptimizeStandard(b *testing.B) {
	req := paintmix.Request{
		TargetColor:     lab.Color{L: 55, A: 12, B: 18},
		AvailablePaints: pool(8),
		TimeLimitMS:     2000,
	}
	ctx := context.Background()
	b.ResetTimer()
	for b.Loop() {
		if _, err := paintmix.Optimize(ctx, req, paintmix.WithSeed(1)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDeltaE2000(b *testing.B) {
	c1 := lab.Color{L: 50, A: 2.6772, B: -79.7751}
	c2 := lab.Color{L: 50, A: 0, B: -82.7485}
	for b.Loop() {
		lab.DeltaE2000(c1, c2)
	}
}
