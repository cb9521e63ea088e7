package de

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sphere has its minimum 0 at (0.3, 0.6, 0.9).
func sphere(x []float64) float64 {
	centers := [3]float64{0.3, 0.6, 0.9}
	var sum float64
	for i, v := range x {
		d := v - centers[i]
		sum += d * d
	}
	return sum
}

func TestRunConvergesOnSphere(t *testing.T) {
	res := Run(context.Background(), Config{
		Dim:            3,
		Objective:      sphere,
		MaxGenerations: 200,
		Target:         1e-5,
		Seed:           42,
	})
	require.Len(t, res.Best, 3)
	assert.True(t, res.Converged)
	assert.True(t, res.TargetMet, "best value %v", res.BestValue)
	assert.InDelta(t, 0.3, res.Best[0], 0.05)
	assert.InDelta(t, 0.6, res.Best[1], 0.05)
	assert.InDelta(t, 0.9, res.Best[2], 0.05)
	assert.LessOrEqual(t, res.BestValue, res.InitialBest)
	assert.NotEmpty(t, res.History)
}

func TestRunSeedDeterminism(t *testing.T) {
	cfg := Config{Dim: 2, Objective: sphere, MaxGenerations: 30, Seed: 7, Workers: 1}
	a := Run(context.Background(), cfg)
	b := Run(context.Background(), cfg)
	assert.Equal(t, a.BestValue, b.BestValue)
	assert.Equal(t, a.Best, b.Best)
	assert.Equal(t, a.Generations, b.Generations)
}

func TestRunExpiredDeadlineStillEvaluatesInitialPopulation(t *testing.T) {
	res := Run(context.Background(), Config{
		Dim:       2,
		Objective: sphere,
		Deadline:  time.Now().Add(-time.Second),
		Seed:      1,
	})
	assert.True(t, res.EarlyTermination)
	assert.False(t, res.Converged)
	assert.NotNil(t, res.Best, "best-effort result must exist")
	assert.Positive(t, res.Evaluations)
	assert.Zero(t, res.Generations)
}

func TestRunSeedMembersEnterPopulation(t *testing.T) {
	seeded := []float64{0.3, 0.6, 0.9}
	res := Run(context.Background(), Config{
		Dim:            3,
		Objective:      sphere,
		MaxGenerations: 1,
		Seed:           3,
		Init:           [][]float64{seeded},
	})
	// The seeded member is the global optimum, so it must be the best found.
	assert.InDelta(t, 0, res.InitialBest, 1e-12)
}
