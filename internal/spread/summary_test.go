package spread_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
	"github.com/couchcryptid/fire-nowcast-engine/internal/spread"
)

func TestSummarize(t *testing.T) {
	prob := domain.NewGrid(2, 2, testTransform)
	prob.Set(0, 0, 1.0)
	prob.Set(0, 1, 0.6)
	prob.Set(1, 0, 0.5) // not strictly above the 0.5 threshold
	prob.Set(1, 1, 0.1)

	s := spread.Summarize(prob)

	assert.InDelta(t, 1.0, s.MaxProbability, 1e-9)
	assert.InDelta(t, 0.55, s.MeanProbability, 1e-6)
	assert.Equal(t, 2, s.BurnedCells)
	assert.InDelta(t, 2*testTransform.CellArea(), s.AffectedArea, 1e-12)
}

func TestSummarizeAllZero(t *testing.T) {
	s := spread.Summarize(domain.NewGrid(3, 3, testTransform))

	assert.Zero(t, s.MaxProbability)
	assert.Zero(t, s.MeanProbability)
	assert.Zero(t, s.BurnedCells)
	assert.Zero(t, s.AffectedArea)
}
