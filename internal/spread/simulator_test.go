package spread_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
	"github.com/couchcryptid/fire-nowcast-engine/internal/spread"
)

func seededState(h, w, row, col int, strength float32) *domain.Grid {
	g := domain.NewGrid(h, w, testTransform)
	g.Set(row, col, strength)
	return g
}

func TestPropagateNeighborhoods(t *testing.T) {
	potential := constGrid(5, 5, 0.5)

	t.Run("4-neighbor cross", func(t *testing.T) {
		state := seededState(5, 5, 2, 2, 1)
		ignited := spread.Propagate(state, potential, 0.3, 4)

		assert.Equal(t, 4, ignited)
		for _, cell := range [][2]int{{1, 2}, {3, 2}, {2, 1}, {2, 3}} {
			assert.Equal(t, float32(0.5), state.At(cell[0], cell[1]))
		}
		assert.Equal(t, float32(0), state.At(1, 1), "diagonal must not ignite with 4-connectivity")
	})

	t.Run("8-neighbor block", func(t *testing.T) {
		state := seededState(5, 5, 2, 2, 1)
		ignited := spread.Propagate(state, potential, 0.3, 8)

		assert.Equal(t, 8, ignited)
		assert.Equal(t, float32(0.5), state.At(1, 1))
		assert.Equal(t, 9, burnedCells(state))
	})

	t.Run("clipped at grid edge", func(t *testing.T) {
		state := seededState(5, 5, 0, 0, 1)
		ignited := spread.Propagate(state, potential, 0.3, 8)

		assert.Equal(t, 3, ignited)
	})
}

func TestPropagateThresholdBlocks(t *testing.T) {
	potential := constGrid(5, 5, 0.2)
	state := seededState(5, 5, 2, 2, 1)

	ignited := spread.Propagate(state, potential, 0.3, 8)

	assert.Equal(t, 0, ignited)
	assert.Equal(t, 1, burnedCells(state))
}

func TestPropagateIntensityFixedAtIgnition(t *testing.T) {
	potential := constGrid(3, 3, 0.7)
	state := seededState(3, 3, 1, 1, 1)

	spread.Propagate(state, potential, 0.3, 8)
	assert.Equal(t, float32(0.7), state.At(0, 0), "ignited cell takes its potential as intensity")
	assert.Equal(t, float32(1.0), state.At(1, 1), "seed intensity is never re-evaluated")

	// A second step must not rewrite already-burned cells.
	spread.Propagate(state, potential, 0.3, 8)
	assert.Equal(t, float32(0.7), state.At(0, 0))
}

func TestPropagateMonotonic(t *testing.T) {
	// Checkerboard-ish potential: some cells spreadable, some not.
	potential := constGrid(8, 8, 0)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if (r+c)%3 != 0 {
				potential.Set(r, c, 0.6)
			}
		}
	}
	state := seededState(8, 8, 4, 4, 1)

	prev := state.Clone()
	for step := 0; step < 8; step++ {
		spread.Propagate(state, potential, 0.3, 8)
		for i, v := range prev.Data() {
			if v > 0 {
				assert.Equal(t, v, state.Data()[i], "burned cell reset at step %d cell %d", step, i)
			}
		}
		assert.GreaterOrEqual(t, burnedCells(state), burnedCells(prev))
		prev = state.Clone()
	}
}

func TestSimulateConvergesAndPeakEqualsFinal(t *testing.T) {
	potential := constGrid(6, 6, 0.5)
	cfg := spread.DefaultConfig()
	cfg.SpreadThreshold = 0.3
	cfg.NTimesteps = 50 // far beyond convergence; extra steps are no-ops

	final, peak := spread.Simulate(seededState(6, 6, 3, 3, 1), potential, cfg)

	assert.Equal(t, 36, burnedCells(final), "uniform potential floods the grid")
	assert.Equal(t, final.Data(), peak.Data(), "monotonic rule: peak equals final state")
}

func TestSimulateZeroTimesteps(t *testing.T) {
	potential := constGrid(4, 4, 0.9)
	cfg := spread.DefaultConfig()
	cfg.NTimesteps = 0

	state := seededState(4, 4, 1, 1, 1)
	final, peak := spread.Simulate(state, potential, cfg)

	require.Equal(t, 1, burnedCells(final), "zero timesteps leaves the seed untouched")
	assert.Equal(t, final.Data(), peak.Data())
}

func TestSimulateGrowthRing(t *testing.T) {
	// With 8-connectivity and uniform spreadable potential, the burned
	// region grows by one ring per timestep: a (2t+1)^2 block.
	potential := constGrid(11, 11, 0.5)
	cfg := spread.DefaultConfig()
	cfg.NTimesteps = 3

	final, _ := spread.Simulate(seededState(11, 11, 5, 5, 1), potential, cfg)

	assert.Equal(t, 49, burnedCells(final))
	for r := 0; r < 11; r++ {
		for c := 0; c < 11; c++ {
			inBlock := r >= 2 && r <= 8 && c >= 2 && c <= 8
			if inBlock {
				assert.Positive(t, final.At(r, c), "cell (%d,%d) should be burned", r, c)
			} else {
				assert.Zero(t, final.At(r, c), "cell (%d,%d) should be unburned", r, c)
			}
		}
	}
}
