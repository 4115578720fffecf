package spread_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fire-nowcast-engine/internal/spread"
)

func TestSpreadPotentialReferenceScenario(t *testing.T) {
	// wind speed 5/20 = 0.25, slope 10/45 ~= 0.2222, dryness (100-40)/100 = 0.6
	// potential = 0.5*0.25 + 0.3*0.2222 + 0.2*0.6 ~= 0.3117, uniform.
	f := constFields(10, 10)
	cfg := spread.DefaultConfig()

	pot := spread.SpreadPotential(f.WindU, f.WindV, f.Slope, f.RH, cfg)

	require.Equal(t, 10, pot.H)
	require.Equal(t, 10, pot.W)
	for _, v := range pot.Data() {
		assert.InDelta(t, 0.311667, float64(v), 1e-5)
	}
}

func TestSpreadPotentialClipping(t *testing.T) {
	cfg := spread.DefaultConfig()

	t.Run("saturated factors clip to one", func(t *testing.T) {
		windU := constGrid(2, 2, 100) // far above wind_norm_max
		windV := constGrid(2, 2, 0)
		slope := constGrid(2, 2, 90) // above slope_max_deg
		rh := constGrid(2, 2, 0)

		pot := spread.SpreadPotential(windU, windV, slope, rh, cfg)
		for _, v := range pot.Data() {
			assert.InDelta(t, 1.0, float64(v), 1e-6) // weights sum to 1 here
		}
	})

	t.Run("overweight sum clips to one", func(t *testing.T) {
		cfg := cfg
		cfg.WindWeight, cfg.SlopeWeight, cfg.DrynessWeight = 1, 1, 1

		f := constFields(3, 3)
		pot := spread.SpreadPotential(f.WindU, f.WindV, f.Slope, f.RH, cfg)
		for _, v := range pot.Data() {
			assert.LessOrEqual(t, float64(v), 1.0)
			assert.GreaterOrEqual(t, float64(v), 0.0)
		}
	})

	t.Run("humidity above 100 clips dryness to zero", func(t *testing.T) {
		windU := constGrid(2, 2, 0)
		windV := constGrid(2, 2, 0)
		slope := constGrid(2, 2, 0)
		rh := constGrid(2, 2, 120) // finite out-of-range input is clipped, not rejected

		pot := spread.SpreadPotential(windU, windV, slope, rh, cfg)
		for _, v := range pot.Data() {
			assert.Equal(t, float32(0), v)
		}
	})
}

func TestSpreadPotentialDeterministic(t *testing.T) {
	f := constFields(6, 4)
	cfg := spread.DefaultConfig()

	a := spread.SpreadPotential(f.WindU, f.WindV, f.Slope, f.RH, cfg)
	b := spread.SpreadPotential(f.WindU, f.WindV, f.Slope, f.RH, cfg)

	assert.Equal(t, a.Data(), b.Data())
}
