package spread

import (
	"math"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

// SpreadPotential combines the per-cell physical drivers into a single
// spread-potential field in [0,1]: wind speed normalized against
// WindNormMax, slope against SlopeMaxDeg, and dryness from relative
// humidity, blended with the configured weights.
func SpreadPotential(windU, windV, slope, rh *domain.Grid, cfg Config) *domain.Grid {
	out := domain.NewGridLike(windU)

	u, v := windU.Data(), windV.Data()
	sl, h := slope.Data(), rh.Data()
	p := out.Data()

	for i := range p {
		windFactor := clip(math.Hypot(float64(u[i]), float64(v[i]))/cfg.WindNormMax, 0, 1)
		slopeFactor := clip(float64(sl[i])/cfg.SlopeMaxDeg, 0, 1)
		drynessFactor := clip((100-float64(h[i]))/100, 0, 1)

		pot := cfg.WindWeight*windFactor + cfg.SlopeWeight*slopeFactor + cfg.DrynessWeight*drynessFactor
		p[i] = float32(clip(pot, 0, 1))
	}
	return out
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
