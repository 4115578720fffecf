package spread

import (
	"math/rand/v2"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

// Perturb returns a perturbed copy of the weather fields for one ensemble
// member. Each cell is scaled by (1 + U(-f, f)) with the field-specific
// magnitude f; relative humidity is clipped back to [0,100] afterwards.
// Slope is terrain, not weather, and passes through untouched.
//
// The generator is constructed from the seed alone, so identical inputs and
// seed reproduce bit-identical output, and concurrent members never share
// random state. The draw order is fixed: wind-u, wind-v, temperature,
// relative humidity, each row-major.
func Perturb(fields domain.FieldSet, cfg Config, seed int64) domain.FieldSet {
	rng := rand.New(rand.NewPCG(uint64(seed), 0))

	out := domain.FieldSet{
		WindU: perturbField(fields.WindU, cfg.WindPerturbation, rng),
		WindV: perturbField(fields.WindV, cfg.WindPerturbation, rng),
		Temp:  perturbField(fields.Temp, cfg.TempPerturbation, rng),
		RH:    perturbField(fields.RH, cfg.RHPerturbation, rng),
		Slope: fields.Slope,
	}

	h := out.RH.Data()
	for i := range h {
		h[i] = float32(clip(float64(h[i]), 0, 100))
	}
	return out
}

func perturbField(g *domain.Grid, magnitude float64, rng *rand.Rand) *domain.Grid {
	out := domain.NewGridLike(g)
	src, dst := g.Data(), out.Data()
	for i := range src {
		noise := -magnitude + 2*magnitude*rng.Float64()
		dst[i] = float32(float64(src[i]) * (1 + noise))
	}
	return out
}
