package fields

import (
	"context"
	"hash/fnv"
	"math/rand/v2"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

// SyntheticConfig shapes the generated analysis window.
type SyntheticConfig struct {
	H, W      int
	OriginLon float64 // west edge, degrees
	OriginLat float64 // north edge, degrees
	CellSize  float64 // degrees per cell
	Seed      int64
}

// DefaultSyntheticConfig covers a 128x128 window over the northern Sierra
// Nevada at roughly 1km cells.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		H:         128,
		W:         128,
		OriginLon: -121.8,
		OriginLat: 40.0,
		CellSize:  0.01,
		Seed:      1,
	}
}

// Synthetic generates plausible weather and terrain grids deterministically
// from the fire ID and a configured seed. It stands in for the alignment
// collaborator when no field service is configured, the same role the mock
// ERA5/SRTM path played upstream: realistic enough to exercise the engine,
// reproducible enough to test against.
type Synthetic struct {
	cfg SyntheticConfig
}

// NewSynthetic creates the stand-in provider.
func NewSynthetic(cfg SyntheticConfig) *Synthetic {
	return &Synthetic{cfg: cfg}
}

// Fields generates the full aligned field set for a fire. Identical fire IDs
// yield bit-identical grids.
func (s *Synthetic) Fields(_ context.Context, fireID string) (domain.FieldSet, error) {
	transform := domain.GeoTransform{
		A: s.cfg.OriginLon, B: s.cfg.CellSize, C: 0,
		D: s.cfg.OriginLat, E: 0, F: -s.cfg.CellSize,
	}

	hasher := fnv.New64a()
	hasher.Write([]byte(fireID))
	rng := rand.New(rand.NewPCG(uint64(s.cfg.Seed), hasher.Sum64()))

	// Base conditions drawn once per fire, then varied gently per cell so
	// the potential field is not perfectly flat.
	baseWindU := 2 + 6*rng.Float64()
	baseWindV := -3 + 6*rng.Float64()
	baseTemp := 290 + 15*rng.Float64()
	baseRH := 20 + 30*rng.Float64()

	fs := domain.FieldSet{
		WindU: fill(s.cfg, transform, baseWindU, 1.0, rng),
		WindV: fill(s.cfg, transform, baseWindV, 1.0, rng),
		Temp:  fill(s.cfg, transform, baseTemp, 2.0, rng),
		RH:    fill(s.cfg, transform, baseRH, 5.0, rng),
		Slope: fill(s.cfg, transform, 12, 8.0, rng),
	}

	sl := fs.Slope.Data()
	for i := range sl {
		if sl[i] < 0 {
			sl[i] = 0
		}
	}
	h := fs.RH.Data()
	for i := range h {
		if h[i] < 0 {
			h[i] = 0
		} else if h[i] > 100 {
			h[i] = 100
		}
	}
	return fs, nil
}

func fill(cfg SyntheticConfig, tr domain.GeoTransform, base, jitter float64, rng *rand.Rand) *domain.Grid {
	g := domain.NewGrid(cfg.H, cfg.W, tr)
	d := g.Data()
	for i := range d {
		d[i] = float32(base + jitter*(2*rng.Float64()-1))
	}
	return g
}
