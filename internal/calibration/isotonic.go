// Package calibration maps raw ensemble burn frequencies onto calibrated
// probabilities with isotonic regression. The engine's probability output is
// a relative frequency over a small ensemble, not a calibrated probability;
// this stage sits between the engine and the serving layer.
package calibration

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

// Isotonic is a fitted monotone non-decreasing calibration curve: score
// breakpoints with their fitted probabilities. Prediction interpolates
// linearly between breakpoints and clips outside the fitted range.
type Isotonic struct {
	x []float64 // strictly increasing scores
	y []float64 // non-decreasing fitted values
}

// Fit trains an isotonic regression on (score, outcome) pairs with the
// pool-adjacent-violators algorithm. Outcomes are typically 0/1 labels but
// any bounded target works. Ties in score are pre-aggregated to their mean.
func Fit(scores, outcomes []float64) (*Isotonic, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("isotonic fit: no samples")
	}
	if len(scores) != len(outcomes) {
		return nil, fmt.Errorf("isotonic fit: %d scores vs %d outcomes", len(scores), len(outcomes))
	}

	type sample struct{ x, y float64 }
	samples := make([]sample, len(scores))
	for i := range scores {
		samples[i] = sample{scores[i], outcomes[i]}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].x < samples[j].x })

	// Aggregate duplicate scores to a weighted point.
	type point struct{ x, sumY, w float64 }
	var pts []point
	for _, s := range samples {
		if n := len(pts); n > 0 && pts[n-1].x == s.x {
			pts[n-1].sumY += s.y
			pts[n-1].w++
			continue
		}
		pts = append(pts, point{x: s.x, sumY: s.y, w: 1})
	}

	// Pool adjacent violators: merge any block whose mean exceeds its
	// successor's until the means are non-decreasing.
	type block struct{ sumY, w, maxX float64 }
	blocks := make([]block, 0, len(pts))
	for _, p := range pts {
		blocks = append(blocks, block{sumY: p.sumY, w: p.w, maxX: p.x})
		for len(blocks) > 1 {
			a, b := blocks[len(blocks)-2], blocks[len(blocks)-1]
			if a.sumY/a.w <= b.sumY/b.w {
				break
			}
			blocks = blocks[:len(blocks)-2]
			blocks = append(blocks, block{sumY: a.sumY + b.sumY, w: a.w + b.w, maxX: b.maxX})
		}
	}

	iso := &Isotonic{}
	pi := 0
	for _, b := range blocks {
		fitted := b.sumY / b.w
		for pi < len(pts) && pts[pi].x <= b.maxX {
			iso.x = append(iso.x, pts[pi].x)
			iso.y = append(iso.y, fitted)
			pi++
		}
	}
	return iso, nil
}

// Predict evaluates the calibration curve at v, clipping outside the fitted
// score range.
func (iso *Isotonic) Predict(v float64) float64 {
	n := len(iso.x)
	if v <= iso.x[0] {
		return iso.y[0]
	}
	if v >= iso.x[n-1] {
		return iso.y[n-1]
	}
	// First breakpoint strictly above v; interpolate against its
	// predecessor.
	hi := sort.SearchFloat64s(iso.x, v)
	if iso.x[hi] == v {
		return iso.y[hi]
	}
	lo := hi - 1
	t := (v - iso.x[lo]) / (iso.x[hi] - iso.x[lo])
	return iso.y[lo] + t*(iso.y[hi]-iso.y[lo])
}

// Apply calibrates a probability grid cell by cell, clipping to [0,1].
// The input grid is not modified.
func (iso *Isotonic) Apply(probability *domain.Grid) *domain.Grid {
	out := domain.NewGridLike(probability)
	src, dst := probability.Data(), out.Data()
	for i := range src {
		p := iso.Predict(float64(src[i]))
		if p < 0 {
			p = 0
		} else if p > 1 {
			p = 1
		}
		dst[i] = float32(p)
	}
	return out
}

// FitSynthetic trains a calibrator on synthetic data modeling an
// overconfident engine: true burn rates run below the raw scores,
// especially at the high end. It stands in until enough historical fires
// exist to train on real outcomes, and is deterministic for a fixed seed.
func FitSynthetic(n int, seed int64) (*Isotonic, error) {
	if n < 2 {
		return nil, fmt.Errorf("isotonic synthetic fit: need at least 2 samples, got %d", n)
	}
	rng := rand.New(rand.NewPCG(uint64(seed), 0))

	scores := make([]float64, n)
	outcomes := make([]float64, n)
	for i := 0; i < n; i++ {
		raw := rng.Float64()
		trueProb := raw*0.7 + rng.NormFloat64()*0.1
		if trueProb < 0 {
			trueProb = 0
		} else if trueProb > 1 {
			trueProb = 1
		}
		scores[i] = raw
		if rng.Float64() < trueProb {
			outcomes[i] = 1
		}
	}
	return Fit(scores, outcomes)
}
