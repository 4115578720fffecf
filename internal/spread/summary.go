package spread

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

// burnThreshold is the probability above which a cell counts as affected
// for the area summary.
const burnThreshold = 0.5

// Summarize computes the scalar summaries served alongside the probability
// grid: its maximum and mean, and the affected area (cells above the burn
// threshold times the cell area from the grid's transform).
func Summarize(probability *domain.Grid) domain.NowcastSummary {
	vals := make([]float64, len(probability.Data()))
	burned := 0
	for i, v := range probability.Data() {
		vals[i] = float64(v)
		if v > burnThreshold {
			burned++
		}
	}

	return domain.NowcastSummary{
		MaxProbability:  floats.Max(vals),
		MeanProbability: stat.Mean(vals, nil),
		BurnedCells:     burned,
		AffectedArea:    float64(burned) * probability.Transform.CellArea(),
	}
}
