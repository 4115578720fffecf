package spread

import (
	"math"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

// SeedGrid rasterizes hotspot detections onto a fire-state grid. Each
// detection's coordinate is mapped through the inverse affine transform and
// rounded to the nearest cell; the cell is set to seedStrength. Detections
// that land outside the grid or fail the transform are skipped and counted,
// never fatal: resampling can legitimately push a detection just outside an
// aligned grid. Two detections hitting the same cell overwrite idempotently.
//
// Zero placed seeds is a valid outcome and yields an all-zero state; callers
// decide whether to surface a warning.
func SeedGrid(detections []domain.Detection, h, w int, transform domain.GeoTransform, seedStrength float64) (*domain.Grid, domain.PlacementSummary) {
	state := domain.NewGrid(h, w, transform)
	var summary domain.PlacementSummary

	for _, d := range detections {
		row, col, err := transform.RowCol(d.Lon, d.Lat)
		if err != nil {
			summary.TransformFailed++
			continue
		}
		r := int(math.Round(row))
		c := int(math.Round(col))
		if r < 0 || r >= h || c < 0 || c >= w {
			summary.OutOfGrid++
			continue
		}
		state.Set(r, c, float32(seedStrength))
		summary.Placed++
	}

	return state, summary
}
