package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Nowcast status values. StatusNoDetections marks a product whose seed grid
// was empty: the grids are valid all-zero rasters, but the serving layer
// should surface "no detections available" instead of a burn map.
const (
	StatusOK           = "ok"
	StatusNoDetections = "no_detections"
)

// NowcastSummary holds the scalar summaries served alongside the grids.
type NowcastSummary struct {
	MaxProbability  float64 `json:"max_probability"`
	MeanProbability float64 `json:"mean_probability"`
	BurnedCells     int     `json:"burned_cells"`  // cells with probability > 0.5
	AffectedArea    float64 `json:"affected_area"` // burned cells x cell area, transform units
}

// PlacementSummary aggregates per-detection seeding outcomes. Skipped
// detections are recoverable, not errors: resampling can legitimately push a
// detection just outside an aligned grid.
type PlacementSummary struct {
	Placed          int `json:"placed"`
	OutOfGrid       int `json:"out_of_grid"`
	TransformFailed int `json:"transform_failed"`
}

// Nowcast is the complete product of one ensemble run for one fire.
// Immutable once built; owned by the caller.
type Nowcast struct {
	ID          string    `json:"id"`
	FireID      string    `json:"fire_id"`
	Status      string    `json:"status"`
	GeneratedAt time.Time `json:"generated_at"`

	Members    int   `json:"members"`
	Timesteps  int   `json:"timesteps"`
	BaseSeed   int64 `json:"base_seed"`
	Detections int   `json:"detections"`

	Placement PlacementSummary `json:"placement"`
	Summary   NowcastSummary   `json:"summary"`

	// Probability is the raw ensemble frequency; CalibratedProbability is
	// what the serving layer surfaces. Both are kept because the engine's
	// own probability output is never final-calibrated.
	Probability           *Grid `json:"-"`
	CalibratedProbability *Grid `json:"-"`
	MeanIntensity         *Grid `json:"-"`
	Uncertainty           *Grid `json:"-"`
	Direction             *Grid `json:"-"`
}

// NowcastID produces a deterministic product ID from the run's key inputs,
// so replaying the same detections with the same seed yields the same ID.
func NowcastID(fireID string, baseSeed int64, members int, generatedAt time.Time) string {
	input := fmt.Sprintf("%s|%d|%d|%d", fireID, baseSeed, members, generatedAt.UTC().Unix())
	hash := sha256.Sum256([]byte(input))
	return "nowcast-" + hex.EncodeToString(hash[:8])
}
