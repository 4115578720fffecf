package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
	"github.com/couchcryptid/fire-nowcast-engine/internal/fields"
	"github.com/couchcryptid/fire-nowcast-engine/internal/observability"
	"github.com/couchcryptid/fire-nowcast-engine/internal/spread"
)

// Calibrator maps a raw ensemble frequency grid onto calibrated probabilities.
type Calibrator interface {
	Apply(probability *domain.Grid) *domain.Grid
}

// Engine runs the full nowcast chain for one fire: confidence filter, field
// fetch, ensemble run, direction field, calibration, and summary.
type Engine struct {
	provider      fields.Provider
	calibrator    Calibrator
	cfg           spread.Config
	minConfidence float64
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewEngine wires the nowcast chain.
func NewEngine(provider fields.Provider, calibrator Calibrator, cfg spread.Config, minConfidence float64, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		provider:      provider,
		calibrator:    calibrator,
		cfg:           cfg,
		minConfidence: minConfidence,
		logger:        logger,
		metrics:       metrics,
	}
}

// Nowcast generates the latest product for one fire from its current
// detections. Detections below the confidence threshold are dropped before
// seeding; a run whose seed grid ends up empty still produces valid all-zero
// grids under StatusNoDetections.
func (e *Engine) Nowcast(ctx context.Context, fireID string, dets []domain.Detection) (domain.Nowcast, error) {
	filtered := domain.FilterByConfidence(dets, e.minConfidence)

	fs, err := e.provider.Fields(ctx, fireID)
	if err != nil {
		return domain.Nowcast{}, fmt.Errorf("fields for %s: %w", fireID, err)
	}

	start := time.Now()
	res, placement, err := spread.RunEnsemble(ctx, filtered, fs, e.cfg)
	if err != nil {
		return domain.Nowcast{}, fmt.Errorf("ensemble for %s: %w", fireID, err)
	}
	e.metrics.EnsembleDuration.Observe(time.Since(start).Seconds())
	e.metrics.EnsembleMembers.Observe(float64(e.cfg.NEnsemble))
	e.metrics.SeedPlacement.WithLabelValues("placed").Add(float64(placement.Placed))
	e.metrics.SeedPlacement.WithLabelValues("out_of_grid").Add(float64(placement.OutOfGrid))
	e.metrics.SeedPlacement.WithLabelValues("transform_error").Add(float64(placement.TransformFailed))

	direction := spread.SpreadDirection(res.Probability, fs.WindU, fs.WindV)
	calibrated := e.calibrator.Apply(res.Probability)

	status := domain.StatusOK
	if placement.Placed == 0 {
		status = domain.StatusNoDetections
		e.metrics.EmptySeedRuns.Inc()
		e.logger.Warn("no detections placed on grid",
			"fire_id", fireID,
			"detections", len(dets),
			"filtered", len(filtered),
			"out_of_grid", placement.OutOfGrid,
			"transform_failed", placement.TransformFailed,
		)
	}

	now := domain.Now()
	return domain.Nowcast{
		ID:          domain.NowcastID(fireID, e.cfg.BaseSeed, e.cfg.NEnsemble, now),
		FireID:      fireID,
		Status:      status,
		GeneratedAt: now,

		Members:    e.cfg.NEnsemble,
		Timesteps:  e.cfg.NTimesteps,
		BaseSeed:   e.cfg.BaseSeed,
		Detections: len(filtered),

		Placement: placement,
		Summary:   spread.Summarize(calibrated),

		Probability:           res.Probability,
		CalibratedProbability: calibrated,
		MeanIntensity:         res.MeanIntensity,
		Uncertainty:           res.Uncertainty,
		Direction:             direction,
	}, nil
}
