// Package pipeline orchestrates the detection-to-nowcast loop: extract
// detection batches from the source topic, group them per fire, run the
// ensemble engine, store the products, and publish their summaries.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
	"github.com/couchcryptid/fire-nowcast-engine/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// NowcastRunner generates the latest nowcast for one fire.
type NowcastRunner interface {
	Nowcast(ctx context.Context, fireID string, dets []domain.Detection) (domain.Nowcast, error)
}

// Publisher writes nowcast summaries to the destination.
type Publisher interface {
	PublishBatch(ctx context.Context, nowcasts []domain.Nowcast) error
}

// Cataloger stores the latest nowcast per fire for the serving layer.
type Cataloger interface {
	Put(n domain.Nowcast)
}

// Pipeline orchestrates the extract-nowcast-publish loop.
type Pipeline struct {
	extractor BatchExtractor
	runner    NowcastRunner
	publisher Publisher
	catalog   Cataloger
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, r NowcastRunner, p Publisher, c Cataloger, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		runner:    r,
		publisher: p,
		catalog:   c,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness returns nil if the pipeline has produced at least one
// nowcast, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not produced any nowcasts yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-nowcast-publish cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.DetectionsConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	fires := p.parseAndGroup(ctx, rawBatch)
	if len(fires) == 0 {
		return true
	}

	published, ok := p.nowcastAndPublish(ctx, fires, backoff, maxBackoff)
	if !ok {
		return false
	}

	if published > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// fireBatch is all detections for one fire in the current batch, with the
// source messages to commit once the fire's nowcast is published.
type fireBatch struct {
	fireID string
	dets   []domain.Detection
	raws   []domain.RawEvent
}

// parseAndGroup parses each raw event and groups the detections by fire.
// Unparseable messages are logged, counted, and committed so they are never
// redelivered. Fires come back sorted by ID so processing order is stable.
func (p *Pipeline) parseAndGroup(ctx context.Context, rawBatch []domain.RawEvent) []fireBatch {
	byFire := make(map[string]*fireBatch)
	for _, raw := range rawBatch {
		ev, err := domain.ParseDetectionEvent(raw)
		if err != nil {
			p.logger.Warn("parse failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.ParseErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		fb, ok := byFire[ev.FireID]
		if !ok {
			fb = &fireBatch{fireID: ev.FireID}
			byFire[ev.FireID] = fb
		}
		fb.dets = append(fb.dets, ev.Detection)
		fb.raws = append(fb.raws, raw)
	}

	fires := make([]fireBatch, 0, len(byFire))
	for _, fb := range byFire {
		fires = append(fires, *fb)
	}
	sort.Slice(fires, func(i, j int) bool { return fires[i].fireID < fires[j].fireID })
	return fires
}

// nowcastAndPublish runs the engine per fire, stores the products, publishes
// their summaries, and commits the offsets of the fires that made it through.
// A fire whose run fails is skipped without committing, so its detections are
// redelivered. Returns the number of published nowcasts and false if the
// pipeline should stop.
func (p *Pipeline) nowcastAndPublish(ctx context.Context, fires []fireBatch, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	nowcasts := make([]domain.Nowcast, 0, len(fires))
	succeeded := make([]fireBatch, 0, len(fires))

	for _, fb := range fires {
		n, err := p.runner.Nowcast(ctx, fb.fireID, fb.dets)
		if err != nil {
			if ctx.Err() != nil {
				return 0, false
			}
			p.logger.Error("nowcast failed, detections will be redelivered",
				"error", err, "fire_id", fb.fireID, "detections", len(fb.dets))
			p.metrics.EngineErrors.Inc()
			continue
		}
		p.metrics.NowcastsGenerated.Inc()
		p.catalog.Put(n)
		nowcasts = append(nowcasts, n)
		succeeded = append(succeeded, fb)
	}

	if len(nowcasts) == 0 {
		return 0, true
	}

	if err := p.publisher.PublishBatch(ctx, nowcasts); err != nil {
		p.logger.Error("publish batch failed", "error", err, "nowcasts", len(nowcasts))
		return 0, p.backoffOrStop(ctx, backoff, maxBackoff)
	}
	p.metrics.NowcastsPublished.Add(float64(len(nowcasts)))

	for _, fb := range succeeded {
		for _, raw := range fb.raws {
			p.commitOffset(ctx, raw)
		}
	}
	return len(nowcasts), true
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
