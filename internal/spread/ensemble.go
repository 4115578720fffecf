package spread

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

// EnsembleResult holds the three reduced grids of one ensemble run.
type EnsembleResult struct {
	Probability   *domain.Grid // fraction of members in which the cell ever burned
	MeanIntensity *domain.Grid // per-cell mean of member peak intensity
	Uncertainty   *domain.Grid // per-cell population stddev of member peak intensity
}

// RunEnsemble executes cfg.NEnsemble independent perturbed simulations and
// reduces them into probability, mean-intensity, and uncertainty grids.
// Member i derives its seed as cfg.BaseSeed+i, perturbs the weather,
// recomputes the spread potential on the perturbed fields, and simulates
// from the shared seed grid. Members run on a worker pool writing to
// per-member slots; the reduction happens only after all members complete
// and iterates slots in member order, so the output is bit-identical for a
// fixed (inputs, base seed, member count) regardless of scheduling.
//
// Context cancellation abandons the whole call: partially completed members
// are never reduced.
func RunEnsemble(ctx context.Context, detections []domain.Detection, fields domain.FieldSet, cfg Config) (EnsembleResult, domain.PlacementSummary, error) {
	if err := cfg.Validate(); err != nil {
		return EnsembleResult{}, domain.PlacementSummary{}, err
	}
	if err := fields.Validate(); err != nil {
		return EnsembleResult{}, domain.PlacementSummary{}, err
	}

	ref := fields.WindU
	seedState, placement := SeedGrid(detections, ref.H, ref.W, ref.Transform, cfg.SeedStrength)

	members := make([]*domain.Grid, cfg.NEnsemble)

	workers := runtime.NumCPU()
	if workers > cfg.NEnsemble {
		workers = cfg.NEnsemble
	}

	var wg sync.WaitGroup
	idxCh := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				members[i] = runMember(i, seedState, fields, cfg)
			}
		}()
	}

	var dispatchErr error
dispatch:
	for i := 0; i < cfg.NEnsemble; i++ {
		if err := ctx.Err(); err != nil {
			dispatchErr = err
			break
		}
		select {
		case <-ctx.Done():
			dispatchErr = ctx.Err()
			break dispatch
		case idxCh <- i:
		}
	}
	close(idxCh)
	wg.Wait()

	if dispatchErr != nil {
		return EnsembleResult{}, placement, fmt.Errorf("ensemble abandoned: %w", dispatchErr)
	}

	return reduce(members, ref), placement, nil
}

// runMember executes one perturbed simulation and returns its peak grid.
// Members share only the read-only base fields and the seed grid; every
// mutable grid here is member-local.
func runMember(i int, seedState *domain.Grid, fields domain.FieldSet, cfg Config) *domain.Grid {
	seed := cfg.BaseSeed + int64(i)
	perturbed := Perturb(fields, cfg, seed)
	potential := SpreadPotential(perturbed.WindU, perturbed.WindV, perturbed.Slope, perturbed.RH, cfg)
	_, peak := Simulate(seedState.Clone(), potential, cfg)
	return peak
}

// reduce collapses the member stack into the three output grids. Variance
// uses the population convention (divide by N): a single-member ensemble has
// zero uncertainty everywhere, which is well-defined, not an error.
func reduce(members []*domain.Grid, ref *domain.Grid) EnsembleResult {
	n := float64(len(members))
	res := EnsembleResult{
		Probability:   domain.NewGridLike(ref),
		MeanIntensity: domain.NewGridLike(ref),
		Uncertainty:   domain.NewGridLike(ref),
	}
	prob := res.Probability.Data()
	mean := res.MeanIntensity.Data()
	unc := res.Uncertainty.Data()

	for j := range prob {
		var burned, sum, sumSq float64
		for _, m := range members {
			v := float64(m.Data()[j])
			if v > 0 {
				burned++
			}
			sum += v
			sumSq += v * v
		}
		mu := sum / n
		variance := sumSq/n - mu*mu
		if variance < 0 {
			variance = 0 // float round-off on zero-variance cells
		}
		prob[j] = float32(burned / n)
		mean[j] = float32(mu)
		unc[j] = float32(math.Sqrt(variance))
	}
	return res
}
