// Command genfixtures generates deterministic detection-event fixtures for
// local runs and test suites. Events are drawn from a seeded generator, so
// the same flags always produce the same file; pipe them into the source
// topic with kcat or the console producer.
//
// Usage:
//
//	go run ./cmd/genfixtures \
//	  -out data/fixtures/detections.json \
//	  -fires 3 -per-fire 8 -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
	"github.com/couchcryptid/fire-nowcast-engine/internal/fields"
)

var baseDate = time.Date(2026, time.August, 20, 18, 0, 0, 0, time.UTC)

var satellites = []string{"VIIRS-N20", "VIIRS-N21", "MODIS-Aqua", "MODIS-Terra"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the detection fixture")
	fires := flag.Int("fires", 3, "number of distinct fires")
	perFire := flag.Int("per-fire", 8, "detections per fire")
	seed := flag.Uint64("seed", 42, "generator seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	events := generate(*fires, *perFire, *seed)
	if err := writeJSON(*out, events); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d detection events across %d fires: %s", len(events), *fires, *out)
	return nil
}

// generate scatters each fire's detections around its own center inside the
// default synthetic analysis window, so fixture runs seed real cells.
func generate(fires, perFire int, seed uint64) []domain.DetectionEvent {
	rng := rand.New(rand.NewPCG(seed, 0))
	window := fields.DefaultSyntheticConfig()

	events := make([]domain.DetectionEvent, 0, fires*perFire)
	for f := 0; f < fires; f++ {
		fireID := fmt.Sprintf("fire-ca-%03d", f+1)

		// Keep centers away from the window edges so the cluster fits.
		margin := 10 * window.CellSize
		width := float64(window.W)*window.CellSize - 2*margin
		height := float64(window.H)*window.CellSize - 2*margin
		centerLon := window.OriginLon + margin + rng.Float64()*width
		centerLat := window.OriginLat - margin - rng.Float64()*height

		for d := 0; d < perFire; d++ {
			spread := 3 * window.CellSize
			events = append(events, domain.DetectionEvent{
				FireID: fireID,
				Detection: domain.Detection{
					Lat:        centerLat + spread*(2*rng.Float64()-1),
					Lon:        centerLon + spread*(2*rng.Float64()-1),
					Confidence: 0.5 + 0.5*rng.Float64(),
					FRP:        5 + 95*rng.Float64(),
					Satellite:  satellites[rng.IntN(len(satellites))],
					AcquiredAt: baseDate.Add(time.Duration(d) * 10 * time.Minute),
				},
			})
		}
	}
	return events
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
