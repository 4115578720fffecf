package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Detection is a single satellite hotspot detection in WGS84 coordinates.
// Detections are consumed read-only; the engine never mutates them.
type Detection struct {
	Lat        float64   `json:"latitude"`
	Lon        float64   `json:"longitude"`
	Confidence float64   `json:"confidence,omitempty"` // sensor confidence, normalized to [0,1]
	FRP        float64   `json:"frp,omitempty"`        // fire radiative power (MW)
	Satellite  string    `json:"satellite,omitempty"`
	AcquiredAt time.Time `json:"acquired_at,omitempty"`
}

// DetectionEvent is the payload published by the upstream detection
// collector: one hotspot already attributed to a clustered fire object.
type DetectionEvent struct {
	FireID string `json:"fire_id"`
	Detection
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ParseDetectionEvent deserializes a RawEvent's value into a DetectionEvent.
func ParseDetectionEvent(raw RawEvent) (DetectionEvent, error) {
	var ev DetectionEvent
	if err := json.Unmarshal(raw.Value, &ev); err != nil {
		return DetectionEvent{}, fmt.Errorf("parse detection event: %w", err)
	}
	if ev.FireID == "" {
		return DetectionEvent{}, fmt.Errorf("parse detection event: missing fire_id")
	}
	if ev.Lat < -90 || ev.Lat > 90 || ev.Lon < -180 || ev.Lon > 180 {
		return DetectionEvent{}, fmt.Errorf("parse detection event: coordinate out of range: lat=%v lon=%v", ev.Lat, ev.Lon)
	}
	return ev, nil
}

// FilterByConfidence drops detections below the confidence threshold.
// A threshold of 0 keeps everything, including detections whose sensor did
// not report a confidence value.
func FilterByConfidence(dets []Detection, minConfidence float64) []Detection {
	if minConfidence <= 0 {
		return dets
	}
	kept := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if d.Confidence >= minConfidence {
			kept = append(kept, d)
		}
	}
	return kept
}
