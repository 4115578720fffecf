package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("fire-ca-001"),
		Value:     []byte(`{"fire_id":"fire-ca-001"}`),
		Topic:     "fire-detections",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("firms")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("fire-ca-001"), raw.Key)
	assert.JSONEq(t, `{"fire_id":"fire-ca-001"}`, string(raw.Value))
	assert.Equal(t, "fire-detections", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "firms", raw.Headers["source"])
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 8, 20, 18, 0, 0, 0, time.UTC)
	n := domain.Nowcast{
		ID:          "nowcast-abc123",
		FireID:      "fire-ca-001",
		Status:      domain.StatusOK,
		GeneratedAt: now,
		Members:     20,
		Summary:     domain.NowcastSummary{MaxProbability: 0.95, BurnedCells: 120},
	}

	msg, err := serializeToMessage(n)
	require.NoError(t, err)

	assert.Equal(t, []byte("fire-ca-001"), msg.Key)
	assert.Contains(t, string(msg.Value), `"id":"nowcast-abc123"`)
	assert.Contains(t, string(msg.Value), `"max_probability":0.95`)
	assert.NotContains(t, string(msg.Value), "probability_grid", "grids never go on the wire")
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "fire_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("fire-ca-001"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}
