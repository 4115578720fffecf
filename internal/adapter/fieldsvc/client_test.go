package fieldsvc

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

func testPayload(h, w int) payload {
	n := h * w
	mk := func(v float32) []float32 {
		s := make([]float32, n)
		for i := range s {
			s[i] = v
		}
		return s
	}
	return payload{
		H: h, W: w,
		Transform: [6]float64{-120, 0.01, 0, 40, 0, -0.01},
		WindU:     mk(5), WindV: mk(0), Temp: mk(295), RH: mk(40), Slope: mk(10),
	}
}

func TestClientFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/fires/fire-ca-001/fields", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(testPayload(4, 5)))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, slog.Default())
	fs, err := c.Fields(context.Background(), "fire-ca-001")

	require.NoError(t, err)
	require.NoError(t, fs.Validate())
	assert.Equal(t, 4, fs.WindU.H)
	assert.Equal(t, 5, fs.WindU.W)
	assert.Equal(t, float32(40), fs.RH.At(2, 3))
	assert.Equal(t, domain.GeoTransform{A: -120, B: 0.01, D: 40, F: -0.01}, fs.WindU.Transform)
}

func TestClientFieldsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such fire", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, slog.Default())
	_, err := c.Fields(context.Background(), "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestClientFieldsShapeMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		p := testPayload(4, 5)
		p.Slope = p.Slope[:10] // wrong length
		require.NoError(t, json.NewEncoder(w).Encode(p))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, slog.Default())
	_, err := c.Fields(context.Background(), "fire-x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "shape")
}

// countingProvider counts upstream fetches for cache tests.
type countingProvider struct {
	calls int
	fs    domain.FieldSet
}

func (p *countingProvider) Fields(context.Context, string) (domain.FieldSet, error) {
	p.calls++
	return p.fs, nil
}

func TestCachedProviderHitsAndEviction(t *testing.T) {
	fs, err := testPayload(2, 2).toFieldSet()
	require.NoError(t, err)

	inner := &countingProvider{fs: fs}
	cached := NewCachedProvider(inner, 2, time.Hour)

	ctx := context.Background()
	for _, id := range []string{"a", "a", "b", "a"} {
		_, err := cached.Fields(ctx, id)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, inner.calls, "a and b fetched once each")

	// c evicts the LRU entry (b); refetching b goes upstream again.
	_, err = cached.Fields(ctx, "c")
	require.NoError(t, err)
	_, err = cached.Fields(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls)
}

func TestCachedProviderStaleEntryRefetches(t *testing.T) {
	fs, err := testPayload(2, 2).toFieldSet()
	require.NoError(t, err)

	inner := &countingProvider{fs: fs}
	cached := NewCachedProvider(inner, 4, time.Nanosecond)

	ctx := context.Background()
	_, err = cached.Fields(ctx, "a")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = cached.Fields(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls, "stale hit must refetch")
}
