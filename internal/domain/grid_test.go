package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// northUpTransform builds a typical north-up geographic transform with the
// given origin and cell size in degrees.
func northUpTransform(originLon, originLat, cell float64) GeoTransform {
	return GeoTransform{A: originLon, B: cell, C: 0, D: originLat, E: 0, F: -cell}
}

func TestGeoTransformRoundTrip(t *testing.T) {
	tr := northUpTransform(-120.0, 40.0, 0.01)

	x, y := tr.XY(3, 7)
	assert.InDelta(t, -120.0+7*0.01, x, 1e-12)
	assert.InDelta(t, 40.0-3*0.01, y, 1e-12)

	row, col, err := tr.RowCol(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, row, 1e-9)
	assert.InDelta(t, 7.0, col, 1e-9)
}

func TestGeoTransformSingular(t *testing.T) {
	_, _, err := GeoTransform{}.RowCol(-120, 40)
	require.Error(t, err)
}

func TestGeoTransformCellArea(t *testing.T) {
	tr := northUpTransform(-120.0, 40.0, 0.01)
	assert.InDelta(t, 0.0001, tr.CellArea(), 1e-12)
}

func TestGridCloneIsDeep(t *testing.T) {
	g := NewGrid(2, 3, northUpTransform(-120, 40, 0.01))
	g.Set(1, 2, 0.5)

	c := g.Clone()
	c.Set(0, 0, 1.0)

	assert.Equal(t, float32(0), g.At(0, 0))
	assert.Equal(t, float32(0.5), c.At(1, 2))
	assert.True(t, g.SameLayout(c))
}

func TestGridClampsNonPositiveDims(t *testing.T) {
	g := NewGrid(0, -3, GeoTransform{B: 1, F: -1})
	assert.Equal(t, 1, g.H)
	assert.Equal(t, 1, g.W)
	assert.Len(t, g.Data(), 1)
}

func TestFieldSetValidate(t *testing.T) {
	tr := northUpTransform(-120, 40, 0.01)
	mk := func() *Grid { return NewGrid(4, 5, tr) }

	t.Run("valid", func(t *testing.T) {
		fs := FieldSet{WindU: mk(), WindV: mk(), Temp: mk(), RH: mk(), Slope: mk()}
		require.NoError(t, fs.Validate())
	})

	t.Run("missing field", func(t *testing.T) {
		fs := FieldSet{WindU: mk(), WindV: mk(), Temp: mk(), RH: mk()}
		err := fs.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "slope")
	})

	t.Run("shape mismatch", func(t *testing.T) {
		fs := FieldSet{WindU: mk(), WindV: mk(), Temp: mk(), RH: mk(), Slope: NewGrid(4, 6, tr)}
		require.Error(t, fs.Validate())
	})

	t.Run("transform mismatch", func(t *testing.T) {
		fs := FieldSet{WindU: mk(), WindV: mk(), Temp: mk(), RH: mk(),
			Slope: NewGrid(4, 5, northUpTransform(-121, 40, 0.01))}
		require.Error(t, fs.Validate())
	})
}

func TestGridDataLayoutRowMajor(t *testing.T) {
	g := NewGrid(2, 2, GeoTransform{B: 1, F: -1})
	g.Set(0, 1, 1)
	g.Set(1, 0, 2)

	want := []float32{0, 1, 2, 0}
	if diff := cmp.Diff(want, g.Data()); diff != "" {
		t.Fatalf("unexpected layout (-want +got):\n%s", diff)
	}
}
