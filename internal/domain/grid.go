package domain

import (
	"fmt"
	"math"
)

// GeoTransform is the six-coefficient affine mapping between grid pixel
// indices and world coordinates (GDAL ordering):
//
//	x = A + col*B + row*C
//	y = D + col*E + row*F
//
// For north-up geographic grids, B is the cell width in degrees longitude,
// F the (negative) cell height in degrees latitude, and C = E = 0.
type GeoTransform struct {
	A, B, C, D, E, F float64
}

// XY returns the world coordinate of a fractional (row, col) position.
func (t GeoTransform) XY(row, col float64) (x, y float64) {
	return t.A + col*t.B + row*t.C, t.D + col*t.E + row*t.F
}

// RowCol inverts the transform, mapping a world coordinate to a fractional
// (row, col) position. Returns an error when the transform is singular.
func (t GeoTransform) RowCol(x, y float64) (row, col float64, err error) {
	det := t.B*t.F - t.C*t.E
	if det == 0 {
		return 0, 0, fmt.Errorf("geo transform is singular: %+v", t)
	}
	dx, dy := x-t.A, y-t.D
	col = (dx*t.F - dy*t.C) / det
	row = (dy*t.B - dx*t.E) / det
	return row, col, nil
}

// CellArea returns the area of one grid cell in world units (the absolute
// determinant of the linear part of the transform).
func (t GeoTransform) CellArea() float64 {
	return math.Abs(t.B*t.F - t.C*t.E)
}

// Grid is a 2-D float32 raster stored row-major, carrying the affine
// transform that places it in world coordinates. All grids participating in
// one simulation must share the same shape and transform.
type Grid struct {
	H, W      int
	Transform GeoTransform

	data []float32
}

// NewGrid allocates a zero-filled grid with the given shape and transform.
func NewGrid(h, w int, transform GeoTransform) *Grid {
	if h <= 0 {
		h = 1
	}
	if w <= 0 {
		w = 1
	}
	return &Grid{H: h, W: w, Transform: transform, data: make([]float32, h*w)}
}

// NewGridLike allocates a zero-filled grid with the same layout as g.
func NewGridLike(g *Grid) *Grid {
	return NewGrid(g.H, g.W, g.Transform)
}

// Index returns the linear slice index for (row, col).
func (g *Grid) Index(row, col int) int { return row*g.W + col }

// At returns the value at (row, col).
func (g *Grid) At(row, col int) float32 { return g.data[row*g.W+col] }

// Set stores a value at (row, col).
func (g *Grid) Set(row, col int, v float32) { g.data[row*g.W+col] = v }

// Data exposes the backing slice so numeric kernels can iterate directly.
func (g *Grid) Data() []float32 { return g.data }

// Fill sets every cell to v.
func (g *Grid) Fill(v float32) {
	for i := range g.data {
		g.data[i] = v
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.H, g.W, g.Transform)
	copy(c.data, g.data)
	return c
}

// SameLayout reports whether two grids share shape and transform.
func (g *Grid) SameLayout(o *Grid) bool {
	return g != nil && o != nil && g.H == o.H && g.W == o.W && g.Transform == o.Transform
}

// FieldSet bundles the aligned weather and terrain grids one simulation
// consumes. All members must share the same layout; Validate enforces it.
type FieldSet struct {
	WindU *Grid // east-west wind component (m/s)
	WindV *Grid // north-south wind component (m/s)
	Temp  *Grid // temperature (engine is unit-agnostic)
	RH    *Grid // relative humidity (percent, 0-100)
	Slope *Grid // terrain slope (degrees)
}

// Validate checks that every field is present and shares one grid layout.
func (f FieldSet) Validate() error {
	named := []struct {
		name string
		g    *Grid
	}{
		{"wind_u", f.WindU},
		{"wind_v", f.WindV},
		{"temp", f.Temp},
		{"rh", f.RH},
		{"slope", f.Slope},
	}
	for _, n := range named {
		if n.g == nil {
			return fmt.Errorf("field set: missing %s grid", n.name)
		}
	}
	ref := f.WindU
	for _, n := range named[1:] {
		if !ref.SameLayout(n.g) {
			return fmt.Errorf("field set: %s grid layout %dx%d does not match wind_u %dx%d (or transforms differ)",
				n.name, n.g.H, n.g.W, ref.H, ref.W)
		}
	}
	return nil
}
