package spread_test

import (
	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

// testTransform is a north-up geographic transform: origin at (-120E, 40N),
// 0.01 degree cells.
var testTransform = domain.GeoTransform{A: -120.0, B: 0.01, C: 0, D: 40.0, E: 0, F: -0.01}

// constGrid builds an h x w grid filled with v on the test transform.
func constGrid(h, w int, v float32) *domain.Grid {
	g := domain.NewGrid(h, w, testTransform)
	g.Fill(v)
	return g
}

// constFields builds a FieldSet of constant grids matching the reference
// test scenario: wind_u=5, wind_v=0, temp=295, rh=40, slope=10.
func constFields(h, w int) domain.FieldSet {
	return domain.FieldSet{
		WindU: constGrid(h, w, 5),
		WindV: constGrid(h, w, 0),
		Temp:  constGrid(h, w, 295),
		RH:    constGrid(h, w, 40),
		Slope: constGrid(h, w, 10),
	}
}

// detectionAtCell returns a detection whose coordinate maps exactly onto the
// given cell of the test transform.
func detectionAtCell(row, col int) domain.Detection {
	lon, lat := testTransform.XY(float64(row), float64(col))
	return domain.Detection{Lat: lat, Lon: lon, Confidence: 90}
}

// burnedCells counts cells with a positive fire state.
func burnedCells(g *domain.Grid) int {
	n := 0
	for _, v := range g.Data() {
		if v > 0 {
			n++
		}
	}
	return n
}
