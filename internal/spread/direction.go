package spread

import (
	"math"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

const (
	// Wind dominates the direction estimate; the probability gradient
	// refines it.
	directionWindWeight     = 0.7
	directionGradientWeight = 0.3

	// Cells below this probability get the no-direction sentinel.
	directionProbabilityFloor = 0.01

	// NoDirection marks cells with negligible burn probability.
	NoDirection = float32(-1)
)

// SpreadDirection derives a compass-bearing raster from the reduced
// probability field and the unperturbed wind components. The bearing uses
// compass convention: 0 = north, 90 = east, increasing clockwise. It runs
// once per nowcast, outside the ensemble loop.
func SpreadDirection(probability, windU, windV *domain.Grid) *domain.Grid {
	out := domain.NewGridLike(probability)

	h, w := probability.H, probability.W
	p := probability.Data()
	u, v := windU.Data(), windV.Data()
	dir := out.Data()

	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			i := r*w + c
			if float64(p[i]) < directionProbabilityFloor {
				dir[i] = NoDirection
				continue
			}

			gradX := gradientAt(p, w, c, i, 1)     // along columns
			gradY := gradientAt(p, h, r, i, w)     // along rows

			combinedX := directionWindWeight*float64(u[i]) + directionGradientWeight*gradX
			combinedY := directionWindWeight*float64(v[i]) + directionGradientWeight*gradY

			bearing := math.Atan2(combinedX, combinedY) * 180 / math.Pi
			bearing = math.Mod(bearing+360, 360)
			dir[i] = float32(bearing)
		}
	}
	return out
}

// gradientAt computes the discrete gradient along one axis at index i:
// central differences in the interior, one-sided at the boundaries. pos is
// the coordinate along the axis, extent the axis length, and stride the
// linear-index step between adjacent cells on that axis.
func gradientAt(data []float32, extent, pos, i, stride int) float64 {
	switch {
	case extent == 1:
		return 0
	case pos == 0:
		return float64(data[i+stride]) - float64(data[i])
	case pos == extent-1:
		return float64(data[i]) - float64(data[i-stride])
	default:
		return (float64(data[i+stride]) - float64(data[i-stride])) / 2
	}
}
