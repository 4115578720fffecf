package spread

import "github.com/couchcryptid/fire-nowcast-engine/internal/domain"

// cross4 and block8 are the dilation structuring elements: the 4-neighbor
// cross and the 8-neighbor full 3x3 block.
var (
	cross4 = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	block8 = [][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
)

// Propagate advances the fire state by one timestep in place and returns the
// number of newly ignited cells. A cell ignites when it is inactive, its
// spread potential exceeds the threshold, and it touches an active cell
// under the configured connectivity. Ignited cells take their potential as a
// fixed intensity; active cells are never reset, so propagation is monotonic
// and converges within max(H, W) steps.
func Propagate(state, potential *domain.Grid, threshold float64, neighbors int) int {
	offsets := block8
	if neighbors == 4 {
		offsets = cross4
	}

	h, w := state.H, state.W
	s := state.Data()
	p := potential.Data()

	// Candidates are collected against the pre-step active mask; s is not
	// written until the scan completes, so ignitions cannot cascade within
	// a single timestep.
	var ignited []int
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			i := r*w + c
			if s[i] > 0 || float64(p[i]) <= threshold {
				continue
			}
			for _, d := range offsets {
				nr, nc := r+d[0], c+d[1]
				if nr < 0 || nr >= h || nc < 0 || nc >= w {
					continue
				}
				if s[nr*w+nc] > 0 {
					ignited = append(ignited, i)
					break
				}
			}
		}
	}

	for _, i := range ignited {
		s[i] = p[i]
	}
	return len(ignited)
}

// Simulate runs cfg.NTimesteps propagation steps over a seeded state,
// mutating it in place. It returns the final state and the running
// elementwise maximum across all timesteps. Under the monotonic rule the two
// are identical, but the max grid is the designated ensemble-member output:
// a non-monotonic transition rule (intensity decay) must still report the
// historical peak, not the horizon state.
func Simulate(state, potential *domain.Grid, cfg Config) (final, peak *domain.Grid) {
	peak = state.Clone()
	pk := peak.Data()
	s := state.Data()

	for t := 0; t < cfg.NTimesteps; t++ {
		if Propagate(state, potential, cfg.SpreadThreshold, cfg.Neighbors) == 0 {
			break // fixed point reached; further steps are no-ops
		}
		for i := range pk {
			if s[i] > pk[i] {
				pk[i] = s[i]
			}
		}
	}
	return state, peak
}
