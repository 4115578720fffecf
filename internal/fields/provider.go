// Package fields supplies the aligned weather and terrain grids the spread
// engine consumes. Grid acquisition, reprojection, and resampling belong to
// the upstream alignment collaborator; this package only defines the
// provider boundary and a deterministic synthetic stand-in.
package fields

import (
	"context"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

// Provider returns the aligned field set for one fire's analysis window.
type Provider interface {
	Fields(ctx context.Context, fireID string) (domain.FieldSet, error)
}
