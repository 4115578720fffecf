// Package domain models the data exchanged between the fire nowcast engine
// and its collaborators: aligned raster grids, hotspot detections, and the
// nowcast products built from them.
//
// # Grids
//
// Every field participating in one simulation (wind components, temperature,
// relative humidity, slope, fire state) is a [Grid]: a row-major float32
// raster of fixed shape (H, W) carrying a six-coefficient affine
// [GeoTransform]. The alignment collaborator guarantees a shared layout;
// [FieldSet.Validate] re-checks it because a mismatch is a precondition
// violation, never something to coerce.
//
// # Detections
//
// Hotspot detections arrive from the upstream collector already clustered
// into discrete fire objects, one [DetectionEvent] per hotspot with its
// fire_id attached. Coordinates are WGS84 degrees. Confidence follows the
// FIRMS convention (0-100); [FilterByConfidence] drops low-confidence
// detections before seeding, mirroring the upstream denoiser.
//
// # Nowcasts
//
// A [Nowcast] bundles the ensemble outputs for one fire: the raw and
// calibrated probability grids, mean intensity, uncertainty, the spread
// direction field, plus scalar summaries and the seed placement record.
// Raw probability is the ensemble burn frequency and is handed to the
// calibration stage before being surfaced; both grids are retained.
package domain
