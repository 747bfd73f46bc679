package geometry

// Tolerance is the simplification tolerance for one display zoom band.
// Degrees is the Douglas-Peucker epsilon in coordinate degrees; MeterApprox
// is the equivalent at the meridional scale (1 degree latitude = 111.32 km),
// which does not vary with latitude in the north-south direction.
type Tolerance struct {
	Degrees     float64 `json:"degree_tolerance"`
	MeterApprox float64 `json:"meter_approx"`
}

const metersPerDegree = 111320.0

// toleranceBands maps an inclusive upper zoom bound to the degree tolerance
// for that band, coarse to fine. The final band has no upper bound.
// This table is the single source of truth: every simplification call site
// (display handlers, geometry cache keys) must go through ForZoom so the
// same zoom always yields the same tolerance.
var toleranceBands = []struct {
	maxZoom float64
	degrees float64
}{
	{8, 0.001},    // ~100 m, world/country view
	{10, 0.0005},  // ~50 m, regional
	{12, 0.00025}, // ~25 m, city
	{14, 0.0001},  // ~10 m, neighborhood
	{16, 0.00005}, // ~5 m, street
}

const finestTolerance = 0.00002 // ~2 m, max detail

// ForZoom resolves the simplification tolerance for a display zoom level.
// Zoom levels below the coarsest band clamp to the coarsest tolerance,
// levels above the finest band clamp to the finest.
func ForZoom(zoom float64) Tolerance {
	for _, band := range toleranceBands {
		if zoom <= band.maxZoom {
			return Tolerance{Degrees: band.degrees, MeterApprox: band.degrees * metersPerDegree}
		}
	}
	return Tolerance{Degrees: finestTolerance, MeterApprox: finestTolerance * metersPerDegree}
}
