package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// SimplifyForZoom runs Douglas-Peucker over every stored segment with the
// tolerance resolved for the given zoom. Segments are simplified
// independently so the gaps between them survive for rendering. The inputs
// are cloned; stored geometry is never mutated.
func SimplifyForZoom(segments []orb.LineString, zoom float64) ([]orb.LineString, Tolerance) {
	tol := ForZoom(zoom)
	simplifier := simplify.DouglasPeucker(tol.Degrees)

	out := make([]orb.LineString, 0, len(segments))
	for _, seg := range segments {
		if len(seg) < 2 {
			continue
		}
		out = append(out, simplifier.Simplify(seg.Clone()).(orb.LineString))
	}
	return out, tol
}
