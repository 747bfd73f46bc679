package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/pkg/errors"
)

// ErrNoLinearGeometry is returned when no segment of a track can be reduced
// to a valid line string, so distance-along-track projection is undefined.
var ErrNoLinearGeometry = errors.New("no linear geometry")

// endpointEpsilon is the coordinate tolerance for treating two segment
// endpoints as connected.
const endpointEpsilon = 1e-9

// Normalize reduces a possibly multi-segment track geometry to the single
// traversable line used for projection math. Segments are repaired (dropped
// duplicate and non-finite points), merged where endpoint-connected, and if
// multiple disconnected lines remain the longest one wins, with ties broken
// by original segment order.
//
// The result is only for projection; the stored multi-segment geometry keeps
// its gaps because they are meaningful to the renderer.
func Normalize(segments []orb.LineString) (orb.LineString, error) {
	type candidate struct {
		line  orb.LineString
		first int // original index of the earliest constituent segment
	}

	var lines []candidate
	for i, seg := range segments {
		repaired := repairSegment(seg)
		if len(repaired) < 2 {
			continue
		}
		lines = append(lines, candidate{line: repaired, first: i})
	}
	if len(lines) == 0 {
		return nil, ErrNoLinearGeometry
	}

	// Merge endpoint-connected lines until no pair joins. Scanning in order
	// and always folding the later line into the earlier one keeps the
	// result deterministic for a given segment order.
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(lines) && !merged; i++ {
			for j := i + 1; j < len(lines); j++ {
				joined, ok := joinLines(lines[i].line, lines[j].line)
				if !ok {
					continue
				}
				lines[i].line = joined
				lines = append(lines[:j], lines[j+1:]...)
				merged = true
				break
			}
		}
	}

	best := 0
	bestLength := geo.LengthHaversine(lines[0].line)
	for i := 1; i < len(lines); i++ {
		length := geo.LengthHaversine(lines[i].line)
		if length > bestLength || (length == bestLength && lines[i].first < lines[best].first) {
			best = i
			bestLength = length
		}
	}
	return lines[best].line, nil
}

// repairSegment drops non-finite coordinates and collapses consecutive
// duplicate points so the segment forms a simple line string. A segment that
// collapses below two points is degenerate and gets discarded by the caller.
func repairSegment(seg orb.LineString) orb.LineString {
	out := make(orb.LineString, 0, len(seg))
	for _, p := range seg {
		if !finitePoint(p) {
			continue
		}
		if len(out) > 0 && pointsClose(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// joinLines concatenates two lines if any pair of their endpoints coincide,
// reversing as needed so a continues into b.
func joinLines(a, b orb.LineString) (orb.LineString, bool) {
	switch {
	case pointsClose(a[len(a)-1], b[0]):
		return append(a, b[1:]...), true
	case pointsClose(a[len(a)-1], b[len(b)-1]):
		return append(a, reversed(b)[1:]...), true
	case pointsClose(a[0], b[len(b)-1]):
		return append(b, a[1:]...), true
	case pointsClose(a[0], b[0]):
		return append(reversed(b), a[1:]...), true
	}
	return nil, false
}

func reversed(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, p := range line {
		out[len(line)-1-i] = p
	}
	return out
}

func pointsClose(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) <= endpointEpsilon && math.Abs(a[1]-b[1]) <= endpointEpsilon
}

func finitePoint(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsInf(p[0], 0) && !math.IsNaN(p[1]) && !math.IsInf(p[1], 0)
}
