package geometry

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Projection is the position of a point along a line: Fraction in [0,1] of
// the total line length, and the geodesic distance in meters from the line
// start to the projected point.
type Projection struct {
	Fraction       float64
	DistanceMeters float64
}

// Waypoint is one candidate for order assignment along a track. Index is
// the original encounter position in the uploaded file; it breaks distance
// ties and survives into the result.
type Waypoint struct {
	PoiID uuid.UUID
	Index int
	Point orb.Point
}

// OrderedWaypoint is the result of batch order assignment. DistanceMeters is
// nil when projection is undefined for the track.
type OrderedWaypoint struct {
	PoiID          uuid.UUID
	Index          int
	DistanceMeters *float64
	SequenceOrder  int
}

// Project computes the closest position on line to p. The closest vertex
// parameter is found per segment in coordinate space (adequate at GPS
// segment lengths), while the reported distance is the haversine length of
// the sub-line from the start, never planar degrees. Returns false when the
// line has fewer than two points.
func Project(line orb.LineString, p orb.Point) (Projection, bool) {
	if len(line) < 2 {
		return Projection{}, false
	}

	var (
		bestDist      = -1.0
		bestPoint     orb.Point
		bestSegment   int
		cumulative    = make([]float64, len(line))
		totalLength   float64
		segmentLength float64
	)
	for i := 1; i < len(line); i++ {
		segmentLength = geo.DistanceHaversine(line[i-1], line[i])
		cumulative[i] = cumulative[i-1] + segmentLength
	}
	totalLength = cumulative[len(line)-1]

	for i := 0; i < len(line)-1; i++ {
		candidate := closestOnSegment(line[i], line[i+1], p)
		d := geo.DistanceHaversine(candidate, p)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			bestPoint = candidate
			bestSegment = i
		}
	}

	distance := cumulative[bestSegment] + geo.DistanceHaversine(line[bestSegment], bestPoint)
	fraction := 0.0
	if totalLength > 0 {
		fraction = distance / totalLength
		if fraction > 1 {
			fraction = 1
		}
	}
	return Projection{Fraction: fraction, DistanceMeters: distance}, true
}

// AssignOrder projects every waypoint onto line and assigns sequence order
// by ascending distance from the track start. The sort is stable, so
// waypoints at equal distance keep their original encounter order. When the
// line is undefined all distances are nil and encounter order is kept as is.
func AssignOrder(line orb.LineString, waypoints []Waypoint) []OrderedWaypoint {
	out := make([]OrderedWaypoint, len(waypoints))
	usable := len(line) >= 2
	for i, wp := range waypoints {
		out[i] = OrderedWaypoint{PoiID: wp.PoiID, Index: wp.Index}
		if !usable {
			continue
		}
		if proj, ok := Project(line, wp.Point); ok {
			d := proj.DistanceMeters
			out[i].DistanceMeters = &d
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceMeters == nil || out[j].DistanceMeters == nil {
			return false // undefined distances keep encounter order
		}
		return *out[i].DistanceMeters < *out[j].DistanceMeters
	})
	for i := range out {
		out[i].SequenceOrder = i
	}
	return out
}

// closestOnSegment returns the point on segment [a,b] closest to p, computed
// in coordinate space with the longitude axis scaled down toward the poles
// so east-west degree offsets compare fairly against north-south ones.
func closestOnSegment(a, b, p orb.Point) orb.Point {
	lonScale := lonScaleAt((a[1] + b[1]) / 2)
	dx := (b[0] - a[0]) * lonScale
	dy := b[1] - a[1]
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return a
	}
	t := ((p[0]-a[0])*lonScale*dx + (p[1]-a[1])*dy) / lengthSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
}

// lonScaleAt is the ratio of east-west to north-south meters per degree at
// the given latitude. Clamped so segments at the poles stay projectable.
func lonScaleAt(lat float64) float64 {
	scale := math.Cos(lat * math.Pi / 180)
	if scale < 0.01 {
		scale = 0.01
	}
	return scale
}
