package cluster

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Point is one clusterable POI observation.
type Point struct {
	ID       uuid.UUID
	Lat      float64
	Lon      float64
	Category string
}

// Config drives the grouping. Thresholds are configuration, not constants:
// the UI expands clusters below ExpandThreshold ("spiderfy") and zooms to a
// cluster's bounds at or above it.
type Config struct {
	// ExpandThreshold is the member count at which the UI stops expanding
	// a cluster and zooms to its bounds instead.
	ExpandThreshold int
	// RadiusPixels is the clustering radius on screen; it is converted to
	// degrees at the requested zoom.
	RadiusPixels float64
	// MaxRadiusDegrees caps the converted radius at low zooms.
	MaxRadiusDegrees float64
}

// DefaultConfig mirrors the service defaults used when a request supplies
// no overrides.
var DefaultConfig = Config{
	ExpandThreshold:  12,
	RadiusPixels:     60,
	MaxRadiusDegrees: 1.0,
}

// Group is an ephemeral cluster or singleton for one viewport query. It is
// recomputed per request and carries no stable identity across calls.
type Group struct {
	Lat        float64     `json:"lat"`
	Lon        float64     `json:"lon"`
	Count      int         `json:"count"`
	Category   string      `json:"category,omitempty"`
	Expandable bool        `json:"expandable"`
	MemberIDs  []uuid.UUID `json:"member_ids"`
	Bounds     orb.Bound   `json:"bounds"`
}

const tileSize = 256

type entry struct {
	idx  int
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect { return e.rect }

// Cluster partitions the points visible in viewport into groups for the
// given zoom. Every usable input point lands in exactly one group; points
// with non-finite coordinates are silently dropped so one bad record cannot
// take the whole display down. The sweep walks points in input order, so the
// partition is deterministic for a fixed input, viewport, zoom and config.
func Cluster(points []Point, viewport orb.Bound, zoom float64, cfg Config) []Group {
	cfg = cfg.withDefaults()
	radius := cfg.radiusDegrees(zoom)

	usable := make([]int, 0, len(points))
	for i, p := range points {
		if !finite(p.Lat) || !finite(p.Lon) {
			continue
		}
		if !viewport.Contains(orb.Point{p.Lon, p.Lat}) {
			continue
		}
		usable = append(usable, i)
	}
	if len(usable) == 0 {
		return []Group{}
	}

	tree := rtreego.NewTree(2, 25, 50)
	entries := make([]*entry, 0, len(usable))
	for pos, idx := range usable {
		p := points[idx]
		rect, err := rtreego.NewRect(rtreego.Point{p.Lon, p.Lat}, []float64{1e-10, 1e-10})
		if err != nil {
			continue
		}
		e := &entry{idx: pos, rect: rect}
		entries = append(entries, e)
		tree.Insert(e)
	}

	assigned := make([]bool, len(usable))
	groups := make([]Group, 0, len(usable))
	for pos, idx := range usable {
		if assigned[pos] {
			continue
		}
		seed := points[idx]
		search, err := rtreego.NewRect(
			rtreego.Point{seed.Lon - radius, seed.Lat - radius},
			[]float64{2 * radius, 2 * radius},
		)
		var memberPos []int
		if err == nil {
			for _, s := range tree.SearchIntersect(search) {
				e := s.(*entry)
				if !assigned[e.idx] {
					memberPos = append(memberPos, e.idx)
				}
			}
		}
		if len(memberPos) == 0 {
			memberPos = []int{pos}
		}
		// SearchIntersect order is unspecified; restore input order so the
		// partition and centroids stay deterministic.
		sort.Ints(memberPos)

		members := make([]Point, len(memberPos))
		for i, mp := range memberPos {
			assigned[mp] = true
			members[i] = points[usable[mp]]
		}
		groups = append(groups, makeGroup(members, cfg))
	}
	return groups
}

// makeGroup builds the group for one member set. The representative is the
// member centroid, which always lies within the members' convex hull.
func makeGroup(members []Point, cfg Config) Group {
	g := Group{
		Count:     len(members),
		MemberIDs: make([]uuid.UUID, len(members)),
	}
	var sumLat, sumLon float64
	bounds := orb.Bound{
		Min: orb.Point{members[0].Lon, members[0].Lat},
		Max: orb.Point{members[0].Lon, members[0].Lat},
	}
	shared := members[0].Category
	for i, m := range members {
		g.MemberIDs[i] = m.ID
		sumLat += m.Lat
		sumLon += m.Lon
		bounds = bounds.Extend(orb.Point{m.Lon, m.Lat})
		if m.Category != shared {
			shared = ""
		}
	}
	g.Lat = sumLat / float64(len(members))
	g.Lon = sumLon / float64(len(members))
	g.Bounds = bounds
	g.Category = shared
	g.Expandable = len(members) > 1 && len(members) < cfg.ExpandThreshold
	return g
}

func (c Config) withDefaults() Config {
	if c.ExpandThreshold <= 0 {
		c.ExpandThreshold = DefaultConfig.ExpandThreshold
	}
	if c.RadiusPixels <= 0 {
		c.RadiusPixels = DefaultConfig.RadiusPixels
	}
	if c.MaxRadiusDegrees <= 0 {
		c.MaxRadiusDegrees = DefaultConfig.MaxRadiusDegrees
	}
	return c
}

// radiusDegrees converts the pixel radius to degrees at the given zoom on a
// standard 256px web-mercator tile grid, capped for very low zooms.
func (c Config) radiusDegrees(zoom float64) float64 {
	degPerPixel := 360.0 / (tileSize * math.Pow(2, zoom))
	radius := c.RadiusPixels * degPerPixel
	if radius > c.MaxRadiusDegrees {
		radius = c.MaxRadiusDegrees
	}
	return radius
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
