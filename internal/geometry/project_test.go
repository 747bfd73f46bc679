package geometry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// straight west-east line at 52N, about 680 m long
var testLine = orb.LineString{
	{13.000, 52.0},
	{13.004, 52.0},
	{13.010, 52.0},
}

func TestProjectEndpointsAndMidpoint(t *testing.T) {
	start, ok := Project(testLine, orb.Point{13.000, 52.0})
	if !ok {
		t.Fatal("projection reported undefined for valid line")
	}
	if start.DistanceMeters != 0 || start.Fraction != 0 {
		t.Errorf("start projection = %+v, want zero distance and fraction", start)
	}

	end, _ := Project(testLine, orb.Point{13.010, 52.0})
	if end.Fraction != 1 {
		t.Errorf("end fraction = %v, want 1", end.Fraction)
	}

	mid, _ := Project(testLine, orb.Point{13.005, 52.0})
	if mid.Fraction <= start.Fraction || mid.Fraction >= end.Fraction {
		t.Errorf("midpoint fraction %v not strictly between endpoints", mid.Fraction)
	}
}

// TestProjectMonotonic walks points along the line and requires the computed
// distance to be non-decreasing. Sequence order assignment relies on this.
func TestProjectMonotonic(t *testing.T) {
	prev := -1.0
	for _, lon := range []float64{13.000, 13.002, 13.004, 13.006, 13.008, 13.010} {
		proj, ok := Project(testLine, orb.Point{lon, 52.0005})
		if !ok {
			t.Fatalf("projection undefined at lon %v", lon)
		}
		if proj.DistanceMeters < prev {
			t.Fatalf("distance decreased at lon %v: %v < %v", lon, proj.DistanceMeters, prev)
		}
		if proj.Fraction < 0 || proj.Fraction > 1 {
			t.Fatalf("fraction %v outside [0,1] at lon %v", proj.Fraction, lon)
		}
		prev = proj.DistanceMeters
	}
}

// TestProjectOffsetPoint projects a point well off the line and expects it to
// land on the nearest position, not an endpoint.
func TestProjectOffsetPoint(t *testing.T) {
	proj, ok := Project(testLine, orb.Point{13.002, 52.001})
	if !ok {
		t.Fatal("projection reported undefined")
	}
	if proj.Fraction <= 0 || proj.Fraction >= 0.5 {
		t.Errorf("fraction = %v, want interior position in the first half", proj.Fraction)
	}
}

func TestProjectDegenerateLine(t *testing.T) {
	if _, ok := Project(orb.LineString{}, orb.Point{13, 52}); ok {
		t.Error("empty line should be unprojectable")
	}
	if _, ok := Project(orb.LineString{{13, 52}}, orb.Point{13, 52}); ok {
		t.Error("single-point line should be unprojectable")
	}
}

// TestAssignOrderByDistance shuffles waypoints and expects sequence order to
// follow distance along the track, with the original encounter index carried
// through the sort.
func TestAssignOrderByDistance(t *testing.T) {
	far := Waypoint{PoiID: uuid.New(), Index: 0, Point: orb.Point{13.009, 52.0}}
	near := Waypoint{PoiID: uuid.New(), Index: 1, Point: orb.Point{13.001, 52.0}}
	mid := Waypoint{PoiID: uuid.New(), Index: 2, Point: orb.Point{13.005, 52.0}}

	ordered := AssignOrder(testLine, []Waypoint{far, near, mid})
	if len(ordered) != 3 {
		t.Fatalf("got %d results, want 3", len(ordered))
	}
	wantIDs := []uuid.UUID{near.PoiID, mid.PoiID, far.PoiID}
	wantIndexes := []int{1, 2, 0}
	for i, ow := range ordered {
		if ow.SequenceOrder != i {
			t.Errorf("result %d has SequenceOrder %d", i, ow.SequenceOrder)
		}
		if ow.PoiID != wantIDs[i] {
			t.Errorf("result %d is poi %s, want %s", i, ow.PoiID, wantIDs[i])
		}
		if ow.Index != wantIndexes[i] {
			t.Errorf("result %d carries index %d, want %d", i, ow.Index, wantIndexes[i])
		}
		if ow.DistanceMeters == nil {
			t.Errorf("result %d has nil distance", i)
		}
	}
}

// TestAssignOrderStableOnTies projects two waypoints onto the same line
// position and expects encounter order to break the tie.
func TestAssignOrderStableOnTies(t *testing.T) {
	first := Waypoint{PoiID: uuid.New(), Index: 0, Point: orb.Point{13.004, 52.0}}
	second := Waypoint{PoiID: uuid.New(), Index: 1, Point: orb.Point{13.004, 52.0}}

	ordered := AssignOrder(testLine, []Waypoint{first, second})
	if ordered[0].PoiID != first.PoiID || ordered[1].PoiID != second.PoiID {
		t.Error("equal-distance waypoints did not keep encounter order")
	}
}

// TestAssignOrderUndefinedLine checks the soft-failure path: no usable line
// means nil distances and encounter ordering preserved.
func TestAssignOrderUndefinedLine(t *testing.T) {
	wps := []Waypoint{
		{PoiID: uuid.New(), Index: 0, Point: orb.Point{13.009, 52.0}},
		{PoiID: uuid.New(), Index: 1, Point: orb.Point{13.001, 52.0}},
	}
	ordered := AssignOrder(nil, wps)
	for i, ow := range ordered {
		if ow.DistanceMeters != nil {
			t.Errorf("result %d has distance %v, want nil", i, *ow.DistanceMeters)
		}
		if ow.PoiID != wps[i].PoiID || ow.SequenceOrder != i {
			t.Errorf("result %d did not keep encounter order", i)
		}
	}
}
