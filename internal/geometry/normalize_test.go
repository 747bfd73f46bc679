package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

// Roughly 0.001 degrees of latitude is 111 m, so these fixtures give
// comfortably distinct segment lengths.

func TestNormalizeSingleSegment(t *testing.T) {
	seg := orb.LineString{{13.0, 52.0}, {13.001, 52.0}, {13.002, 52.0}}
	line, err := Normalize([]orb.LineString{seg})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(line) != 3 {
		t.Fatalf("got %d points, want 3", len(line))
	}
}

// TestNormalizeLongestWins feeds two disconnected segments and expects the
// longer one to be chosen for projection, regardless of order.
func TestNormalizeLongestWins(t *testing.T) {
	long := orb.LineString{{13.0, 52.0}, {13.0, 52.001}}  // ~111 m
	short := orb.LineString{{14.0, 52.0}, {14.0, 52.0005}} // ~55 m

	for _, segments := range [][]orb.LineString{
		{long, short},
		{short, long},
	} {
		line, err := Normalize(segments)
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if line[0][0] != 13.0 {
			t.Errorf("expected the longer segment to win, got start lon %v", line[0][0])
		}
	}
}

// TestNormalizeMergesConnectedSegments checks endpoint-connected segments are
// stitched into one line, including the case where the second segment must be
// reversed first.
func TestNormalizeMergesConnectedSegments(t *testing.T) {
	a := orb.LineString{{13.0, 52.0}, {13.001, 52.0}}
	b := orb.LineString{{13.001, 52.0}, {13.002, 52.0}}
	bReversed := orb.LineString{{13.002, 52.0}, {13.001, 52.0}}

	for name, second := range map[string]orb.LineString{
		"forward":  b,
		"reversed": bReversed,
	} {
		line, err := Normalize([]orb.LineString{a, second})
		if err != nil {
			t.Fatalf("%s: Normalize returned error: %v", name, err)
		}
		if len(line) != 3 {
			t.Fatalf("%s: got %d points, want 3 after merge", name, len(line))
		}
		if line[0][0] != 13.0 || line[2][0] != 13.002 {
			t.Errorf("%s: merged line spans %v..%v, want 13.0..13.002", name, line[0][0], line[2][0])
		}
	}
}

// TestNormalizeMergeBeatsSelection builds two short connected segments whose
// merged length exceeds a third disconnected segment. The merge must happen
// before the longest-wins selection.
func TestNormalizeMergeBeatsSelection(t *testing.T) {
	a := orb.LineString{{13.0, 52.0}, {13.0, 52.0006}}
	b := orb.LineString{{13.0, 52.0006}, {13.0, 52.0012}} // merged: ~133 m
	other := orb.LineString{{14.0, 52.0}, {14.0, 52.0008}} // ~89 m

	line, err := Normalize([]orb.LineString{a, other, b})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if line[0][0] != 13.0 {
		t.Fatalf("expected merged segment pair to win, got start lon %v", line[0][0])
	}
	if len(line) != 3 {
		t.Errorf("got %d points, want 3 after merge", len(line))
	}
}

// TestNormalizeRepairsSegments verifies duplicate consecutive points and
// non-finite coordinates are dropped rather than poisoning projection.
func TestNormalizeRepairsSegments(t *testing.T) {
	seg := orb.LineString{
		{13.0, 52.0},
		{13.0, 52.0}, // duplicate
		{math.NaN(), 52.0},
		{13.001, 52.0},
		{math.Inf(1), math.Inf(1)},
	}
	line, err := Normalize([]orb.LineString{seg})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(line) != 2 {
		t.Fatalf("got %d points, want 2 after repair", len(line))
	}
}

func TestNormalizeNoGeometry(t *testing.T) {
	cases := map[string][]orb.LineString{
		"empty":          {},
		"single point":   {{{13.0, 52.0}}},
		"all duplicates": {{{13.0, 52.0}, {13.0, 52.0}, {13.0, 52.0}}},
		"all non-finite": {{{math.NaN(), 1}, {2, math.Inf(-1)}}},
	}
	for name, segments := range cases {
		if _, err := Normalize(segments); err != ErrNoLinearGeometry {
			t.Errorf("%s: got err %v, want ErrNoLinearGeometry", name, err)
		}
	}
}
