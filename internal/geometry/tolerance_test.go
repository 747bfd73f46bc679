package geometry

import (
	"math"
	"testing"
)

// TestForZoomBands verifies the band table end to end, including the clamp
// behavior at both extremes. Display handlers and cache keys both depend on
// these exact values, so any change here is a visible behavior change.
func TestForZoomBands(t *testing.T) {
	tests := []struct {
		zoom float64
		want float64
	}{
		{0, 0.001},
		{5, 0.001},
		{8, 0.001},
		{8.5, 0.0005},
		{10, 0.0005},
		{11, 0.00025},
		{12, 0.00025},
		{13, 0.0001},
		{14, 0.0001},
		{15, 0.00005},
		{16, 0.00005},
		{17, 0.00002},
		{18, 0.00002},
		{22, 0.00002},
	}
	for _, tc := range tests {
		got := ForZoom(tc.zoom)
		if got.Degrees != tc.want {
			t.Errorf("ForZoom(%v).Degrees = %v, want %v", tc.zoom, got.Degrees, tc.want)
		}
	}
}

// TestForZoomMeterApprox checks the meter equivalence tracks the degree
// tolerance at the fixed meridional scale.
func TestForZoomMeterApprox(t *testing.T) {
	for _, zoom := range []float64{4, 9, 12, 14, 16, 20} {
		tol := ForZoom(zoom)
		want := tol.Degrees * 111320.0
		if math.Abs(tol.MeterApprox-want) > 1e-9 {
			t.Errorf("ForZoom(%v).MeterApprox = %v, want %v", zoom, tol.MeterApprox, want)
		}
	}
}

// TestForZoomMonotonic ensures higher zoom never produces a coarser
// tolerance than lower zoom.
func TestForZoomMonotonic(t *testing.T) {
	prev := ForZoom(0).Degrees
	for zoom := 1.0; zoom <= 22; zoom++ {
		cur := ForZoom(zoom).Degrees
		if cur > prev {
			t.Fatalf("tolerance increased from %v to %v at zoom %v", prev, cur, zoom)
		}
		prev = cur
	}
}
