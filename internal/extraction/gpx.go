package extraction

import (
	"io"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	gpx "github.com/twpayne/go-gpx"
)

// WaypointRecord is one waypoint handed to the processing pipeline.
type WaypointRecord struct {
	Name        string
	Description string
	Category    string
	Lat         float64
	Lon         float64
	Elevation   *float64
}

// TrackData is the extraction result for one GPX file: the raw multi-segment
// geometry plus the waypoint records, in document order.
type TrackData struct {
	Name      string
	Segments  []orb.LineString
	Waypoints []WaypointRecord
}

// ParseGPX reads a GPX document and extracts segments and waypoints. Route
// points are treated as an additional segment so route-only files still
// produce geometry.
func ParseGPX(r io.Reader) (*TrackData, error) {
	doc, err := gpx.Read(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse gpx")
	}

	data := &TrackData{}
	if doc.Metadata != nil {
		data.Name = strings.TrimSpace(doc.Metadata.Name)
	}

	for _, trk := range doc.Trk {
		if data.Name == "" {
			data.Name = strings.TrimSpace(trk.Name)
		}
		for _, seg := range trk.TrkSeg {
			line := make(orb.LineString, 0, len(seg.TrkPt))
			for _, pt := range seg.TrkPt {
				line = append(line, orb.Point{pt.Lon, pt.Lat})
			}
			if len(line) >= 2 {
				data.Segments = append(data.Segments, line)
			}
		}
	}

	for _, rte := range doc.Rte {
		line := make(orb.LineString, 0, len(rte.RtePt))
		for _, pt := range rte.RtePt {
			line = append(line, orb.Point{pt.Lon, pt.Lat})
		}
		if len(line) >= 2 {
			data.Segments = append(data.Segments, line)
		}
	}

	for _, wpt := range doc.Wpt {
		rec := WaypointRecord{
			Name:        strings.TrimSpace(wpt.Name),
			Description: strings.TrimSpace(wpt.Desc),
			Category:    strings.TrimSpace(wpt.Type),
			Lat:         wpt.Lat,
			Lon:         wpt.Lon,
		}
		// GPX cannot distinguish a missing <ele> from sea level, so zero is
		// treated as unset.
		if wpt.Ele != 0 {
			ele := wpt.Ele
			rec.Elevation = &ele
		}
		data.Waypoints = append(data.Waypoints, rec)
	}

	return data, nil
}
