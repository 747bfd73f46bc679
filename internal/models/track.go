package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// Track represents an uploaded GPS track. Geometry keeps the raw
// multi-segment shape as GeoJSON; gaps between segments are preserved
// because the renderer draws them as breaks.
type Track struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name             string    `json:"name"`
	OriginalFilename string    `json:"original_filename"`
	ContentHash      string    `json:"content_hash" gorm:"size:32;uniqueIndex"`
	StorageKey       string    `json:"storage_key"`
	Geometry         []byte    `json:"-" gorm:"type:jsonb"`
	LengthMeters     float64   `json:"length_meters"`
	PointCount       int       `json:"point_count"`
	UploadedAt       time.Time `json:"uploaded_at" gorm:"autoCreateTime"`

	Links []TrackPoiLink `json:"-" gorm:"foreignKey:TrackID;constraint:OnDelete:CASCADE"`
}

// SetSegments stores the multi-segment geometry as GeoJSON.
func (t *Track) SetSegments(segments []orb.LineString) error {
	data, err := geojson.NewGeometry(orb.MultiLineString(segments)).MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "could not encode track geometry")
	}
	t.Geometry = data
	return nil
}

// Segments decodes the stored GeoJSON geometry back into line segments.
func (t *Track) Segments() ([]orb.LineString, error) {
	if len(t.Geometry) == 0 {
		return nil, nil
	}
	g, err := geojson.UnmarshalGeometry(t.Geometry)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode track geometry")
	}
	mls, ok := g.Geometry().(orb.MultiLineString)
	if !ok {
		return nil, errors.Errorf("unexpected geometry type %s", g.Type)
	}
	return []orb.LineString(mls), nil
}
