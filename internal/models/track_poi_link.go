package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackPoiLink associates a POI with a track. DistanceMeters is nil when the
// track geometry could not be normalized into a projection line (soft
// failure: the link still exists, only the distance is unknown). For a fixed
// track, SequenceOrder is a total order consistent with ascending distance,
// ties broken by original waypoint encounter order.
type TrackPoiLink struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TrackID        uuid.UUID `json:"track_id" gorm:"type:uuid;not null;uniqueIndex:idx_track_poi;uniqueIndex:idx_track_seq"`
	PoiID          uuid.UUID `json:"poi_id" gorm:"type:uuid;not null;uniqueIndex:idx_track_poi"`
	DistanceMeters *float64  `json:"distance_meters,omitempty"`
	SequenceOrder  int       `json:"sequence_order" gorm:"not null;uniqueIndex:idx_track_seq"`
	WaypointIndex  int       `json:"waypoint_index"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Poi   *Poi   `json:"poi,omitempty" gorm:"foreignKey:PoiID;constraint:OnDelete:CASCADE"`
	Track *Track `json:"-" gorm:"foreignKey:TrackID;constraint:OnDelete:CASCADE"`
}
