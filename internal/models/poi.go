package models

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrInvalidPoi rejects POI candidates whose name is empty after trimming.
var ErrInvalidPoi = errors.New("poi name is empty")

// Poi is a point of interest, either extracted from an uploaded track or
// created manually. OwnerID is set only for manual POIs. DedupKey is the
// content-addressed identity: two observations of the same rounded location
// and normalized name must collapse into one row, which the unique index
// enforces under concurrent writers.
type Poi struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string     `json:"name" gorm:"not null"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Elevation   *float64   `json:"elevation,omitempty"`
	DedupKey    string     `json:"-" gorm:"size:32;uniqueIndex;not null"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty" gorm:"type:uuid"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// coordinatePrecision is the dedup rounding factor: 5 decimal places, about
// 1.1 m north-south at any latitude.
const coordinatePrecision = 100000

// DedupKey derives the content hash that identifies a POI:
//
//	md5( pad10(floor(lat*1e5)) + pad10(floor(lon*1e5)) + lowercase(trim(name)) )
//
// The 10-digit zero-padded encoding is defined for non-negative values;
// negative floored coordinates carry the sign out-of-band as an "n" prefix
// on the padded absolute value, keeping positive-hemisphere keys bit-exact
// with the published format. The key must be computed on every write path;
// no row may reach the database without it.
func DedupKey(name string, lat, lon float64) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return "", ErrInvalidPoi
	}
	sum := md5.Sum([]byte(encodeCoordinate(lat) + encodeCoordinate(lon) + normalized))
	return hex.EncodeToString(sum[:]), nil
}

func encodeCoordinate(v float64) string {
	n := int64(math.Floor(v * coordinatePrecision))
	if n < 0 {
		return fmt.Sprintf("n%010d", -n)
	}
	return fmt.Sprintf("%010d", n)
}
