package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trackmap-service/internal/models"
	"trackmap-service/internal/utils"
)

// PoiRepository interface defines methods for POI persistence.
type PoiRepository interface {
	Upsert(poi *models.Poi) error
	GetByID(id uuid.UUID) (*models.Poi, error)
	GetByDedupKey(key string) (*models.Poi, error)
	Delete(id uuid.UUID) error
	IsLinked(id uuid.UUID) (bool, error)
	ListInBounds(minLat, maxLat, minLon, maxLon float64) ([]models.Poi, error)
	FindNear(lat, lng, radiusMeters float64) ([]models.Poi, error)
}

// PoiRepositoryImpl provides methods to interact with the Poi model in the database.
type PoiRepositoryImpl struct {
	db *gorm.DB
}

// NewPoiRepository creates a new PoiRepositoryImpl instance with the provided GORM database connection.
func NewPoiRepository(db *gorm.DB) *PoiRepositoryImpl {
	return &PoiRepositoryImpl{db: db}
}

// Upsert inserts the POI or, when a row with the same dedup key already
// exists, merges metadata into it with first-non-null-wins semantics and
// refreshes the modification timestamp. The conflict target is the unique
// index on dedup_key, so two concurrent writers with the same key converge
// on one row without application-level locking. Callers read the surviving
// row back via GetByDedupKey; the insert candidate's ID is not authoritative.
func (r *PoiRepositoryImpl) Upsert(poi *models.Poi) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "dedup_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"description": gorm.Expr("COALESCE(pois.description, EXCLUDED.description)"),
			"category":    gorm.Expr("COALESCE(pois.category, EXCLUDED.category)"),
			"elevation":   gorm.Expr("COALESCE(pois.elevation, EXCLUDED.elevation)"),
			"owner_id":    gorm.Expr("COALESCE(pois.owner_id, EXCLUDED.owner_id)"),
			"updated_at":  time.Now(),
		}),
	}).Create(poi).Error
}

// GetByID retrieves a Poi by its ID.
func (r *PoiRepositoryImpl) GetByID(id uuid.UUID) (*models.Poi, error) {
	var poi models.Poi
	err := r.db.First(&poi, "id = ?", id).Error
	return &poi, err
}

// GetByDedupKey retrieves the canonical Poi row for a dedup key.
func (r *PoiRepositoryImpl) GetByDedupKey(key string) (*models.Poi, error) {
	var poi models.Poi
	err := r.db.First(&poi, "dedup_key = ?", key).Error
	return &poi, err
}

// Delete deletes a Poi by its ID. Link rows cascade.
func (r *PoiRepositoryImpl) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Poi{}, "id = ?", id).Error
}

// IsLinked reports whether any track still references the POI. Deletion
// policy (refuse while linked) is decided by callers on top of this fact.
func (r *PoiRepositoryImpl) IsLinked(id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.TrackPoiLink{}).Where("poi_id = ?", id).Count(&count).Error
	return count > 0, err
}

// ListInBounds retrieves all POIs inside a viewport bounding box, ordered by
// creation time so clustering sees a stable input order.
func (r *PoiRepositoryImpl) ListInBounds(minLat, maxLat, minLon, maxLon float64) ([]models.Poi, error) {
	var pois []models.Poi
	err := r.db.Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLon, maxLon).
		Order("created_at, id").
		Find(&pois).Error
	return pois, err
}

// FindNear finds POIs within a radius of a point using a bounding box
// prefilter and an exact geodesic distance check.
func (r *PoiRepositoryImpl) FindNear(lat, lng, radiusMeters float64) ([]models.Poi, error) {
	minLat, maxLat, minLng, maxLng := utils.CalculateBoundingBox(lat, lng, radiusMeters)

	candidates, err := r.ListInBounds(minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, err
	}

	center := orb.Point{lng, lat}
	var filtered []models.Poi
	for _, poi := range candidates {
		if geo.DistanceHaversine(center, orb.Point{poi.Longitude, poi.Latitude}) <= radiusMeters {
			filtered = append(filtered, poi)
		}
	}
	return filtered, nil
}
