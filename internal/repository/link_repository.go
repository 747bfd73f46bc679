package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"trackmap-service/internal/models"
)

// LinkRepository interface defines methods for track-POI association rows.
type LinkRepository interface {
	ReplaceForTrack(trackID uuid.UUID, links []models.TrackPoiLink) error
	ListByTrack(trackID uuid.UUID) ([]models.TrackPoiLink, error)
	DeleteByTrack(trackID uuid.UUID) error
}

// LinkRepositoryImpl provides methods to interact with TrackPoiLink rows in the database.
type LinkRepositoryImpl struct {
	db *gorm.DB
}

// NewLinkRepository creates a new LinkRepositoryImpl instance with the provided GORM database connection.
func NewLinkRepository(db *gorm.DB) *LinkRepositoryImpl {
	return &LinkRepositoryImpl{db: db}
}

// ReplaceForTrack swaps the full link set of one track in a single
// transaction. Order assignment needs the whole waypoint batch, so links are
// always written as a unit; a reader never observes a half-reordered track.
func (r *LinkRepositoryImpl) ReplaceForTrack(trackID uuid.UUID, links []models.TrackPoiLink) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.TrackPoiLink{}, "track_id = ?", trackID).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
}

// ListByTrack retrieves a track's links with their POIs, in sequence order.
func (r *LinkRepositoryImpl) ListByTrack(trackID uuid.UUID) ([]models.TrackPoiLink, error) {
	var links []models.TrackPoiLink
	err := r.db.Preload("Poi").
		Where("track_id = ?", trackID).
		Order("sequence_order").
		Find(&links).Error
	return links, err
}

// DeleteByTrack removes all links of a track.
func (r *LinkRepositoryImpl) DeleteByTrack(trackID uuid.UUID) error {
	return r.db.Delete(&models.TrackPoiLink{}, "track_id = ?", trackID).Error
}
