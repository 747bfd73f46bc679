package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"trackmap-service/internal/models"
)

// TrackRepository interface defines methods for track persistence.
type TrackRepository interface {
	Create(track *models.Track) error
	GetByID(id uuid.UUID) (*models.Track, error)
	GetByContentHash(hash string) (*models.Track, error)
	List() ([]models.Track, error)
	Update(track *models.Track) error
	Delete(id uuid.UUID) error
}

// TrackRepositoryImpl provides methods to interact with the Track model in the database.
type TrackRepositoryImpl struct {
	db *gorm.DB
}

// NewTrackRepository creates a new TrackRepositoryImpl instance with the provided GORM database connection.
func NewTrackRepository(db *gorm.DB) *TrackRepositoryImpl {
	return &TrackRepositoryImpl{db: db}
}

// Create inserts a new Track into the database.
func (r *TrackRepositoryImpl) Create(track *models.Track) error {
	return r.db.Create(track).Error
}

// GetByID retrieves a Track by its ID.
func (r *TrackRepositoryImpl) GetByID(id uuid.UUID) (*models.Track, error) {
	var track models.Track
	err := r.db.First(&track, "id = ?", id).Error
	return &track, err
}

// GetByContentHash retrieves a Track by the content hash of its uploaded
// file. Used to make re-uploads of identical content idempotent.
func (r *TrackRepositoryImpl) GetByContentHash(hash string) (*models.Track, error) {
	var track models.Track
	err := r.db.First(&track, "content_hash = ?", hash).Error
	return &track, err
}

// List retrieves all Tracks from the database.
func (r *TrackRepositoryImpl) List() ([]models.Track, error) {
	var tracks []models.Track
	err := r.db.Order("uploaded_at DESC").Find(&tracks).Error
	return tracks, err
}

// Update updates an existing Track in the database.
func (r *TrackRepositoryImpl) Update(track *models.Track) error {
	return r.db.Save(track).Error
}

// Delete deletes a Track by its ID. Link rows cascade.
func (r *TrackRepositoryImpl) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Track{}, "id = ?", id).Error
}
