package services

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"trackmap-service/internal/audit"
	"trackmap-service/internal/metrics"
	"trackmap-service/internal/models"
	"trackmap-service/internal/repository"
)

// ErrPoiLinked rejects deletion of a POI still referenced by a track.
var ErrPoiLinked = errors.New("poi is still linked to a track")

// ErrNotOwner rejects deletion of an owned POI by someone else.
var ErrNotOwner = errors.New("poi belongs to a different owner")

// PoiCandidate is the input to find-or-create, either a waypoint record from
// an upload or a manual creation request.
type PoiCandidate struct {
	Name        string
	Description string
	Category    string
	Lat         float64
	Lon         float64
	Elevation   *float64
	Owner       *uuid.UUID // set only for manually created POIs
}

// PoiService provides deduplicated POI creation and deletion policy facts.
type PoiService struct {
	Repo    repository.PoiRepository
	Audit   *audit.Bus
	Metrics *metrics.PipelineMetrics
}

// NewPoiService creates a new PoiService with the given repository and collaborators.
func NewPoiService(repo repository.PoiRepository, bus *audit.Bus, m *metrics.PipelineMetrics) *PoiService {
	return &PoiService{Repo: repo, Audit: bus, Metrics: m}
}

// FindOrCreate resolves a candidate to the single stored POI with the same
// dedup key, creating it if absent. The upsert is atomic on the dedup_key
// uniqueness constraint, so concurrent calls with the same effective key
// converge on one row; a conflict is the expected success path, not an
// error. Metadata merges first-non-null-wins on collision.
func (s *PoiService) FindOrCreate(candidate PoiCandidate) (*models.Poi, error) {
	key, err := models.DedupKey(candidate.Name, candidate.Lat, candidate.Lon)
	if err != nil {
		return nil, err
	}

	poi := &models.Poi{
		ID:        uuid.New(),
		Name:      candidate.Name,
		Latitude:  candidate.Lat,
		Longitude: candidate.Lon,
		Elevation: candidate.Elevation,
		DedupKey:  key,
		OwnerID:   candidate.Owner,
	}
	if candidate.Description != "" {
		desc := candidate.Description
		poi.Description = &desc
	}
	if candidate.Category != "" {
		cat := candidate.Category
		poi.Category = &cat
	}

	if err := s.Repo.Upsert(poi); err != nil {
		return nil, errors.Wrap(err, "poi upsert failed")
	}

	// The insert candidate's ID only survives when no row with this key
	// existed; read the canonical row back either way.
	stored, err := s.Repo.GetByDedupKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "could not load poi after upsert")
	}

	outcome := "merged"
	if stored.ID == poi.ID {
		outcome = "created"
	}
	if s.Metrics != nil {
		s.Metrics.IncrementPoiUpsert(outcome)
	}
	if s.Audit != nil {
		s.Audit.Publish("poi."+outcome, "poi", stored.ID.String(), stored.Name)
	}
	return stored, nil
}

// Get retrieves a POI by ID.
func (s *PoiService) Get(id uuid.UUID) (*models.Poi, error) {
	return s.Repo.GetByID(id)
}

// FindNear finds POIs within a radius of a point.
func (s *PoiService) FindNear(lat, lng, radiusMeters float64) ([]models.Poi, error) {
	return s.Repo.FindNear(lat, lng, radiusMeters)
}

// IsLinked reports whether the POI is currently linked to any track.
func (s *PoiService) IsLinked(id uuid.UUID) (bool, error) {
	return s.Repo.IsLinked(id)
}

// Delete removes a POI subject to policy: still-linked POIs and owned POIs
// requested by someone else are refused.
func (s *PoiService) Delete(id uuid.UUID, requester *uuid.UUID) error {
	poi, err := s.Repo.GetByID(id)
	if err != nil {
		return err
	}
	linked, err := s.Repo.IsLinked(id)
	if err != nil {
		return errors.Wrap(err, "could not check poi links")
	}
	if linked {
		return ErrPoiLinked
	}
	if poi.OwnerID != nil && (requester == nil || *requester != *poi.OwnerID) {
		return ErrNotOwner
	}
	if err := s.Repo.Delete(id); err != nil {
		return errors.Wrap(err, "poi delete failed")
	}
	if s.Audit != nil {
		s.Audit.Publish("poi.deleted", "poi", id.String(), poi.Name)
	}
	return nil
}
