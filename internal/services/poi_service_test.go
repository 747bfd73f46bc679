package services

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"trackmap-service/internal/models"
)

// fakePoiRepository mimics the database upsert semantics in memory: the
// dedup key is the identity, collisions merge first-non-null, and the
// original row's ID survives.
type fakePoiRepository struct {
	byKey  map[string]*models.Poi
	linked map[uuid.UUID]bool
}

func newFakePoiRepository() *fakePoiRepository {
	return &fakePoiRepository{
		byKey:  map[string]*models.Poi{},
		linked: map[uuid.UUID]bool{},
	}
}

func (f *fakePoiRepository) Upsert(poi *models.Poi) error {
	existing, ok := f.byKey[poi.DedupKey]
	if !ok {
		stored := *poi
		f.byKey[poi.DedupKey] = &stored
		return nil
	}
	if existing.Description == nil {
		existing.Description = poi.Description
	}
	if existing.Category == nil {
		existing.Category = poi.Category
	}
	if existing.Elevation == nil {
		existing.Elevation = poi.Elevation
	}
	if existing.OwnerID == nil {
		existing.OwnerID = poi.OwnerID
	}
	return nil
}

func (f *fakePoiRepository) GetByID(id uuid.UUID) (*models.Poi, error) {
	for _, poi := range f.byKey {
		if poi.ID == id {
			return poi, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePoiRepository) GetByDedupKey(key string) (*models.Poi, error) {
	if poi, ok := f.byKey[key]; ok {
		return poi, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePoiRepository) Delete(id uuid.UUID) error {
	for key, poi := range f.byKey {
		if poi.ID == id {
			delete(f.byKey, key)
			return nil
		}
	}
	return nil
}

func (f *fakePoiRepository) IsLinked(id uuid.UUID) (bool, error) {
	return f.linked[id], nil
}

func (f *fakePoiRepository) ListInBounds(minLat, maxLat, minLon, maxLon float64) ([]models.Poi, error) {
	var out []models.Poi
	for _, poi := range f.byKey {
		if poi.Latitude >= minLat && poi.Latitude <= maxLat &&
			poi.Longitude >= minLon && poi.Longitude <= maxLon {
			out = append(out, *poi)
		}
	}
	return out, nil
}

func (f *fakePoiRepository) FindNear(lat, lng, radiusMeters float64) ([]models.Poi, error) {
	return nil, nil
}

func newTestPoiService() (*PoiService, *fakePoiRepository) {
	repo := newFakePoiRepository()
	return &PoiService{Repo: repo}, repo
}

// TestFindOrCreateIdempotent submits the same observation twice and expects
// one stored row with a stable ID.
func TestFindOrCreateIdempotent(t *testing.T) {
	svc, repo := newTestPoiService()

	first, err := svc.FindOrCreate(PoiCandidate{Name: "Water", Lat: 55.70000, Lon: 37.60000})
	if err != nil {
		t.Fatalf("first FindOrCreate error: %v", err)
	}
	second, err := svc.FindOrCreate(PoiCandidate{Name: "water", Lat: 55.70000, Lon: 37.60000})
	if err != nil {
		t.Fatalf("second FindOrCreate error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("resolved IDs differ: %s vs %s", first.ID, second.ID)
	}
	if len(repo.byKey) != 1 {
		t.Errorf("stored %d rows, want 1", len(repo.byKey))
	}
}

// TestFindOrCreateRoundingBuckets checks coordinate rounding: points in the
// same 1e-5 bucket collapse, points one bucket over do not.
func TestFindOrCreateRoundingBuckets(t *testing.T) {
	svc, repo := newTestPoiService()

	a, _ := svc.FindOrCreate(PoiCandidate{Name: "Water", Lat: 55.70000, Lon: 37.60000})
	b, _ := svc.FindOrCreate(PoiCandidate{Name: "Water", Lat: 55.700001, Lon: 37.60000})
	if a.ID != b.ID {
		t.Error("same-bucket observations did not collapse")
	}

	c, _ := svc.FindOrCreate(PoiCandidate{Name: "Water", Lat: 55.70100, Lon: 37.60000})
	if c.ID == a.ID {
		t.Error("distinct-bucket observation collapsed")
	}
	if len(repo.byKey) != 2 {
		t.Errorf("stored %d rows, want 2", len(repo.byKey))
	}
}

// TestFindOrCreateMergesMetadata verifies first-non-null metadata merge: an
// existing value is never overwritten, a missing one is filled in.
func TestFindOrCreateMergesMetadata(t *testing.T) {
	svc, _ := newTestPoiService()
	ele1 := 120.0
	ele2 := 999.0

	first, err := svc.FindOrCreate(PoiCandidate{
		Name: "Spring", Lat: 48.1, Lon: 11.5,
		Description: "cold water", Elevation: &ele1,
	})
	if err != nil {
		t.Fatalf("FindOrCreate error: %v", err)
	}

	merged, err := svc.FindOrCreate(PoiCandidate{
		Name: "Spring", Lat: 48.1, Lon: 11.5,
		Description: "different text", Category: "water", Elevation: &ele2,
	})
	if err != nil {
		t.Fatalf("FindOrCreate error: %v", err)
	}

	if merged.ID != first.ID {
		t.Fatal("merge produced a new row")
	}
	if merged.Description == nil || *merged.Description != "cold water" {
		t.Errorf("description = %v, want original kept", merged.Description)
	}
	if merged.Elevation == nil || *merged.Elevation != 120.0 {
		t.Errorf("elevation = %v, want original kept", merged.Elevation)
	}
	if merged.Category == nil || *merged.Category != "water" {
		t.Errorf("category = %v, want filled from second observation", merged.Category)
	}
}

func TestFindOrCreateInvalidName(t *testing.T) {
	svc, _ := newTestPoiService()
	if _, err := svc.FindOrCreate(PoiCandidate{Name: "   ", Lat: 1, Lon: 2}); err != models.ErrInvalidPoi {
		t.Errorf("err = %v, want ErrInvalidPoi", err)
	}
}

// TestDeletePolicy covers the three refusal paths: linked POIs, owner
// mismatch, and the happy path for an unowned unlinked POI.
func TestDeletePolicy(t *testing.T) {
	svc, repo := newTestPoiService()

	owner := uuid.New()
	stranger := uuid.New()

	plain, _ := svc.FindOrCreate(PoiCandidate{Name: "Plain", Lat: 1, Lon: 1})
	owned, _ := svc.FindOrCreate(PoiCandidate{Name: "Owned", Lat: 2, Lon: 2, Owner: &owner})
	linked, _ := svc.FindOrCreate(PoiCandidate{Name: "Linked", Lat: 3, Lon: 3})
	repo.linked[linked.ID] = true

	if err := svc.Delete(linked.ID, nil); err != ErrPoiLinked {
		t.Errorf("deleting linked poi: err = %v, want ErrPoiLinked", err)
	}
	if err := svc.Delete(owned.ID, &stranger); err != ErrNotOwner {
		t.Errorf("deleting owned poi as stranger: err = %v, want ErrNotOwner", err)
	}
	if err := svc.Delete(owned.ID, nil); err != ErrNotOwner {
		t.Errorf("deleting owned poi anonymously: err = %v, want ErrNotOwner", err)
	}
	if err := svc.Delete(owned.ID, &owner); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
	if err := svc.Delete(plain.ID, nil); err != nil {
		t.Errorf("plain delete failed: %v", err)
	}
	if _, err := repo.GetByID(plain.ID); err != gorm.ErrRecordNotFound {
		t.Error("plain poi still present after delete")
	}
}
