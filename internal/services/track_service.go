package services

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/geo"
	"github.com/pkg/errors"

	"trackmap-service/internal/audit"
	"trackmap-service/internal/extraction"
	"trackmap-service/internal/geometry"
	"trackmap-service/internal/metrics"
	"trackmap-service/internal/models"
	"trackmap-service/internal/repository"
)

// ErrUnsupportedFormat rejects uploads that are neither track files nor
// archives containing them.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoTrackGeometry rejects uploads without a single usable segment.
var ErrNoTrackGeometry = errors.New("uploaded file contains no track geometry")

// TrackDisplay is the read-path payload for one track at one zoom level.
type TrackDisplay struct {
	Track     *models.Track      `json:"track"`
	Geometry  json.RawMessage    `json:"geometry"`
	Tolerance geometry.Tolerance `json:"tolerance"`
}

// TrackService runs the upload pipeline and serves display-ready track data.
type TrackService struct {
	Tracks     repository.TrackRepository
	Links      repository.LinkRepository
	Pois       *PoiService
	Minio      *minio.Client
	BucketName string
	Cache      *GeometryCache
	Audit      *audit.Bus
	Metrics    *metrics.PipelineMetrics
}

// NewTrackService creates a new TrackService with the given collaborators.
func NewTrackService(tracks repository.TrackRepository, links repository.LinkRepository,
	pois *PoiService, minioClient *minio.Client, bucketName string,
	cache *GeometryCache, bus *audit.Bus, m *metrics.PipelineMetrics) *TrackService {
	return &TrackService{
		Tracks:     tracks,
		Links:      links,
		Pois:       pois,
		Minio:      minioClient,
		BucketName: bucketName,
		Cache:      cache,
		Audit:      bus,
		Metrics:    m,
	}
}

// ProcessUpload ingests one uploaded file: extracts geometry and waypoints,
// stores the raw bytes content-addressed in MinIO, persists the track and
// runs the dedup/projection pipeline. Re-uploading identical content returns
// the already-stored track.
func (s *TrackService) ProcessUpload(fileHeader *multipart.FileHeader) (*models.Track, error) {
	ext := filepath.Ext(fileHeader.Filename)
	if !extraction.IsTrackFile(ext) && !extraction.IsArchiveFile(ext) {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", ext)
	}

	srcFile, err := fileHeader.Open()
	if err != nil {
		return nil, errors.Wrap(err, "could not open uploaded file")
	}
	defer srcFile.Close()

	content, err := io.ReadAll(srcFile)
	if err != nil {
		return nil, errors.Wrap(err, "could not read uploaded file")
	}

	sum := md5.Sum(content)
	contentHash := hex.EncodeToString(sum[:])
	if existing, err := s.Tracks.GetByContentHash(contentHash); err == nil {
		log.Printf("Upload %s matches existing track %s, skipping reprocess", fileHeader.Filename, existing.ID)
		return existing, nil
	}

	data, err := s.extractTrackData(fileHeader.Filename, ext, content)
	if err != nil {
		return nil, err
	}
	if len(data.Segments) == 0 {
		return nil, ErrNoTrackGeometry
	}

	storageKey := contentHash + ext
	_, err = s.Minio.PutObject(context.Background(), s.BucketName, storageKey,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: fileHeader.Header.Get("Content-Type")})
	if err != nil {
		return nil, errors.Wrap(err, "could not store raw upload")
	}

	name := data.Name
	if name == "" {
		name = filepath.Base(fileHeader.Filename)
	}
	pointCount := 0
	length := 0.0
	for _, seg := range data.Segments {
		pointCount += len(seg)
		length += geo.LengthHaversine(seg)
	}
	track := &models.Track{
		ID:               uuid.New(),
		Name:             name,
		OriginalFilename: fileHeader.Filename,
		ContentHash:      contentHash,
		StorageKey:       storageKey,
		LengthMeters:     length,
		PointCount:       pointCount,
	}
	if err := track.SetSegments(data.Segments); err != nil {
		return nil, err
	}
	if err := s.Tracks.Create(track); err != nil {
		return nil, errors.Wrap(err, "could not create track")
	}

	if err := s.processWaypoints(track, data.Segments, data.Waypoints); err != nil {
		return nil, err
	}

	if s.Metrics != nil {
		s.Metrics.IncrementTracksProcessed()
	}
	if s.Audit != nil {
		s.Audit.Publish("track.created", "track", track.ID.String(), track.Name)
	}
	return track, nil
}

// extractTrackData resolves the upload into parsed GPX content, unpacking
// archives when needed.
func (s *TrackService) extractTrackData(filename, ext string, content []byte) (*extraction.TrackData, error) {
	if extraction.IsTrackFile(ext) {
		return extraction.ParseGPX(bytes.NewReader(content))
	}

	tempFile, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return nil, errors.Wrap(err, "could not create temporary file")
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)
	if _, err := tempFile.Write(content); err != nil {
		tempFile.Close()
		return nil, errors.Wrap(err, "could not write temporary file")
	}
	tempFile.Close()

	files, destDir, err := extraction.ExtractArchive(tempPath)
	if err != nil {
		return nil, errors.Wrapf(err, "could not extract archive %s", filename)
	}
	defer os.RemoveAll(destDir)
	if len(files) == 0 {
		return nil, errors.Wrapf(ErrNoTrackGeometry, "archive %s contains no track files", filename)
	}

	trackFile, err := os.Open(files[0])
	if err != nil {
		return nil, errors.Wrap(err, "could not open extracted track file")
	}
	defer trackFile.Close()
	return extraction.ParseGPX(trackFile)
}

// processWaypoints runs dedup and batch projection for one track's waypoint
// set and replaces its link rows. Normalization failure is soft: links are
// still written, with nil distances and encounter ordering.
func (s *TrackService) processWaypoints(track *models.Track, segments []orb.LineString, records []extraction.WaypointRecord) error {
	if s.Metrics != nil {
		s.Metrics.AddWaypointsIngested(len(records))
	}
	if len(records) == 0 {
		return nil
	}

	line, err := geometry.Normalize(segments)
	if err != nil {
		log.Printf("Track %s: no projection line (%v), link distances will be null", track.ID, err)
		if s.Metrics != nil {
			s.Metrics.IncrementNormalizeFailures()
		}
		line = nil
	}

	seen := make(map[uuid.UUID]bool, len(records))
	waypoints := make([]geometry.Waypoint, 0, len(records))
	for i, rec := range records {
		poi, err := s.Pois.FindOrCreate(PoiCandidate{
			Name:        rec.Name,
			Description: rec.Description,
			Category:    rec.Category,
			Lat:         rec.Lat,
			Lon:         rec.Lon,
			Elevation:   rec.Elevation,
		})
		if errors.Is(err, models.ErrInvalidPoi) {
			log.Printf("Track %s: skipping unnamed waypoint %d", track.ID, i)
			continue
		}
		if err != nil {
			return err
		}
		// Two waypoints in the same rounded bucket resolve to one POI;
		// only the first occurrence gets a link.
		if seen[poi.ID] {
			continue
		}
		seen[poi.ID] = true
		waypoints = append(waypoints, geometry.Waypoint{
			PoiID: poi.ID,
			Index: i,
			Point: orb.Point{rec.Lon, rec.Lat},
		})
	}

	return s.replaceLinks(track.ID, line, waypoints)
}

// replaceLinks assigns distance and sequence order for a full waypoint batch
// and swaps the track's link rows transactionally.
func (s *TrackService) replaceLinks(trackID uuid.UUID, line orb.LineString, waypoints []geometry.Waypoint) error {
	start := time.Now()
	ordered := geometry.AssignOrder(line, waypoints)
	if s.Metrics != nil {
		s.Metrics.RecordProjectionLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}

	links := make([]models.TrackPoiLink, len(ordered))
	for i, ow := range ordered {
		links[i] = models.TrackPoiLink{
			ID:             uuid.New(),
			TrackID:        trackID,
			PoiID:          ow.PoiID,
			DistanceMeters: ow.DistanceMeters,
			SequenceOrder:  ow.SequenceOrder,
			WaypointIndex:  ow.Index,
		}
	}
	if err := s.Links.ReplaceForTrack(trackID, links); err != nil {
		return errors.Wrap(err, "could not replace track links")
	}
	if s.Audit != nil {
		s.Audit.Publish("links.replaced", "track", trackID.String(), fmt.Sprintf("%d links", len(links)))
	}
	return nil
}

// LinkPoi attaches one POI to a track at the given waypoint index and
// reorders the whole batch, returning the resulting link.
func (s *TrackService) LinkPoi(trackID, poiID uuid.UUID, waypointIndex int) (*models.TrackPoiLink, error) {
	track, err := s.Tracks.GetByID(trackID)
	if err != nil {
		return nil, err
	}
	poi, err := s.Pois.Get(poiID)
	if err != nil {
		return nil, err
	}
	segments, err := track.Segments()
	if err != nil {
		return nil, err
	}
	line, err := geometry.Normalize(segments)
	if err != nil {
		line = nil
	}

	existing, err := s.Links.ListByTrack(trackID)
	if err != nil {
		return nil, err
	}
	waypoints := make([]geometry.Waypoint, 0, len(existing)+1)
	for _, link := range existing {
		if link.PoiID == poiID || link.Poi == nil {
			continue
		}
		waypoints = append(waypoints, geometry.Waypoint{
			PoiID: link.PoiID,
			Index: link.WaypointIndex,
			Point: orb.Point{link.Poi.Longitude, link.Poi.Latitude},
		})
	}
	waypoints = append(waypoints, geometry.Waypoint{
		PoiID: poiID,
		Index: waypointIndex,
		Point: orb.Point{poi.Longitude, poi.Latitude},
	})
	// Restore encounter order so distance ties break the same way the
	// original batch broke them.
	sort.SliceStable(waypoints, func(i, j int) bool { return waypoints[i].Index < waypoints[j].Index })

	if err := s.replaceLinks(trackID, line, waypoints); err != nil {
		return nil, err
	}

	links, err := s.Links.ListByTrack(trackID)
	if err != nil {
		return nil, err
	}
	for i := range links {
		if links[i].PoiID == poiID {
			return &links[i], nil
		}
	}
	return nil, errors.New("link not found after replace")
}

// Get retrieves a track by ID.
func (s *TrackService) Get(id uuid.UUID) (*models.Track, error) {
	return s.Tracks.GetByID(id)
}

// List retrieves all tracks.
func (s *TrackService) List() ([]models.Track, error) {
	return s.Tracks.List()
}

// LinksForTrack retrieves a track's POI links in sequence order.
func (s *TrackService) LinksForTrack(id uuid.UUID) ([]models.TrackPoiLink, error) {
	if _, err := s.Tracks.GetByID(id); err != nil {
		return nil, err
	}
	return s.Links.ListByTrack(id)
}

// DisplayGeometry returns the track with its geometry simplified for the
// requested zoom. Simplified payloads are cached per track and tolerance;
// the cache key goes through the same resolver as the simplification itself
// so both paths can never disagree on the tolerance.
func (s *TrackService) DisplayGeometry(id uuid.UUID, zoom float64) (*TrackDisplay, error) {
	track, err := s.Tracks.GetByID(id)
	if err != nil {
		return nil, err
	}
	tol := geometry.ForZoom(zoom)
	cacheKey := fmt.Sprintf("%s:%.6f", id, tol.Degrees)
	if s.Cache != nil {
		if data, ok := s.Cache.Get(cacheKey); ok {
			return &TrackDisplay{Track: track, Geometry: data, Tolerance: tol}, nil
		}
	}

	segments, err := track.Segments()
	if err != nil {
		return nil, err
	}
	simplified, tol := geometry.SimplifyForZoom(segments, zoom)
	payload, err := geojson.NewGeometry(orb.MultiLineString(simplified)).MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "could not encode simplified geometry")
	}
	if s.Cache != nil {
		s.Cache.Store(cacheKey, payload)
	}
	return &TrackDisplay{Track: track, Geometry: payload, Tolerance: tol}, nil
}

// Download streams the raw uploaded file from object storage.
func (s *TrackService) Download(id uuid.UUID) (io.ReadCloser, *models.Track, error) {
	track, err := s.Tracks.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.Minio.GetObject(context.Background(), s.BucketName, track.StorageKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not fetch raw track file")
	}
	return obj, track, nil
}

// Delete removes a track, its links, its cached display geometry and the
// stored raw file.
func (s *TrackService) Delete(id uuid.UUID) error {
	track, err := s.Tracks.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.Links.DeleteByTrack(id); err != nil {
		return errors.Wrap(err, "could not delete track links")
	}
	if err := s.Tracks.Delete(id); err != nil {
		return errors.Wrap(err, "could not delete track")
	}
	if s.Cache != nil {
		s.Cache.InvalidatePrefix(id.String())
	}
	if err := s.Minio.RemoveObject(context.Background(), s.BucketName, track.StorageKey, minio.RemoveObjectOptions{}); err != nil {
		log.Printf("Could not remove stored file %s: %v", track.StorageKey, err)
	}
	if s.Audit != nil {
		s.Audit.Publish("track.deleted", "track", id.String(), track.Name)
	}
	return nil
}
