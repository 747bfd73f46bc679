package services

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"trackmap-service/internal/cluster"
	"trackmap-service/internal/metrics"
	"trackmap-service/internal/repository"
)

// ClusterService computes viewport clusters over the stored POI set.
// Clustering is read-only and side-effect-free; results are never persisted
// and a superseded request can simply be discarded.
type ClusterService struct {
	Pois    repository.PoiRepository
	Config  cluster.Config
	Metrics *metrics.PipelineMetrics
}

// NewClusterService creates a new ClusterService with the given repository and defaults.
func NewClusterService(pois repository.PoiRepository, cfg cluster.Config, m *metrics.PipelineMetrics) *ClusterService {
	return &ClusterService{Pois: pois, Config: cfg, Metrics: m}
}

// ClusterViewport loads the POIs visible in the viewport and groups them for
// the given zoom. A zero-valued override falls back to the service defaults.
func (s *ClusterService) ClusterViewport(viewport orb.Bound, zoom float64, override cluster.Config) ([]cluster.Group, error) {
	cfg := s.Config
	if override.ExpandThreshold > 0 {
		cfg.ExpandThreshold = override.ExpandThreshold
	}
	if override.RadiusPixels > 0 {
		cfg.RadiusPixels = override.RadiusPixels
	}

	pois, err := s.Pois.ListInBounds(viewport.Min[1], viewport.Max[1], viewport.Min[0], viewport.Max[0])
	if err != nil {
		return nil, errors.Wrap(err, "could not load pois for viewport")
	}

	points := make([]cluster.Point, len(pois))
	for i, poi := range pois {
		points[i] = cluster.Point{
			ID:  poi.ID,
			Lat: poi.Latitude,
			Lon: poi.Longitude,
		}
		if poi.Category != nil {
			points[i].Category = *poi.Category
		}
	}

	start := time.Now()
	groups := cluster.Cluster(points, viewport, zoom, cfg)
	if s.Metrics != nil {
		s.Metrics.RecordClusterRequest(float64(time.Since(start).Microseconds())/1000.0, len(points))
	}
	return groups, nil
}
