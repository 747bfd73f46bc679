package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics holds all Prometheus metrics for the geospatial pipeline.
type PipelineMetrics struct {
	tracksProcessed   prometheus.Counter
	waypointsIngested prometheus.Counter
	poiUpserts        *prometheus.CounterVec
	normalizeFailures prometheus.Counter
	projectionLatency prometheus.Histogram
	clusterLatency    prometheus.Histogram
	clusterPoints     prometheus.Histogram
}

// NewPipelineMetrics creates and registers all pipeline metrics.
func NewPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		tracksProcessed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tracks_processed_total",
				Help: "Total number of track uploads processed",
			},
		),
		waypointsIngested: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "waypoints_ingested_total",
				Help: "Total number of waypoint records handed to the pipeline",
			},
		),
		poiUpserts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poi_upserts_total",
				Help: "Total number of POI upserts by outcome",
			},
			[]string{"outcome"}, // created or merged
		),
		normalizeFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "geometry_normalize_failures_total",
				Help: "Tracks whose geometry produced no projection line",
			},
		),
		projectionLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "projection_batch_latency_ms",
				Help:    "Latency of batch distance/order assignment per track in milliseconds",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),
		clusterLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cluster_request_latency_ms",
				Help:    "Latency of viewport clustering in milliseconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250},
			},
		),
		clusterPoints: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cluster_input_points",
				Help:    "Number of POIs fed into one clustering request",
				Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
			},
		),
	}
}

// IncrementTracksProcessed counts one processed upload.
func (m *PipelineMetrics) IncrementTracksProcessed() {
	m.tracksProcessed.Inc()
}

// AddWaypointsIngested counts waypoint records handed to the pipeline.
func (m *PipelineMetrics) AddWaypointsIngested(n int) {
	m.waypointsIngested.Add(float64(n))
}

// IncrementPoiUpsert counts one POI upsert with its outcome.
func (m *PipelineMetrics) IncrementPoiUpsert(outcome string) {
	m.poiUpserts.WithLabelValues(outcome).Inc()
}

// IncrementNormalizeFailures counts one track without linear geometry.
func (m *PipelineMetrics) IncrementNormalizeFailures() {
	m.normalizeFailures.Inc()
}

// RecordProjectionLatency records one batch order assignment.
func (m *PipelineMetrics) RecordProjectionLatency(milliseconds float64) {
	m.projectionLatency.Observe(milliseconds)
}

// RecordClusterRequest records one clustering request.
func (m *PipelineMetrics) RecordClusterRequest(milliseconds float64, points int) {
	m.clusterLatency.Observe(milliseconds)
	m.clusterPoints.Observe(float64(points))
}
