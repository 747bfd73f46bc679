package main

import (
	"context"
	"log"
	"time"

	_ "trackmap-service/docs"
	"trackmap-service/internal/audit"
	"trackmap-service/internal/cluster"
	"trackmap-service/internal/config"
	"trackmap-service/internal/handlers"
	"trackmap-service/internal/metrics"
	"trackmap-service/internal/models"
	"trackmap-service/internal/repository"
	"trackmap-service/internal/services"
	"trackmap-service/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const geometryCacheSize = 64 << 20 // 64 MiB of simplified geometry
const geometryCacheTTL = time.Hour

// @title TrackMap Service API
// @version 1.0
// @description Upload GPS tracks, deduplicate waypoints into POIs and serve display-ready geometry
// @BasePath /api/map
func main() {
	cfg := InitConfig()
	db := ConnectDatabase(cfg)
	MigrateDatabase(db)
	minioClient := InitMinIOClient(cfg)

	pipelineMetrics := metrics.NewPipelineMetrics()
	auditBus := audit.NewBus(256)
	startAuditLogger(auditBus)

	trackRepo := repository.NewTrackRepository(db)
	poiRepo := repository.NewPoiRepository(db)
	linkRepo := repository.NewLinkRepository(db)

	poiService := services.NewPoiService(poiRepo, auditBus, pipelineMetrics)
	trackService := services.NewTrackService(trackRepo, linkRepo, poiService,
		minioClient, cfg.MinioBucket,
		services.NewGeometryCache(geometryCacheSize, geometryCacheTTL),
		auditBus, pipelineMetrics)
	clusterService := services.NewClusterService(poiRepo, cluster.Config{
		ExpandThreshold:  cfg.ClusterExpandThreshold,
		RadiusPixels:     cfg.ClusterRadiusPixels,
		MaxRadiusDegrees: cluster.DefaultConfig.MaxRadiusDegrees,
	}, pipelineMetrics)

	app := fiber.New()

	//Register Prometheus metrics endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Set up routes for tracks, POIs and clustering
	th := handlers.NewTrackHandler(trackService)
	ph := handlers.NewPoiHandler(poiService)
	ch := handlers.NewClusterHandler(clusterService)
	api := app.Group("/api/map")
	api.Get("/tracks", th.ListTracks)
	api.Post("/tracks", th.UploadTrack)
	api.Get("/tracks/:id", th.GetTrack)
	api.Delete("/tracks/:id", th.DeleteTrack)
	api.Get("/tracks/:id/download", th.DownloadTrack)
	api.Get("/tracks/:id/pois", th.ListTrackPois)
	api.Post("/tracks/:id/links/:poiId", th.LinkPoi)

	api.Post("/pois", ph.CreatePoi)
	api.Get("/pois/clusters", ch.GetClusters)
	api.Get("/pois/nearby", ph.GetPoisNear)
	api.Get("/pois/:id", ph.GetPoi)
	api.Get("/pois/:id/linked", ph.PoiLinked)
	api.Delete("/pois/:id", ph.DeletePoi)

	api.Get("/tolerance", ch.GetTolerance)

	api.Get("/swagger/*", swagger.HandlerDefault)

	// Add Health check endpoint
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	routes := app.GetRoutes()
	log.Println("Registered routes:")
	for _, r := range routes {
		log.Printf("  %s %s\n", r.Method, r.Path)
	}

	// Start the Fiber server
	port := cfg.AppPort
	if port == "" {
		port = "8080"
		log.Printf("Defaulting to port %s", port)
	}
	log.Printf("Server listening on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func InitConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	return cfg
}

func ConnectDatabase(cfg *config.Config) *gorm.DB {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	return db
}

func MigrateDatabase(db *gorm.DB) {
	err := db.AutoMigrate(&models.Track{}, &models.Poi{}, &models.TrackPoiLink{})
	if err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
}

func InitMinIOClient(cfg *config.Config) *minio.Client {
	minioClient, err := storage.NewMinioClient(cfg)
	if err != nil {
		log.Fatalf("MinIO client initialization failed: %v", err)
	}
	return minioClient
}

// startAuditLogger subscribes the default audit sink, which writes every
// mutation event to the process log.
func startAuditLogger(bus *audit.Bus) {
	events := bus.Subscribe(context.Background(), 256)
	go func() {
		for ev := range events {
			log.Printf("audit: %s %s %s %s", ev.Action, ev.Entity, ev.EntityID, ev.Detail)
		}
	}()
}
