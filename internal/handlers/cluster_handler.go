package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"

	"trackmap-service/internal/cluster"
	"trackmap-service/internal/geometry"
	"trackmap-service/internal/services"
)

// ClusterHandler defines handlers for viewport clustering and the zoom
// tolerance table.
type ClusterHandler struct {
	Service *services.ClusterService
}

// NewClusterHandler creates a new ClusterHandler with the given ClusterService.
func NewClusterHandler(service *services.ClusterService) *ClusterHandler {
	return &ClusterHandler{Service: service}
}

// GetClusters handles GET /pois/clusters to cluster visible POIs.
// @Summary Cluster POIs for a viewport
// @Description Groups the POIs inside the bounding box into clusters for the given zoom; clusters are ephemeral and recomputed per request
// @Tags clusters
// @Produce json
// @Param min_lon query number true "Viewport west edge"
// @Param min_lat query number true "Viewport south edge"
// @Param max_lon query number true "Viewport east edge"
// @Param max_lat query number true "Viewport north edge"
// @Param zoom query number true "Display zoom level"
// @Param expand_threshold query int false "Member count at which clusters stop expanding"
// @Param radius_pixels query number false "Clustering radius in pixels"
// @Success 200 {array} cluster.Group "Clusters and singletons"
// @Failure 400 {object} map[string]interface{} "Invalid viewport"
// @Router /pois/clusters [get]
func (h *ClusterHandler) GetClusters(c *fiber.Ctx) error {
	minLon, err1 := strconv.ParseFloat(c.Query("min_lon"), 64)
	minLat, err2 := strconv.ParseFloat(c.Query("min_lat"), 64)
	maxLon, err3 := strconv.ParseFloat(c.Query("max_lon"), 64)
	maxLat, err4 := strconv.ParseFloat(c.Query("max_lat"), 64)
	zoom, err5 := strconv.ParseFloat(c.Query("zoom"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "min_lon, min_lat, max_lon, max_lat and zoom are required",
		})
	}
	if minLon > maxLon || minLat > maxLat {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "viewport edges are inverted",
		})
	}

	var override cluster.Config
	if thresholdStr := c.Query("expand_threshold"); thresholdStr != "" {
		if v, err := strconv.Atoi(thresholdStr); err == nil {
			override.ExpandThreshold = v
		}
	}
	if radiusStr := c.Query("radius_pixels"); radiusStr != "" {
		if v, err := strconv.ParseFloat(radiusStr, 64); err == nil {
			override.RadiusPixels = v
		}
	}

	viewport := orb.Bound{
		Min: orb.Point{minLon, minLat},
		Max: orb.Point{maxLon, maxLat},
	}
	groups, err := h.Service.ClusterViewport(viewport, zoom, override)
	if err != nil {
		log.Printf("Error clustering viewport: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	return c.JSON(groups)
}

// GetTolerance handles GET /tolerance to expose the zoom tolerance table.
// @Summary Resolve the simplification tolerance for a zoom level
// @Description Returns the degree tolerance and its meter approximation; the same table backs server-side simplification
// @Tags clusters
// @Produce json
// @Param zoom query number true "Display zoom level"
// @Success 200 {object} geometry.Tolerance "Resolved tolerance"
// @Failure 400 {object} map[string]interface{} "Missing zoom"
// @Router /tolerance [get]
func (h *ClusterHandler) GetTolerance(c *fiber.Ctx) error {
	zoom, err := strconv.ParseFloat(c.Query("zoom"), 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "zoom is required",
		})
	}
	return c.JSON(geometry.ForZoom(zoom))
}
