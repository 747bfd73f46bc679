package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"trackmap-service/internal/models"
	"trackmap-service/internal/services"
)

const PoiNotFoundError = "poi not found"

// PoiHandler defines handlers for managing points of interest.
type PoiHandler struct {
	Service *services.PoiService
}

// NewPoiHandler creates a new PoiHandler with the given PoiService.
func NewPoiHandler(service *services.PoiService) *PoiHandler {
	return &PoiHandler{Service: service}
}

// CreatePoiRequest is the JSON body for manual POI creation.
type CreatePoiRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Elevation   *float64 `json:"elevation"`
}

// CreatePoi handles POST /pois to create a POI manually.
// @Summary Create a POI
// @Description Creates a POI or returns the existing one when the rounded location and normalized name already exist
// @Tags pois
// @Accept json
// @Produce json
// @Param poi body CreatePoiRequest true "POI candidate"
// @Param X-Owner-ID header string false "Owner UUID stamped on manually created POIs"
// @Success 201 {object} models.Poi "Resolved POI"
// @Failure 400 {object} map[string]interface{} "Invalid POI"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /pois [post]
func (h *PoiHandler) CreatePoi(c *fiber.Ctx) error {
	var req CreatePoiRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid request body: " + err.Error(),
		})
	}

	candidate := services.PoiCandidate{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Lat:         req.Latitude,
		Lon:         req.Longitude,
		Elevation:   req.Elevation,
	}
	if ownerStr := c.Get("X-Owner-ID"); ownerStr != "" {
		if owner, err := uuid.Parse(ownerStr); err == nil {
			candidate.Owner = &owner
		}
	}

	poi, err := h.Service.FindOrCreate(candidate)
	if err != nil {
		if errors.Is(err, models.ErrInvalidPoi) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": true, "message": err.Error(),
			})
		}
		log.Printf("Error creating poi: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	log.Printf("Resolved poi: ID=%s, Name=%s", poi.ID, poi.Name)
	return c.Status(fiber.StatusCreated).JSON(poi)
}

// GetPoisNear handles GET /pois/nearby to find POIs around a point.
// @Summary Find POIs near a point
// @Tags pois
// @Produce json
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Param radius query number false "Radius in meters (default 500)"
// @Success 200 {array} models.Poi "POIs within the radius"
// @Failure 400 {object} map[string]interface{} "Invalid coordinates"
// @Router /pois/nearby [get]
func (h *PoiHandler) GetPoisNear(c *fiber.Ctx) error {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "lat and lon are required",
		})
	}
	radius := 500.0
	if radiusStr := c.Query("radius"); radiusStr != "" {
		if v, err := strconv.ParseFloat(radiusStr, 64); err == nil && v > 0 {
			radius = v
		}
	}

	pois, err := h.Service.FindNear(lat, lon, radius)
	if err != nil {
		log.Printf("Error finding pois near (%f, %f): %v", lat, lon, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	return c.JSON(pois)
}

// GetPoi handles GET /pois/:id to retrieve a single POI.
// @Summary Get a POI by ID
// @Tags pois
// @Produce json
// @Param id path string true "POI ID"
// @Success 200 {object} models.Poi "POI found"
// @Failure 404 {object} map[string]interface{} "POI not found"
// @Router /pois/{id} [get]
func (h *PoiHandler) GetPoi(c *fiber.Ctx) error {
	poiID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	poi, err := h.Service.Get(poiID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": PoiNotFoundError,
			})
		}
		log.Printf("Error fetching poi %s: %v", poiID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	return c.JSON(poi)
}

// PoiLinked handles GET /pois/:id/linked, the queryable fact the deletion
// policy builds on.
// @Summary Check whether a POI is linked to any track
// @Tags pois
// @Produce json
// @Param id path string true "POI ID"
// @Success 200 {object} map[string]interface{} "Link status"
// @Router /pois/{id}/linked [get]
func (h *PoiHandler) PoiLinked(c *fiber.Ctx) error {
	poiID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	linked, err := h.Service.IsLinked(poiID)
	if err != nil {
		log.Printf("Error checking links for poi %s: %v", poiID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"poi_id": poiID, "linked": linked})
}

// DeletePoi handles DELETE /pois/:id.
// @Summary Delete a POI
// @Description Refused while the POI is linked to a track or owned by a different user
// @Tags pois
// @Produce json
// @Param id path string true "POI ID"
// @Param X-Owner-ID header string false "Requesting owner UUID"
// @Success 204 "POI deleted"
// @Failure 403 {object} map[string]interface{} "Owner mismatch"
// @Failure 404 {object} map[string]interface{} "POI not found"
// @Failure 409 {object} map[string]interface{} "POI still linked"
// @Router /pois/{id} [delete]
func (h *PoiHandler) DeletePoi(c *fiber.Ctx) error {
	poiID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	var requester *uuid.UUID
	if ownerStr := c.Get("X-Owner-ID"); ownerStr != "" {
		if owner, err := uuid.Parse(ownerStr); err == nil {
			requester = &owner
		}
	}

	err = h.Service.Delete(poiID, requester)
	switch {
	case err == nil:
		log.Printf("Successfully deleted poi: ID=%s", poiID)
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": true, "message": PoiNotFoundError,
		})
	case errors.Is(err, services.ErrPoiLinked):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	case errors.Is(err, services.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	default:
		log.Printf("Error deleting poi %s: %v", poiID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
}
