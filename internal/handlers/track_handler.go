package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"trackmap-service/internal/services"
)

const InvalidUuidError = "invalid UUID"
const TrackNotFoundError = "track not found"

// defaultDisplayZoom is used when a track is requested without a zoom hint.
const defaultDisplayZoom = 14

// TrackHandler defines handlers for managing uploaded GPS tracks.
type TrackHandler struct {
	Service *services.TrackService
}

// NewTrackHandler creates a new TrackHandler with the given TrackService.
func NewTrackHandler(service *services.TrackService) *TrackHandler {
	return &TrackHandler{Service: service}
}

// UploadTrack handles POST /tracks to upload a new track file.
// @Summary Upload a GPS track
// @Description Upload a GPX file or an archive containing GPX files; waypoints are deduplicated into POIs and projected onto the track
// @Tags tracks
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "GPX file or archive"
// @Success 201 {object} models.Track "Track successfully created"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /tracks [post]
func (h *TrackHandler) UploadTrack(c *fiber.Ctx) error {
	log.Printf("Uploading track - Method: %s, Path: %s, IP: %s", c.Method(), c.Path(), c.IP())

	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Printf("Failed to read file: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "failed to read file: " + err.Error(),
		})
	}

	track, err := h.Service.ProcessUpload(fileHeader)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFormat) || errors.Is(err, services.ErrNoTrackGeometry) {
			log.Printf("Rejected upload %s: %v", fileHeader.Filename, err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": true, "message": err.Error(),
			})
		}
		log.Printf("Error processing upload %s: %v", fileHeader.Filename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}

	log.Printf("Successfully processed track: ID=%s, Name=%s", track.ID, track.Name)
	return c.Status(fiber.StatusCreated).JSON(track)
}

// ListTracks handles GET /tracks to retrieve all tracks.
// @Summary List all tracks
// @Description Gets metadata of all uploaded tracks
// @Tags tracks
// @Produce json
// @Success 200 {array} models.Track "List of all tracks"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /tracks [get]
func (h *TrackHandler) ListTracks(c *fiber.Ctx) error {
	tracks, err := h.Service.List()
	if err != nil {
		log.Printf("Error listing tracks: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	log.Printf("Successfully listed %d tracks", len(tracks))
	return c.JSON(tracks)
}

// GetTrack handles GET /tracks/:id to retrieve a track with display geometry.
// @Summary Get a track with simplified geometry
// @Description Gets a track's metadata plus its geometry simplified for the requested zoom level
// @Tags tracks
// @Produce json
// @Param id path string true "Track ID"
// @Param zoom query number false "Display zoom level (default 14)"
// @Success 200 {object} services.TrackDisplay "Track with display geometry"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Track not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /tracks/{id} [get]
func (h *TrackHandler) GetTrack(c *fiber.Ctx) error {
	trackID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	zoom := float64(defaultDisplayZoom)
	if zoomStr := c.Query("zoom"); zoomStr != "" {
		if z, err := strconv.ParseFloat(zoomStr, 64); err == nil {
			zoom = z
		}
	}

	display, err := h.Service.DisplayGeometry(trackID, zoom)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": TrackNotFoundError,
			})
		}
		log.Printf("Error fetching track %s: %v", trackID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	return c.JSON(display)
}

// DownloadTrack handles GET /tracks/:id/download to stream the raw uploaded file.
// @Summary Download the original track file
// @Tags tracks
// @Produce octet-stream
// @Param id path string true "Track ID"
// @Success 200 {file} binary "Raw track file"
// @Failure 404 {object} map[string]interface{} "Track not found"
// @Router /tracks/{id}/download [get]
func (h *TrackHandler) DownloadTrack(c *fiber.Ctx) error {
	trackID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	reader, track, err := h.Service.Download(trackID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": TrackNotFoundError,
			})
		}
		log.Printf("Error downloading track %s: %v", trackID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=\""+track.OriginalFilename+"\"")
	return c.SendStream(reader)
}

// ListTrackPois handles GET /tracks/:id/pois to list linked POIs in order.
// @Summary List a track's POIs in visitation order
// @Description Gets the track's POI links sorted by sequence order (ascending distance from the track start)
// @Tags tracks
// @Produce json
// @Param id path string true "Track ID"
// @Success 200 {array} models.TrackPoiLink "Ordered POI links"
// @Failure 404 {object} map[string]interface{} "Track not found"
// @Router /tracks/{id}/pois [get]
func (h *TrackHandler) ListTrackPois(c *fiber.Ctx) error {
	trackID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	links, err := h.Service.LinksForTrack(trackID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": TrackNotFoundError,
			})
		}
		log.Printf("Error listing pois for track %s: %v", trackID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	return c.JSON(links)
}

// LinkPoi handles POST /tracks/:id/links/:poiId to attach a POI to a track.
// @Summary Link a POI to a track
// @Description Projects the POI onto the track line and reassigns sequence order for the whole track
// @Tags tracks
// @Produce json
// @Param id path string true "Track ID"
// @Param poiId path string true "POI ID"
// @Param waypoint_index query int false "Original encounter index used for distance tie-breaking"
// @Success 200 {object} models.TrackPoiLink "Resulting link with distance and sequence order"
// @Failure 404 {object} map[string]interface{} "Track or POI not found"
// @Router /tracks/{id}/links/{poiId} [post]
func (h *TrackHandler) LinkPoi(c *fiber.Ctx) error {
	trackID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	poiID, err := uuid.Parse(c.Params("poiId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	waypointIndex := 0
	if idxStr := c.Query("waypoint_index"); idxStr != "" {
		if idx, err := strconv.Atoi(idxStr); err == nil && idx >= 0 {
			waypointIndex = idx
		}
	}

	link, err := h.Service.LinkPoi(trackID, poiID, waypointIndex)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": "track or poi not found",
			})
		}
		log.Printf("Error linking poi %s to track %s: %v", poiID, trackID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	log.Printf("Linked poi %s to track %s at order %d", poiID, trackID, link.SequenceOrder)
	return c.JSON(link)
}

// DeleteTrack handles DELETE /tracks/:id.
// @Summary Delete a track
// @Description Removes the track, its POI links and the stored raw file
// @Tags tracks
// @Produce json
// @Param id path string true "Track ID"
// @Success 204 "Track deleted"
// @Failure 404 {object} map[string]interface{} "Track not found"
// @Router /tracks/{id} [delete]
func (h *TrackHandler) DeleteTrack(c *fiber.Ctx) error {
	trackID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	if err := h.Service.Delete(trackID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": TrackNotFoundError,
			})
		}
		log.Printf("Error deleting track %s: %v", trackID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	log.Printf("Successfully deleted track: ID=%s", trackID)
	return c.SendStatus(fiber.StatusNoContent)
}
