package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Jondude1/retro-pricer/internal/models"
	"github.com/Jondude1/retro-pricer/internal/services"
)

type ScanHandler struct {
	vision *services.VisionService
}

func NewScanHandler(vision *services.VisionService) *ScanHandler {
	return &ScanHandler{vision: vision}
}

type scanResponse struct {
	ScanID string `json:"scan_id"`
	*models.ScanResult
}

// Scan handles POST /api/scan: identify a game and grade its condition
// from an uploaded photo.
func (h *ScanHandler) Scan(c *gin.Context) {
	if h.vision == nil || !h.vision.IsEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Image identification is not available",
			"message": "Anthropic API key not configured",
		})
		return
	}

	image, mimeType, ok := readImage(c)
	if !ok {
		return
	}

	scanID := uuid.NewString()
	result, err := h.vision.Identify(c.Request.Context(), image, mimeType)
	if err != nil {
		log.Printf("scan %s failed: %v", scanID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	log.Printf("scan %s: identified=%t game=%q platform=%s confidence=%s",
		scanID, result.Identified, result.GameName, result.PlatformKey, result.Confidence)
	c.JSON(http.StatusOK, scanResponse{ScanID: scanID, ScanResult: result})
}

// ScanFollowUp handles POST /api/scan/followup: a second or third photo in
// a multi-photo condition assessment, with the previous result passed as
// the "context" form field.
func (h *ScanHandler) ScanFollowUp(c *gin.Context) {
	if h.vision == nil || !h.vision.IsEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Image identification is not available",
			"message": "Anthropic API key not configured",
		})
		return
	}

	image, mimeType, ok := readImage(c)
	if !ok {
		return
	}

	var prev models.ScanResult
	if raw := c.PostForm("context"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &prev); err != nil {
			log.Printf("scan followup: unreadable context, continuing without it: %v", err)
		}
	}

	scanID := uuid.NewString()
	result, err := h.vision.IdentifyFollowUp(c.Request.Context(), image, mimeType, &prev)
	if err != nil {
		log.Printf("scan followup %s failed: %v", scanID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, scanResponse{ScanID: scanID, ScanResult: result})
}

// readImage pulls the photo from a multipart upload, or from a JSON body
// with a base64 "image" field. Writes the error response itself when the
// request carries no usable image.
func readImage(c *gin.Context) ([]byte, string, bool) {
	file, err := c.FormFile("image")
	if err == nil {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
			return nil, "", false
		}
		defer src.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(src); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return nil, "", false
		}
		if buf.Len() == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Empty image"})
			return nil, "", false
		}

		mimeType := file.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		return buf.Bytes(), mimeType, true
	}

	var req struct {
		Image    string `json:"image"` // base64 encoded
		MimeType string `json:"mime_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "No image provided",
			"message": "Upload an image file or provide base64 encoded image in JSON body",
		})
		return nil, "", false
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil || len(image) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base64 image data"})
		return nil, "", false
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return image, mimeType, true
}
