// internal/api/handlers/accuracy_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/templestreet/forecast-app/internal/service"
)

type AccuracyHandler struct {
	accuracyService *service.AccuracyService
	uploadDir       string
}

func NewAccuracyHandler(accuracyService *service.AccuracyService, uploadDir string) *AccuracyHandler {
	return &AccuracyHandler{accuracyService: accuracyService, uploadDir: uploadDir}
}

// UploadAccuracy accepts a forecast file and an actual-consumption file and
// runs the comparison. Form fields: forecast, actual (files);
// tolerance_pct (optional knob).
func (h *AccuracyHandler) UploadAccuracy(c *gin.Context) {
	forecastPath, ok := h.saveUpload(c, "forecast")
	if !ok {
		return
	}
	actualPath, ok := h.saveUpload(c, "actual")
	if !ok {
		return
	}

	var opts service.AccuracyOptions
	if v := c.PostForm("tolerance_pct"); v != "" {
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil || pct < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tolerance_pct must be a non-negative number"})
			return
		}
		opts.TolerancePct = pct
		opts.HasTolerance = true
	}

	out, err := h.accuracyService.RunAccuracy(c.Request.Context(), forecastPath, actualPath, opts)
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// GetLatestSummary returns the most recent accuracy summary.
func (h *AccuracyHandler) GetLatestSummary(c *gin.Context) {
	summary, err := h.accuracyService.LatestAccuracySummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load accuracy summary"})
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no accuracy report has been generated yet"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *AccuracyHandler) saveUpload(c *gin.Context, field string) (string, bool) {
	file, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field: " + field})
		return "", false
	}

	path, err := saveUploadedFile(c, file, h.uploadDir)
	if err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("failed to save uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save uploaded file"})
		return "", false
	}

	return path, true
}
