// internal/api/handlers/plan_handler.go
package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/templestreet/forecast-app/internal/forecast"
	"github.com/templestreet/forecast-app/internal/ingest"
	"github.com/templestreet/forecast-app/internal/service"
)

type PlanHandler struct {
	planService *service.PlanService
	uploadDir   string
}

func NewPlanHandler(planService *service.PlanService, uploadDir string) *PlanHandler {
	return &PlanHandler{planService: planService, uploadDir: uploadDir}
}

// UploadPlan accepts the three source spreadsheets and runs a purchase-plan
// pipeline over them. Form fields: sales, stock, recipe (files); model,
// lead_time_days, adjustment_pct (optional knobs).
func (h *PlanHandler) UploadPlan(c *gin.Context) {
	salesPath, ok := h.saveUpload(c, "sales")
	if !ok {
		return
	}
	stockPath, ok := h.saveUpload(c, "stock")
	if !ok {
		return
	}
	recipePath, ok := h.saveUpload(c, "recipe")
	if !ok {
		return
	}

	opts, err := planOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.planService.RunPlan(c.Request.Context(), salesPath, stockPath, recipePath, opts)
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// GetLatestSummary returns the most recent plan summary.
func (h *PlanHandler) GetLatestSummary(c *gin.Context) {
	summary, err := h.planService.LatestPlanSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plan summary"})
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no plan has been generated yet"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// saveUpload stores one named form file under the upload dir and returns
// its path. Responds with 400 and returns false when the file is missing.
func (h *PlanHandler) saveUpload(c *gin.Context, field string) (string, bool) {
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

func saveUploadedFile(c *gin.Context, file *multipart.FileHeader, dir string) (string, error) {
	path := filepath.Join(dir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", err
	}
	return path, nil
}

func planOptions(c *gin.Context) (service.PlanOptions, error) {
	var opts service.PlanOptions

	opts.Model = c.PostForm("model")

	if v := c.PostForm("lead_time_days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 1 {
			return opts, errors.New("lead_time_days must be a positive integer")
		}
		opts.LeadTimeDays = days
	}

	if v := c.PostForm("adjustment_pct"); v != "" {
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New("adjustment_pct must be numeric")
		}
		opts.AdjustmentPct = pct
		opts.HasAdjustment = true
	}

	return opts, nil
}

// respondPipelineError maps pipeline failures to client-facing statuses.
// Schema and input problems are the caller's to fix; everything else is a
// server error.
func respondPipelineError(c *gin.Context, err error) {
	var schemaErr *ingest.SchemaNotFoundError
	var factorErr *forecast.InvalidAdjustmentFactorError
	var matchErr *forecast.NoMatchesError

	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": schemaErr.Error()})
	case errors.As(err, &factorErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": factorErr.Error()})
	case errors.As(err, &matchErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": matchErr.Error()})
	default:
		log.Error().Err(err).Msg("pipeline run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pipeline run failed"})
	}
}
