package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"doctrans/translate"
)

// submitJobRequest is the payload for POST /api/jobs.
type submitJobRequest struct {
	SourcePath  string   `json:"source_path" binding:"required"`
	SourceLang  string   `json:"source_lang" binding:"required"`
	TargetLangs []string `json:"target_langs" binding:"required"`
	Mode        string   `json:"mode"`
}

// submitTranslationJobHandler handles the POST /api/jobs endpoint
func (app *App) submitTranslationJobHandler(c *gin.Context) {
	var req submitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request payload: %v", err)})
		return
	}
	if req.Mode == "" {
		req.Mode = "overlay"
	}
	switch req.Mode {
	case "inline", "overlay", "side_by_side":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown mode %q", req.Mode)})
		return
	}
	if _, err := os.Stat(req.SourcePath); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Source file not readable: %v", err)})
		return
	}
	for _, lang := range req.TargetLangs {
		if !translate.IsSupported(lang) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unsupported target language %q", lang)})
			return
		}
	}

	jobID := generateJobID()
	job := &Job{
		ID:          jobID,
		SourcePath:  req.SourcePath,
		SourceLang:  req.SourceLang,
		TargetLangs: req.TargetLangs,
		Mode:        req.Mode,
		Status:      "pending",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	jobStore.addJob(job)
	jobQueue <- job

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

func jobResponse(job Job) gin.H {
	response := gin.H{
		"job_id":         job.ID,
		"status":         job.Status,
		"source_path":    job.SourcePath,
		"source_lang":    job.SourceLang,
		"target_langs":   job.TargetLangs,
		"mode":           job.Mode,
		"created_at":     job.CreatedAt,
		"updated_at":     job.UpdatedAt,
		"segments_done":  job.SegmentsDone,
		"segments_total": job.SegmentsTotal,
	}
	if job.Status == "completed" {
		response["outputs"] = job.Outputs
	} else if job.Status == "failed" {
		response["error"] = job.Error
	}
	return response
}

// getJobStatusHandler handles the GET /api/jobs/:job_id endpoint
func (app *App) getJobStatusHandler(c *gin.Context) {
	jobID := c.Param("job_id")

	job, exists := jobStore.getJob(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, jobResponse(job))
}

// getAllJobsHandler handles the GET /api/jobs endpoint
func (app *App) getAllJobsHandler(c *gin.Context) {
	jobs := jobStore.GetAllJobs()

	jobList := make([]gin.H, 0, len(jobs))
	for _, job := range jobs {
		jobList = append(jobList, jobResponse(job))
	}
	c.JSON(http.StatusOK, jobList)
}

// cancelJobHandler handles the POST /api/jobs/:job_id/cancel endpoint
func (app *App) cancelJobHandler(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, exists := jobStore.getJob(jobID); !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if cancelJob(jobID) {
		c.JSON(http.StatusOK, gin.H{"job_id": jobID, "status": "cancelling"})
		return
	}
	c.JSON(http.StatusConflict, gin.H{"error": "Job is not running or pending"})
}

// cacheStatsHandler handles the GET /api/cache/stats endpoint
func (app *App) cacheStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, app.Cache.Stats())
}

// listModelsHandler handles the GET /api/models endpoint
func (app *App) listModelsHandler(c *gin.Context) {
	models, err := app.Server.ListModels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Error listing models: %v", err)})
		log.Errorf("Error listing models: %v", err)
		return
	}
	c.JSON(http.StatusOK, models)
}

// unloadModelHandler handles the POST /api/models/:name/unload endpoint
func (app *App) unloadModelHandler(c *gin.Context) {
	name := c.Param("name")
	if err := app.Server.UnloadModel(c.Request.Context(), name); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Error unloading model: %v", err)})
		return
	}
	c.Status(http.StatusOK)
}

// healthHandler handles the GET /api/health endpoint
func (app *App) healthHandler(c *gin.Context) {
	if err := app.Server.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "backend": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": app.Backend.Name()})
}

// listLanguagesHandler handles the GET /api/languages endpoint
func listLanguagesHandler(c *gin.Context) {
	langs := translate.SupportedLanguages()
	out := make([]gin.H, 0, len(langs))
	for _, code := range langs {
		out = append(out, gin.H{"code": code, "name": translate.DisplayName(code)})
	}
	c.JSON(http.StatusOK, out)
}
