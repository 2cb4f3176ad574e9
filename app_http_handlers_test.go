package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctrans/cache"
)

func newTestRouter(t *testing.T) (*gin.Engine, *App) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := cache.New(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)

	app := &App{Cache: store, OutputDir: t.TempDir()}
	router := gin.New()
	api := router.Group("/api")
	api.POST("/jobs", app.submitTranslationJobHandler)
	api.GET("/jobs", app.getAllJobsHandler)
	api.GET("/jobs/:job_id", app.getJobStatusHandler)
	api.POST("/jobs/:job_id/cancel", app.cancelJobHandler)
	api.GET("/cache/stats", app.cacheStatsHandler)
	api.GET("/languages", listLanguagesHandler)
	return router, app
}

func postJSON(router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitJobValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	// Missing required fields.
	w := postJSON(router, "/api/jobs", gin.H{"source_lang": "en"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown mode.
	src := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0644))
	w = postJSON(router, "/api/jobs", gin.H{
		"source_path":  src,
		"source_lang":  "en",
		"target_langs": []string{"fr"},
		"mode":         "diagonal",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unsupported target language.
	w = postJSON(router, "/api/jobs", gin.H{
		"source_path":  src,
		"source_lang":  "en",
		"target_langs": []string{"tlh"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nonexistent source file.
	w = postJSON(router, "/api/jobs", gin.H{
		"source_path":  filepath.Join(t.TempDir(), "missing.pdf"),
		"source_lang":  "en",
		"target_langs": []string{"fr"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitJobAcceptedAndVisible(t *testing.T) {
	router, _ := newTestRouter(t)

	src := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0644))

	w := postJSON(router, "/api/jobs", gin.H{
		"source_path":  src,
		"source_lang":  "en",
		"target_langs": []string{"fr", "ja"},
		"mode":         "side_by_side",
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.JobID)

	// Drain the queue so no worker is needed for this test.
	<-jobQueue

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+resp.JobID, nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	var job map[string]any
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &job))
	assert.Equal(t, "pending", job["status"])
	assert.Equal(t, "side_by_side", job["mode"])
}

func TestCancelPendingJob(t *testing.T) {
	router, _ := newTestRouter(t)

	src := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0644))

	w := postJSON(router, "/api/jobs", gin.H{
		"source_path":  src,
		"source_lang":  "en",
		"target_langs": []string{"fr"},
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	var resp struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	<-jobQueue

	w2 := postJSON(router, "/api/jobs/"+resp.JobID+"/cancel", nil)
	assert.Equal(t, http.StatusOK, w2.Code)

	job, ok := jobStore.getJob(resp.JobID)
	require.True(t, ok)
	assert.Equal(t, "cancelled", job.Status)
}

func TestCancelUnknownJob(t *testing.T) {
	router, _ := newTestRouter(t)
	w := postJSON(router, "/api/jobs/nope/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCacheStatsEndpoint(t *testing.T) {
	router, app := newTestRouter(t)
	app.Cache.Put("en", "fr", "Hello", "Bonjour")

	req := httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Entries      int64 `json:"entries"`
		StorageBytes int64 `json:"storage_bytes"`
		MaxEntries   int   `json:"max_entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Entries)
	assert.Greater(t, stats.StorageBytes, int64(0))
	assert.Greater(t, stats.MaxEntries, 0)
}

func TestLanguagesEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/languages", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var langs []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &langs))
	assert.NotEmpty(t, langs)
}
