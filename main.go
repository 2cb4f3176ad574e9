package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"doctrans/cache"
	"doctrans/internal/constants"
	"doctrans/translate"
)

// Global Variables and Constants
var (

	// Logger
	log = logrus.New()

	// Environment Variables
	ollamaBaseURL  = os.Getenv("OLLAMA_BASE_URL")
	ollamaAPIToken = os.Getenv("OLLAMA_API_TOKEN")
	translateModel = os.Getenv("TRANSLATE_MODEL")
	cacheDBPath    = os.Getenv("CACHE_DB_PATH")
	outputDir      = os.Getenv("OUTPUT_DIR")
	fontDir        = os.Getenv("FONT_DIR")
	listenPort     = os.Getenv("PORT")
	logLevel       = strings.ToLower(os.Getenv("LOG_LEVEL"))
)

func main() {
	// Validate Environment Variables
	validateEnvVars()

	// Initialize logrus logger
	initLogger()

	// Initialize translation cache
	translationCache, err := cache.New(cacheDBPath,
		cache.WithMaxEntries(envInt("CACHE_MAX_ENTRIES", constants.CacheMaxEntries)))
	if err != nil {
		log.Fatalf("Failed to open translation cache: %v", err)
	}

	// Initialize Ollama backend with rate limiting
	backend, err := translate.NewOllamaBackend(ollamaBaseURL, translateModel,
		translate.WithRateLimit(translate.RateLimitConfig{
			RequestsPerMinute: envFloat("LLM_RPM", 0),
			MaxRetries:        3,
		}))
	if err != nil {
		log.Fatalf("Failed to create translation backend: %v", err)
	}

	// Management client for health, model listing and unload
	server := translate.NewServerClient(ollamaBaseURL, ollamaAPIToken)

	// Initialize App with dependencies
	app := &App{
		Cache:            translationCache,
		Backend:          backend,
		Server:           server,
		OutputDir:        outputDir,
		FontDir:          fontDir,
		MaxBatchChars:    envInt("MAX_BATCH_CHARS", constants.DefaultMaxBatchChars),
		SkipHeaderFooter: os.Getenv("SKIP_HEADER_FOOTER") == "true",
	}

	printStartupBanner(app)

	// Verify the backend is reachable and the model installed; warn only,
	// the server may come up after us.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.HealthCheck(ctx); err != nil {
		log.Warnf("Translation backend not reachable yet: %v", err)
	} else if ok, err := server.HasModel(ctx, translateModel); err == nil && !ok {
		log.Warnf("Model %q is not installed on %s", translateModel, ollamaBaseURL)
	}

	// Create a Gin router with default middleware (logger and recovery)
	router := gin.Default()

	// API routes
	api := router.Group("/api")
	{
		api.POST("/jobs", app.submitTranslationJobHandler)
		api.GET("/jobs", app.getAllJobsHandler)
		api.GET("/jobs/:job_id", app.getJobStatusHandler)
		api.POST("/jobs/:job_id/cancel", app.cancelJobHandler)

		api.GET("/cache/stats", app.cacheStatsHandler)
		api.GET("/models", app.listModelsHandler)
		api.POST("/models/:name/unload", app.unloadModelHandler)
		api.GET("/languages", listLanguagesHandler)
		api.GET("/health", app.healthHandler)
	}

	// Start translation worker pool
	startWorkerPool(app, envInt("WORKERS", 1))

	addr := ":" + listenPort
	log.Infof("Server started on port %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func initLogger() {
	switch logLevel {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
		if logLevel != "" {
			log.Fatalf("Invalid log level: '%s'.", logLevel)
		}
	}

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// validateEnvVars ensures all necessary environment variables are set and
// fills in defaults for the optional ones.
func validateEnvVars() {
	if translateModel == "" {
		log.Fatal("Please set the TRANSLATE_MODEL environment variable.")
	}
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://127.0.0.1:11434"
	}
	if cacheDBPath == "" {
		cacheDBPath = "db/translation_cache.db"
	}
	if outputDir == "" {
		outputDir = "output"
	}
	if listenPort == "" {
		listenPort = "8080"
	}
	if _, err := strconv.Atoi(listenPort); err != nil {
		log.Fatalf("Invalid PORT value: %q", listenPort)
	}
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Invalid %s value: %q", name, raw)
	}
	return v
}

func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatalf("Invalid %s value: %q", name, raw)
	}
	return v
}

func printStartupBanner(app *App) {
	header := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgWhite)
	header.Println("doctrans - layout-preserving document translation")
	label.Printf("  backend:   %s\n", app.Backend.Name())
	label.Printf("  server:    %s\n", ollamaBaseURL)
	label.Printf("  cache:     %s\n", cacheDBPath)
	label.Printf("  output:    %s\n", outputDir)
	label.Printf("  batch:     %d chars\n", app.MaxBatchChars)
}
