package main

import (
	"alcyxob/workout-tracker/internal/api"
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/external"
	"alcyxob/workout-tracker/internal/repository/selector"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title Workout Tracker API
// @version 1.0
// @description Training plan upload, per-week RPE/weight tracking, set videos and coach summaries.
// @BasePath /api
// @securityDefinitions.apikey SessionToken
// @in header
// @name X-Session-Token
// @securityDefinitions.basic BasicAuth
func main() {
	log.Println("Starting Workout Tracker Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Session Store ---
	selectCtx, cancelSelect := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout+cfg.Database.ProbeTimeout)
	selection := selector.Select(selectCtx, selector.Options{
		URL:            cfg.Database.URL,
		DatabaseName:   cfg.Database.Name,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		MaxConns:       cfg.Database.MaxConns,
		AutoMigrate:    cfg.Database.AutoMigrate,
	})
	cancelSelect()
	defer func() {
		log.Println("Closing session store...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := selection.Store.Close(ctx); err != nil {
			log.Printf("ERROR: Failed to close session store: %v", err)
		}
	}()

	// --- Initialize Storage ---
	log.Printf("Initializing %s file storage...", cfg.Files.Backend)
	fileStorage, err := storage.NewFileStorage(context.Background(), cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize file storage: %v", err)
	}

	// --- External Helpers ---
	ext := cfg.External
	parser := external.NewPlanParser(external.NewScriptRunner(ext.Python, ext.ParserScript, ext.Timeout))
	trimmer := external.NewVideoTrimmer(external.NewScriptRunner(ext.Python, ext.TrimmerScript, ext.Timeout))
	notifier := external.NewCoachNotifier(external.NewScriptRunner(ext.Python, ext.NotifierScript, ext.Timeout))

	// --- Initialize Services ---
	log.Println("Initializing services...")
	tokens := service.NewSessionTokens(cfg.JWT.Secret, cfg.JWT.Expiration)
	workoutService := service.NewWorkoutService(selection.Store, fileStorage, parser, trimmer, notifier, tokens)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware
	router.MaxMultipartMemory = 8 << 20

	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg, workoutService, fileStorage, tokens, selection)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s (store: %s)", cfg.Server.Address, selection.Backend)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
