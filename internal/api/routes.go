package api

import (
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/repository/selector"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	cfg config.Config,
	workoutService service.WorkoutService,
	files storage.FileStorage,
	tokens *service.SessionTokens,
	selection selector.Selection,
) {
	workoutHandler := NewWorkoutHandler(workoutService)
	videoHandler := NewVideoHandler(workoutService, files)
	adminHandler := NewAdminHandler(selection, files, cfg.Database.URL, cfg.Database.Name, cfg.Database.ProbeTimeout)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Local uploads are served directly; S3 objects go through /api/files.
	if files != nil && files.Backend() == storage.BackendLocal {
		router.Static(storage.PublicPrefix, cfg.Files.UploadDir)
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(SessionContextMiddleware(tokens))
	{
		// --- Plan & Session ---
		apiGroup.POST("/upload-pdf", MaxBodySize(cfg.Files.MaxUploadSize), workoutHandler.UploadPDF)
		apiGroup.POST("/select-day", workoutHandler.SelectDay)
		apiGroup.POST("/update-exercise", workoutHandler.UpdateExercise)
		apiGroup.GET("/current-session", workoutHandler.CurrentSession)
		apiGroup.GET("/summary", workoutHandler.Summary)
		apiGroup.POST("/send-to-telegram", workoutHandler.SendToTelegram)
		apiGroup.POST("/restart", workoutHandler.Restart)

		// --- Videos ---
		apiGroup.POST("/upload-video", MaxBodySize(cfg.Files.MaxUploadSize), videoHandler.UploadVideo)
		apiGroup.GET("/videos", videoHandler.ListVideos)
		apiGroup.DELETE("/videos/:id", videoHandler.DeleteVideo)
		apiGroup.POST("/manual-trim", MaxBodySize(cfg.Files.MaxUploadSize), videoHandler.ManualTrim)
		apiGroup.GET("/files/:key", videoHandler.DownloadFile)

		// --- Storage ---
		apiGroup.GET("/storage-status", adminHandler.StorageStatus)
		apiGroup.POST("/migrate-to-db", AdminMiddleware(cfg.Admin.Username, cfg.Admin.PasswordHash), adminHandler.MigrateToDB)
	}
}
