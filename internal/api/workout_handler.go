// internal/api/workout_handler.go
package api

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WorkoutHandler struct {
	workoutService service.WorkoutService
	tempDir        string
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService, tempDir: os.TempDir()}
}

// UploadPDF godoc
// @Summary Upload a training plan
// @Description Parses the PDF plan and opens a new workout session.
// @Tags Workout
// @Accept multipart/form-data
// @Produce json
// @Param pdf formData file true "Training plan PDF"
// @Success 200 {object} UploadPDFResponse
// @Failure 400 {object} gin.H "Missing, invalid or empty PDF"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /upload-pdf [post]
func (h *WorkoutHandler) UploadPDF(c *gin.Context) {
	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		abortUploadError(c, err, "No PDF file uploaded")
		return
	}
	if fileHeader.Header.Get("Content-Type") != "application/pdf" {
		abortWithError(c, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	tmpPath := filepath.Join(h.tempDir, "plan-"+uuid.NewString()+".pdf")
	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		log.Printf("ERROR: Saving uploaded PDF: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to save the PDF")
		return
	}
	defer os.Remove(tmpPath)

	result, err := h.workoutService.UploadPlan(c.Request.Context(), service.PlanUpload{
		Path:         tmpPath,
		OriginalName: fileHeader.Filename,
		Size:         fileHeader.Size,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPlanPages):
			abortWithError(c, http.StatusBadRequest, "No exercise tables found in the PDF. Make sure it contains workout tables with exercises, sets and reps.")
		case errors.Is(err, service.ErrInvalidFile), errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			log.Printf("ERROR: PDF upload: %v", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to process the PDF")
		}
		return
	}

	c.JSON(http.StatusOK, UploadPDFResponse{
		SessionID:    result.Session.ID,
		Filename:     result.Session.PDFFilename,
		Pages:        result.Pages,
		SessionToken: result.SessionToken,
	})
}

// SelectDay godoc
// @Summary Select the training day
// @Tags Workout
// @Accept json
// @Produce json
// @Param body body SelectDayRequest true "Day selection"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} gin.H "Invalid request"
// @Failure 404 {object} gin.H "Session not found"
// @Router /select-day [post]
func (h *WorkoutHandler) SelectDay(c *gin.Context) {
	var req SelectDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.workoutService.SelectDay(c.Request.Context(), resolveSessionID(c, req.SessionID), req.DayID, req.Exercises)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, "Session not found")
		default:
			log.Printf("ERROR: Day selection: %v", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to select the day")
		}
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Success: true, Session: session})
}

// UpdateExercise godoc
// @Summary Record RPE, weight or notes for an exercise
// @Tags Workout
// @Accept json
// @Produce json
// @Param body body UpdateExerciseRequest true "Exercise update"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} gin.H "Invalid request"
// @Failure 404 {object} gin.H "Session or exercise not found"
// @Router /update-exercise [post]
func (h *WorkoutHandler) UpdateExercise(c *gin.Context) {
	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.workoutService.UpdateExercise(c.Request.Context(), service.ExerciseUpdate{
		SessionID:  resolveSessionID(c, req.SessionID),
		ExerciseID: req.ExerciseID,
		WeekID:     req.WeekID,
		RPE:        req.RPE,
		Weight:     req.Weight,
		Notes:      req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, "Session not found")
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, "Exercise not found")
		default:
			log.Printf("ERROR: Exercise update: %v", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to update the exercise")
		}
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Success: true, Session: session})
}

// CurrentSession godoc
// @Summary Get the session in use with its videos
// @Tags Workout
// @Produce json
// @Param sessionId query int false "Session id"
// @Success 200 {object} CurrentSessionResponse
// @Router /current-session [get]
func (h *WorkoutHandler) CurrentSession(c *gin.Context) {
	explicit, ok := querySessionID(c)
	if !ok {
		return
	}
	session, videos, err := h.workoutService.CurrentSession(c.Request.Context(), resolveSessionID(c, explicit))
	if err != nil {
		log.Printf("ERROR: Get session: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve the session")
		return
	}
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	if videos == nil {
		videos = []domain.VideoUpload{}
	}
	c.JSON(http.StatusOK, CurrentSessionResponse{Session: session, Videos: videos})
}

// Summary godoc
// @Summary Workout recap with RPE aggregates and share text
// @Tags Workout
// @Produce json
// @Param sessionId query int false "Session id"
// @Success 200 {object} service.SessionSummary
// @Failure 404 {object} gin.H "No active session"
// @Router /summary [get]
func (h *WorkoutHandler) Summary(c *gin.Context) {
	explicit, ok := querySessionID(c)
	if !ok {
		return
	}
	sum, err := h.workoutService.Summary(c.Request.Context(), resolveSessionID(c, explicit))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveSession):
			abortWithError(c, http.StatusNotFound, "No active session")
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, "Session not found")
		default:
			log.Printf("ERROR: Summary: %v", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to build the summary")
		}
		return
	}
	c.JSON(http.StatusOK, sum)
}

// SendToTelegram godoc
// @Summary Send the workout recap to the coach
// @Tags Workout
// @Accept json
// @Produce json
// @Param body body SessionRequest false "Session"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} gin.H "No active session"
// @Failure 500 {object} gin.H "Notifier failure"
// @Router /send-to-telegram [post]
func (h *WorkoutHandler) SendToTelegram(c *gin.Context) {
	var req SessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	err := h.workoutService.SendToCoach(c.Request.Context(), resolveSessionID(c, req.SessionID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveSession):
			abortWithError(c, http.StatusNotFound, "No active session")
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, "Session not found")
		default:
			log.Printf("ERROR: Telegram send: %v", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to send to Telegram: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// Restart godoc
// @Summary Wipe all sessions and videos
// @Tags Workout
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /restart [post]
func (h *WorkoutHandler) Restart(c *gin.Context) {
	if err := h.workoutService.Restart(c.Request.Context()); err != nil {
		log.Printf("ERROR: Restart: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to restart the application")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// querySessionID reads the optional sessionId query parameter. It aborts
// with 400 and reports false when the value is not an integer.
func querySessionID(c *gin.Context) (int64, bool) {
	raw := c.Query("sessionId")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid sessionId")
		return 0, false
	}
	return id, true
}
