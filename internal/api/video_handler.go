// internal/api/video_handler.go
package api

import (
	"alcyxob/workout-tracker/internal/external"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VideoHandler struct {
	workoutService service.WorkoutService
	files          storage.FileStorage
	tempDir        string
}

func NewVideoHandler(workoutService service.WorkoutService, files storage.FileStorage) *VideoHandler {
	return &VideoHandler{workoutService: workoutService, files: files, tempDir: os.TempDir()}
}

// UploadVideo godoc
// @Summary Upload the video of an exercise set
// @Tags Video
// @Accept multipart/form-data
// @Produce json
// @Param video formData file true "Video file"
// @Param sessionId formData int false "Session id (defaults to the session token)"
// @Param exerciseId formData string true "Exercise id"
// @Param weekId formData string true "Week id"
// @Success 200 {object} UploadVideoResponse
// @Failure 400 {object} gin.H "Missing fields or not a video"
// @Failure 404 {object} gin.H "Session not found"
// @Failure 413 {object} gin.H "File too large"
// @Router /upload-video [post]
func (h *VideoHandler) UploadVideo(c *gin.Context) {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		abortUploadError(c, err, "No video file uploaded")
		return
	}
	mimeType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "video/") {
		abortWithError(c, http.StatusBadRequest, "Only video files are allowed")
		return
	}

	var explicit int64
	if raw := c.PostForm("sessionId"); raw != "" {
		explicit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid sessionId")
			return
		}
	}
	sessionID := resolveSessionID(c, explicit)
	exerciseID := c.PostForm("exerciseId")
	weekID := c.PostForm("weekId")
	if sessionID <= 0 || exerciseID == "" || weekID == "" {
		abortWithError(c, http.StatusBadRequest, "Missing required fields: sessionId, exerciseId, weekId")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to read the uploaded video")
		return
	}
	defer file.Close()

	video, err := h.workoutService.UploadVideo(c.Request.Context(), service.VideoUploadInput{
		SessionID:    sessionID,
		ExerciseID:   exerciseID,
		WeekID:       weekID,
		OriginalName: fileHeader.Filename,
		MimeType:     mimeType,
		Size:         fileHeader.Size,
		Content:      file,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidationFailed), errors.Is(err, service.ErrInvalidFile):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, "Session not found")
		default:
			log.Printf("ERROR: Video upload: %v", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to upload the video")
		}
		return
	}

	c.JSON(http.StatusOK, UploadVideoResponse{
		VideoID:      video.ID,
		Filename:     video.Filename,
		OriginalName: video.OriginalName,
	})
}

// ListVideos godoc
// @Summary List the videos of the session in use
// @Tags Video
// @Produce json
// @Param sessionId query int false "Session id"
// @Success 200 {array} domain.VideoUpload
// @Router /videos [get]
func (h *VideoHandler) ListVideos(c *gin.Context) {
	explicit, ok := querySessionID(c)
	if !ok {
		return
	}
	videos, err := h.workoutService.ListVideos(c.Request.Context(), resolveSessionID(c, explicit))
	if err != nil {
		log.Printf("ERROR: Get videos: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve videos")
		return
	}
	c.JSON(http.StatusOK, videos)
}

// DeleteVideo godoc
// @Summary Delete a video
// @Tags Video
// @Produce json
// @Param id path int true "Video id"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} gin.H "Video not found"
// @Router /videos/{id} [delete]
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	videoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID")
		return
	}
	if err := h.workoutService.DeleteVideo(c.Request.Context(), videoID); err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			abortWithError(c, http.StatusNotFound, "Video not found")
			return
		}
		log.Printf("ERROR: Delete video: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to delete the video")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// DownloadFile redirects to a URL the stored file can be fetched from.
func (h *VideoHandler) DownloadFile(c *gin.Context) {
	url, err := h.files.DownloadURL(c.Request.Context(), c.Param("key"), storage.DefaultPresignedURLExpiry)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidKey):
			abortWithError(c, http.StatusBadRequest, "Invalid file name")
		case errors.Is(err, storage.ErrObjectNotFound):
			abortWithError(c, http.StatusNotFound, "File not found")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to locate the file")
		}
		return
	}
	c.Redirect(http.StatusFound, url)
}

// ManualTrim godoc
// @Summary Trim an uploaded video
// @Tags Video
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Video file"
// @Param t_in formData number true "Start second"
// @Param t_out formData number true "End second"
// @Param replace formData string false "Filename of the upload the trimmed video replaces"
// @Param sessionId formData int false "Session the replaced upload must belong to"
// @Success 200 {object} TrimResponse
// @Failure 400 {object} gin.H "Invalid trim parameters or sessionId"
// @Failure 404 {object} gin.H "Replaced video not in the session"
// @Failure 500 {object} gin.H "Video trimming failed"
// @Router /manual-trim [post]
func (h *VideoHandler) ManualTrim(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortUploadError(c, err, "No file uploaded")
		return
	}
	tIn, errIn := strconv.ParseFloat(c.PostForm("t_in"), 64)
	tOut, errOut := strconv.ParseFloat(c.PostForm("t_out"), 64)
	if errIn != nil || errOut != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trim parameters")
		return
	}
	var explicit int64
	if raw := c.PostForm("sessionId"); raw != "" {
		if explicit, err = strconv.ParseInt(raw, 10, 64); err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid sessionId")
			return
		}
	}

	inputPath := filepath.Join(h.tempDir, "trim-in-"+uuid.NewString()+filepath.Ext(fileHeader.Filename))
	if err := c.SaveUploadedFile(fileHeader, inputPath); err != nil {
		log.Printf("ERROR: Saving video for trimming: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer os.Remove(inputPath)

	result, err := h.workoutService.TrimVideo(c.Request.Context(), service.TrimRequest{
		InputPath:       inputPath,
		TIn:             tIn,
		TOut:            tOut,
		ReplaceFilename: c.PostForm("replace"),
		SessionID:       resolveSessionID(c, explicit),
	})
	if err != nil {
		var procErr *external.ProcessError
		switch {
		case errors.Is(err, service.ErrInvalidTrim), errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, "Invalid trim parameters")
		case errors.Is(err, service.ErrVideoNotFound):
			abortWithError(c, http.StatusNotFound, "Video not found")
		case errors.As(err, &procErr):
			log.Printf("ERROR: Trim: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Video trimming failed", "details": procErr.Stderr})
		default:
			log.Printf("ERROR: Manual trim: %v", err)
			abortWithError(c, http.StatusInternalServerError, "Video trimming failed")
		}
		return
	}

	c.JSON(http.StatusOK, TrimResponse{
		Path:     result.Filename,
		Status:   "OK",
		Message:  "Video trimmed successfully",
		Replaced: result.Replaced,
	})
}
