package api

import (
	"alcyxob/workout-tracker/internal/repository/selector"
	"alcyxob/workout-tracker/internal/storage"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	selection    selector.Selection
	files        storage.FileStorage
	dbURL        string
	dbName       string
	probeTimeout time.Duration
}

func NewAdminHandler(selection selector.Selection, files storage.FileStorage, dbURL, dbName string, probeTimeout time.Duration) *AdminHandler {
	return &AdminHandler{
		selection:    selection,
		files:        files,
		dbURL:        dbURL,
		dbName:       dbName,
		probeTimeout: probeTimeout,
	}
}

// StorageStatus godoc
// @Summary Report which store is serving requests
// @Tags Admin
// @Produce json
// @Success 200 {object} StorageStatusResponse
// @Router /storage-status [get]
func (h *AdminHandler) StorageStatus(c *gin.Context) {
	resp := StorageStatusResponse{
		Status:         h.selection.Status(),
		HasDatabaseURL: h.dbURL != "",
	}
	if h.files != nil {
		resp.FileStorage = h.files.Backend()
	}
	switch {
	case h.selection.Durable:
		resp.Message = "Using " + string(h.selection.Backend) + " database storage"
	case h.dbURL != "":
		resp.Message = "DATABASE_URL is set but the database is unavailable; using in-memory storage"
	default:
		resp.Message = "Using in-memory storage (data is lost on restart)"
	}
	c.JSON(http.StatusOK, resp)
}

// MigrateToDB godoc
// @Summary Probe the configured database and create its tables
// @Description Runs independently of the live store; a successful probe takes effect after a restart.
// @Tags Admin
// @Produce json
// @Security BasicAuth
// @Success 200 {object} MigrateResponse
// @Failure 500 {object} MigrateResponse "Probe failed"
// @Router /migrate-to-db [post]
func (h *AdminHandler) MigrateToDB(c *gin.Context) {
	if h.dbURL == "" {
		abortWithError(c, http.StatusInternalServerError, "DATABASE_URL not configured")
		return
	}

	report := selector.Diagnose(c.Request.Context(), h.dbURL, h.dbName, h.probeTimeout)
	if !report.Success {
		log.Printf("WARN: Database probe failed: %s (%s)", report.Message, report.Details)
		c.JSON(http.StatusInternalServerError, MigrateResponse{Error: "Database connection failed", DiagnosticReport: report})
		return
	}
	log.Printf("INFO: Database probe succeeded for %s; restart to switch stores", report.Backend)
	c.JSON(http.StatusOK, MigrateResponse{DiagnosticReport: report})
}
