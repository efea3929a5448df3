package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aci2n/subarr/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler reports ledger aggregates
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalSteps          int            `json:"total_steps"`
	StepsByTransition   map[string]int `json:"steps_by_transition"`
	TotalDownloads      int            `json:"total_downloads"`
	DownloadsByLanguage map[string]int `json:"downloads_by_language"`
	DownloadedBytes     int64          `json:"downloaded_bytes"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := h.db.GetAllStepRecords()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get step records")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	downloads, err := h.db.GetAllDownloads()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get downloads")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		TotalSteps:          len(records),
		StepsByTransition:   make(map[string]int),
		TotalDownloads:      len(downloads),
		DownloadsByLanguage: make(map[string]int),
	}

	for _, record := range records {
		response.StepsByTransition[string(record.Transition)]++
	}
	for _, download := range downloads {
		response.DownloadsByLanguage[download.LanguageID]++
		response.DownloadedBytes += download.SizeBytes
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
