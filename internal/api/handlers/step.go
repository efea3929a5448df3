package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aci2n/subarr/internal/controllers"
	"github.com/sirupsen/logrus"
)

// StepHandler triggers one pipeline step
type StepHandler struct {
	pipeline *controllers.Pipeline
	logger   *logrus.Logger
}

// NewStepHandler creates a new step handler
func NewStepHandler(pipeline *controllers.Pipeline, logger *logrus.Logger) *StepHandler {
	return &StepHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// StepRequest carries the raw locator of the page the shim is sitting on
type StepRequest struct {
	Locator string `json:"locator"`
}

// ServeHTTP runs one step and answers with the navigation command. The
// response is always 200 with an action; step failures surface as the
// reload action, not as an HTTP error, so the shim's handling stays uniform.
func (h *StepHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request StepRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.WithError(err).Error("Failed to decode step request")
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	result := h.pipeline.Execute(r.Context(), request.Locator)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
