package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"melting-tank-backend/internal/models"
	"melting-tank-backend/internal/service"
)

// ArchiveReader serves the durable prediction history for the archive
// endpoint
type ArchiveReader interface {
	RecentPredictions(limit int) ([]models.DefectPrediction, error)
}

// Handler holds the dependencies for all HTTP endpoints
type Handler struct {
	Service        *service.PredictionService
	Archive        ArchiveReader
	APIKey         string
	DisplayZone    *time.Location
	RollingAvgSize int
	Version        string
}

type predictionResponse struct {
	ProbNG    float64 `json:"prob_ng"`
	Label     string  `json:"label"`
	Threshold float64 `json:"threshold"`
	Timestamp string  `json:"timestamp"`
	Version   string  `json:"version"`
}

type warmingResponse struct {
	Status   string `json:"status"`
	Received int    `json:"received"`
	Required int    `json:"required"`
}

type dashboardResponse struct {
	Latest     *predictionResponse  `json:"latest"`
	RollingAvg *float64             `json:"rolling_avg"`
	History    []predictionResponse `json:"history"`
}

type errorResponse struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message"`
}

// renderPrediction converts the stored UTC instant into the configured
// civil display zone. The zone is applied only here, at the boundary.
func (h *Handler) renderPrediction(p models.DefectPrediction) predictionResponse {
	return predictionResponse{
		ProbNG:    p.Probability,
		Label:     string(p.Label),
		Threshold: p.Threshold,
		Timestamp: p.Timestamp.In(h.DisplayZone).Format("2006-01-02 15:04:05"),
		Version:   p.ModelVersion,
	}
}

// Root reports service status and version
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Melting Tank Quality API is running",
		"version": h.Version,
	})
}

// Healthz is the liveness probe
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports readiness including window warm-up progress
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ready":           true,
		"version":         h.Version,
		"window_ready":    h.Service.Ready(),
		"window_received": h.Service.WindowLen(),
		"window_required": h.Service.WindowCapacity(),
	})
}

// Predict triggers one prediction over the current sensor window
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	prediction, err := h.Service.Predict()
	if err != nil {
		if errors.Is(err, service.ErrNotReady) {
			writeJSON(w, http.StatusOK, warmingResponse{
				Status:   "insufficient_data",
				Received: h.Service.WindowLen(),
				Required: h.Service.WindowCapacity(),
			})
			return
		}
		log.Printf("Predict request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Ok:      false,
			Message: "prediction failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, h.renderPrediction(prediction))
}

// DashboardData serves the read-only feed backing the dashboard chart
func (h *Handler) DashboardData(w http.ResponseWriter, r *http.Request) {
	resp := dashboardResponse{
		History: []predictionResponse{},
	}

	if latest, ok := h.Service.Store().Latest(); ok {
		rendered := h.renderPrediction(latest)
		resp.Latest = &rendered
	}
	if avg, ok := h.Service.Store().RecentAverage(h.RollingAvgSize); ok {
		resp.RollingAvg = &avg
	}
	for _, p := range h.Service.Store().History() {
		resp.History = append(resp.History, h.renderPrediction(p))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Predictions serves recent rows from the ClickHouse archive
func (h *Handler) Predictions(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Ok:      false,
				Message: "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	rows, err := h.Archive.RecentPredictions(limit)
	if err != nil {
		log.Printf("Error querying prediction archive: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Ok:      false,
			Message: "failed to query prediction archive",
		})
		return
	}

	rendered := make([]predictionResponse, 0, len(rows))
	for _, p := range rows {
		rendered = append(rendered, h.renderPrediction(p))
	}

	writeJSON(w, http.StatusOK, rendered)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
