// Package handlers provides HTTP handlers for analysis operations.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantgold/internal/domain"
	"github.com/aristath/quantgold/internal/modules/analysis"
)

// Handler handles analysis HTTP requests
type Handler struct {
	service *analysis.Service
	log     zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service *analysis.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analysis").Logger(),
	}
}

// RecalculateRequest carries a previously returned result plus one field edit
type RecalculateRequest struct {
	Result *domain.RatioResult `json:"result"`
	Field  string              `json:"field"`
	Value  float64             `json:"value"`
}

// HandleAnalyze handles POST /api/analysis. The request context doubles as
// the supersession signal: when the caller abandons this request for a newer
// one the fetch pipeline stops and no result is written.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Ticker == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}
	if req.HorizonYears < 0 {
		http.Error(w, "horizon must not be negative", http.StatusBadRequest)
		return
	}

	result, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		h.writeAnalysisError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleRecalculate handles POST /api/analysis/recalculate. Edits one
// fundamental on an existing result and re-derives every dependent score
// without touching the network.
func (h *Handler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	var req RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Result == nil {
		http.Error(w, "result is required", http.StatusBadRequest)
		return
	}
	if req.Field == "" {
		http.Error(w, "field is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Recalculate(req.Result, req.Field, req.Value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeAnalysisError maps engine errors onto HTTP statuses. Not-found tickers
// are client errors, an unreachable gold source is an upstream failure.
func (h *Handler) writeAnalysisError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(r.Context().Err(), context.Canceled) {
		// Superseded by a newer request, nobody is listening anymore
		h.log.Debug().Msg("Analysis abandoned by client")
		return
	}

	status := http.StatusInternalServerError
	var notFound domain.ErrSeriesNotFound
	var goldDown domain.ErrGoldUnavailable
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &goldDown):
		status = http.StatusBadGateway
	}

	h.log.Warn().Err(err).Int("status", status).Msg("Analysis failed")
	h.writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": err.Error(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
