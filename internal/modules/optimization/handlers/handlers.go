// Package handlers exposes the optimization service over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/charts"
	"github.com/aristath/frontier/internal/modules/optimization"
)

// Handler handles optimization HTTP endpoints.
type Handler struct {
	service *optimization.Service
	log     zerolog.Logger
}

// NewHandler creates new optimization handlers.
func NewHandler(service *optimization.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("component", "optimization_handlers").Logger(),
	}
}

// RegisterRoutes registers optimization routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		r.Post("/optimize", h.HandleOptimize)
		r.Post("/frontier", h.HandleFrontier)
		r.Get("/frontier/chart", h.HandleFrontierChart)
	})
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// optimizeResponse is the wire form of an optimization result, with weights
// keyed by ticker in universe order.
type optimizeResponse struct {
	RunID            string             `json:"run_id"`
	Weights          map[string]float64 `json:"weights"`
	AnnualReturn     float64            `json:"expected_annual_return"`
	AnnualVolatility float64            `json:"annual_volatility"`
	SharpeRatio      float64            `json:"sharpe_ratio"`
}

// HandleOptimize runs the max-Sharpe optimization for the configured
// universe.
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Optimize(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	weights := make(map[string]float64, len(result.Symbols))
	for i, symbol := range result.Symbols {
		weights[symbol] = result.Weights[i]
	}

	h.writeJSON(w, http.StatusOK, optimizeResponse{
		RunID:            result.RunID,
		Weights:          weights,
		AnnualReturn:     result.AnnualReturn,
		AnnualVolatility: result.AnnualVolatility,
		SharpeRatio:      result.SharpeRatio,
	})
}

type frontierRequest struct {
	NumSamples int   `json:"num_samples"`
	Seed       int64 `json:"seed"`
}

// HandleFrontier samples the feasible risk/return space.
func (h *Handler) HandleFrontier(w http.ResponseWriter, r *http.Request) {
	var req frontierRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
			return
		}
	}

	points, err := h.service.Frontier(r.Context(), req.NumSamples, req.Seed)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"num_samples": len(points),
		"points":      points,
	})
}

// HandleFrontierChart renders the sampled frontier with the optimal
// portfolio overlaid as a PNG.
func (h *Handler) HandleFrontierChart(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.Frontier(r.Context(), 0, 0)
	if err != nil {
		h.writeError(w, err)
		return
	}
	result, err := h.service.Optimize(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	img, err := charts.RenderFrontier(points, result)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to render frontier chart")
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		h.log.Error().Err(err).Msg("Failed to write chart response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInsufficientData), errors.Is(err, domain.ErrDataIntegrity):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrConvergence), errors.Is(err, domain.ErrDegenerateVolatility),
		errors.Is(err, domain.ErrNumerical), errors.Is(err, domain.ErrDimensionMismatch):
		status = http.StatusUnprocessableEntity
	}

	h.log.Error().Err(err).Int("status", status).Msg("Request failed")
	h.writeJSON(w, status, map[string]any{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
