package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"meetmii/internal/service"
	"meetmii/internal/util"
)

// AnalyticsHandler handles HTTP requests for scan analytics
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	logger           *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// RegisterRoutes registers all analytics routes
func (h *AnalyticsHandler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/analytics", func(r chi.Router) {
		r.Post("/scan", h.LogScan)
		r.Get("/{username}/stats", h.Stats)
	})
}

// LogScan appends one scan event directly, bypassing the event stream
func (h *AnalyticsHandler) LogScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req service.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.analyticsService.LogScan(ctx, &req); err != nil {
		respondWithError(h.logger, w, h.getStatusCode(err), err, "Failed to log scan")
		return
	}

	respondWithJSON(w, http.StatusCreated, successResponse(nil, "Scan logged successfully"))
	h.logger.Info("Scan logged via HTTP",
		util.String("username", req.Username),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "LogScan"),
	)
}

// Stats returns scan counters for a username
func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	username := chi.URLParam(r, "username")
	if username == "" {
		respondWithError(h.logger, w, http.StatusBadRequest, errors.New("username is required"), "Username is required")
		return
	}

	stats, err := h.analyticsService.Stats(ctx, username)
	if err != nil {
		respondWithError(h.logger, w, h.getStatusCode(err), err, "Failed to get scan stats")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(stats, "Scan stats retrieved successfully"))
	h.logger.Debug("Scan stats retrieved via HTTP",
		util.String("username", username),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "Stats"),
	)
}

// HealthCheck handles service health check
func (h *AnalyticsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.analyticsService.HealthCheck(ctx); err != nil {
		respondWithError(h.logger, w, http.StatusServiceUnavailable, err, "Service unhealthy")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, "Service is healthy"))
}

// getStatusCode determines the appropriate HTTP status code for an error
func (h *AnalyticsHandler) getStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
