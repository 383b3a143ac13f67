package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"meetmii/internal/service"
	"meetmii/internal/util"
)

// InsightHandler handles HTTP requests for weekly insights
type InsightHandler struct {
	insightService *service.InsightService
	logger         *zap.Logger
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(insightService *service.InsightService, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
		logger:         logger,
	}
}

// RegisterRoutes registers all insight routes
func (h *InsightHandler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/insights", func(r chi.Router) {
		r.Post("/generate", h.Generate)
		r.Get("/{username}", h.Latest)
	})
}

// Generate runs the insight pipeline for every user with scan data
func (h *InsightHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	processed, err := h.insightService.GenerateAll(ctx)
	if err != nil {
		respondWithError(h.logger, w, http.StatusInternalServerError, err, "Failed to generate insights")
		return
	}

	data := map[string]interface{}{
		"status":          "completed",
		"users_processed": processed,
	}
	respondWithJSON(w, http.StatusOK, successResponse(data, "Insights generated successfully"))
	h.logger.Info("Insights generated via HTTP",
		util.Int("users_processed", processed),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "Generate"),
	)
}

// Latest returns the most recent insight for a username
func (h *InsightHandler) Latest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	username := chi.URLParam(r, "username")
	if username == "" {
		respondWithError(h.logger, w, http.StatusBadRequest, errors.New("username is required"), "Username is required")
		return
	}

	insight, err := h.insightService.LatestFor(ctx, username)
	if err != nil {
		respondWithError(h.logger, w, http.StatusInternalServerError, err, "Failed to get insight")
		return
	}

	data := map[string]string{
		"username": username,
		"insight":  insight,
	}
	respondWithJSON(w, http.StatusOK, successResponse(data, "Insight retrieved successfully"))
	h.logger.Debug("Insight retrieved via HTTP",
		util.String("username", username),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "Latest"),
	)
}

// HealthCheck handles service health check
func (h *InsightHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.insightService.HealthCheck(ctx); err != nil {
		respondWithError(h.logger, w, http.StatusServiceUnavailable, err, "Service unhealthy")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, "Service is healthy"))
}
