package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"meetmii/internal/auth"
	"meetmii/internal/service"
	"meetmii/internal/util"
)

// ProfileHandler handles HTTP requests for profile operations
type ProfileHandler struct {
	profileService *service.ProfileService
	tokens         *auth.TokenService
	logger         *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService, tokens *auth.TokenService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		tokens:         tokens,
		logger:         logger,
	}
}

// RegisterRoutes registers all profile routes
func (h *ProfileHandler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/profile", func(r chi.Router) {
		// Public view, reachable from a QR scan without a token
		r.Get("/{username}", h.GetByUsername)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticator(h.tokens))
			r.Post("/", h.Upsert)
		})
	})
}

// Upsert creates or partially updates the caller's profile
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondWithError(h.logger, w, http.StatusUnauthorized, errors.New("missing token claims"), "Unauthorized")
		return
	}

	var req service.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	profile, err := h.profileService.Upsert(ctx, claims.UserID, claims.Username, &req)
	if err != nil {
		respondWithError(h.logger, w, h.getStatusCode(err), err, "Failed to save profile")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(profile, "Profile saved successfully"))
	h.logger.Info("Profile saved via HTTP",
		util.String("username", claims.Username),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "Upsert"),
	)
}

// GetByUsername returns the public view of a profile. A successful read is
// treated as a scan and published for analytics.
func (h *ProfileHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	username := chi.URLParam(r, "username")
	if username == "" {
		respondWithError(h.logger, w, http.StatusBadRequest, errors.New("username is required"), "Username is required")
		return
	}

	view, err := h.profileService.GetPublic(ctx, username)
	if err != nil {
		respondWithError(h.logger, w, h.getStatusCode(err), err, "Failed to get profile")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(view, "Profile retrieved successfully"))
	h.logger.Debug("Profile viewed via HTTP",
		util.String("username", username),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "GetByUsername"),
	)
}

// HealthCheck handles service health check
func (h *ProfileHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.profileService.HealthCheck(ctx); err != nil {
		respondWithError(h.logger, w, http.StatusServiceUnavailable, err, "Service unhealthy")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, "Service is healthy"))
}

// getStatusCode determines the appropriate HTTP status code for an error
func (h *ProfileHandler) getStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
