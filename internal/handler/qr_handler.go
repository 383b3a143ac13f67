package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"meetmii/internal/service"
	"meetmii/internal/util"
)

// QRHandler handles HTTP requests for QR code rendering
type QRHandler struct {
	qrService *service.QRService
	logger    *zap.Logger
}

// NewQRHandler creates a new QR handler
func NewQRHandler(qrService *service.QRService, logger *zap.Logger) *QRHandler {
	return &QRHandler{
		qrService: qrService,
		logger:    logger,
	}
}

// RegisterRoutes registers all QR routes
func (h *QRHandler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)
	router.Get("/qr/{username}", h.Render)
}

// Render streams the profile QR code as a PNG image
func (h *QRHandler) Render(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	username := chi.URLParam(r, "username")
	if username == "" {
		respondWithError(h.logger, w, http.StatusBadRequest, errors.New("username is required"), "Username is required")
		return
	}

	png, err := h.qrService.Render(username)
	if err != nil {
		respondWithError(h.logger, w, http.StatusInternalServerError, err, "Failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.logger.Error("Failed to write QR image", util.ErrorField(err))
	}

	h.logger.Debug("QR code rendered via HTTP",
		util.String("username", username),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "Render"),
	)
}

// HealthCheck handles service health check. QR rendering has no backing
// store, so this is a static response.
func (h *QRHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, successResponse(nil, "Service is healthy"))
}
