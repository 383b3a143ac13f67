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

// UserHandler handles HTTP requests for account operations
type UserHandler struct {
	userService *service.UserService
	tokens      *auth.TokenService
	logger      *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, tokens *auth.TokenService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		tokens:      tokens,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/users", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticator(h.tokens))
			r.Get("/me", h.Me)
		})
	})
}

// Register handles account creation
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	user, err := h.userService.Register(ctx, &req)
	if err != nil {
		respondWithError(h.logger, w, h.getStatusCode(err), err, "Failed to register user")
		return
	}

	respondWithJSON(w, http.StatusCreated, successResponse(user, "User registered successfully"))
	h.logger.Info("User registered via HTTP",
		util.String("username", user.Username),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "Register"),
	)
}

// Login handles credential verification and token issuance
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	token, err := h.userService.Login(ctx, &req)
	if err != nil {
		respondWithError(h.logger, w, h.getStatusCode(err), err, "Failed to log in")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(token, "Login successful"))
	h.logger.Info("User logged in via HTTP",
		util.String("email", req.Email),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "Login"),
	)
}

// Me returns the account of the authenticated caller
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondWithError(h.logger, w, http.StatusUnauthorized, errors.New("missing token claims"), "Unauthorized")
		return
	}

	user, err := h.userService.GetByID(ctx, claims.UserID)
	if err != nil {
		respondWithError(h.logger, w, h.getStatusCode(err), err, "Failed to get user")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(user, "User retrieved successfully"))
}

// HealthCheck handles service health check
func (h *UserHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.userService.HealthCheck(ctx); err != nil {
		respondWithError(h.logger, w, http.StatusServiceUnavailable, err, "Service unhealthy")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, "Service is healthy"))
}

// getStatusCode determines the appropriate HTTP status code for an error
func (h *UserHandler) getStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
