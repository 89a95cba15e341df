package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/adapter/http/dto"
	"github.com/iho/saccopay/internal/infrastructure/metrics"
)

// AuthHandler handles registration, login and the current member.
type AuthHandler struct {
	users   UserService
	tokens  TokenIssuer
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler. m may be nil.
func NewAuthHandler(users UserService, tokens TokenIssuer, m *metrics.Metrics, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:   users,
		tokens:  tokens,
		metrics: m,
		logger:  logger,
	}
}

// Register creates a member and returns a session token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to register", err)
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to generate token", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AuthResponse{User: dto.UserFromDomain(user), Token: token})
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required", "")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.recordAttempt("failure")
		writeDomainError(w, r, h.logger, "failed to log in", err)
		return
	}
	h.recordAttempt("success")

	token, err := h.tokens.Generate(user)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to generate token", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{User: dto.UserFromDomain(user), Token: token})
}

// Me returns the authenticated member.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	current, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), current.ID)
	if err != nil {
		writeDomainError(w, r, h.logger, "failed to load member", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

func (h *AuthHandler) recordAttempt(result string) {
	if h.metrics != nil {
		h.metrics.AuthAttempts.WithLabelValues(result).Inc()
	}
}
