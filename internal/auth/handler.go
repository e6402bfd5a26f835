package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/simpletodo/api/internal/httputil"
	"github.com/simpletodo/api/internal/logging"
	"github.com/simpletodo/api/internal/user"
)

// Handler contains HTTP handlers for the /api/users endpoints
type Handler struct {
	service     *Service
	rateLimiter RateLimiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter RateLimiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// CredentialsRequest is the body for both registration and login
type CredentialsRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// AuthResponse carries the public identity and a freshly minted token
type AuthResponse struct {
	UserName string `json:"userName"`
	Token    string `json:"token"`
}

// Register handles POST /api/users
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limited(w, r, "register") {
		return
	}

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.UserName == "" || req.Password == "" {
		respondError(w, "missing userName or password", httputil.CodeMissingFields, http.StatusBadRequest)
		return
	}

	identity, err := h.service.Register(r.Context(), req.UserName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateUserName):
			logger.Warn("registration failed: duplicate userName", "user_name", req.UserName)
			respondError(w, err.Error(), httputil.CodeDuplicateUserName, http.StatusConflict)
		case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrUserNameTooShort):
			logger.Warn("registration failed: validation error", "error", err.Error())
			respondError(w, err.Error(), httputil.CodeValidationError, http.StatusBadRequest)
		default:
			logger.Error("registration failed: internal error", "error", err.Error())
			respondError(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	token, err := h.service.IssueToken(identity.UserID)
	if err != nil {
		logger.Error("failed to issue token", "error", err.Error())
		respondError(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user registered", "user_id", identity.UserID)

	respondJSON(w, AuthResponse{
		UserName: identity.UserName,
		Token:    token,
	}, http.StatusCreated)
}

// Login handles POST /api/users/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limited(w, r, "login") {
		return
	}

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.UserName == "" || req.Password == "" {
		respondError(w, "missing userName or password", httputil.CodeMissingFields, http.StatusBadRequest)
		return
	}

	identity, err := h.service.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoSuchUser):
			logger.Warn("login failed: no such user", "user_name", req.UserName)
			respondError(w, err.Error(), httputil.CodeNoSuchUser, http.StatusUnauthorized)
		case errors.Is(err, ErrWrongPassword):
			logger.Warn("login failed: wrong password", "user_name", req.UserName)
			respondError(w, err.Error(), httputil.CodeWrongPassword, http.StatusUnauthorized)
		default:
			logger.Error("login failed: internal error", "error", err.Error())
			respondError(w, "failed to log in", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	token, err := h.service.IssueToken(identity.UserID)
	if err != nil {
		logger.Error("failed to issue token", "error", err.Error())
		respondError(w, "failed to log in", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	respondJSON(w, AuthResponse{
		UserName: identity.UserName,
		Token:    token,
	}, http.StatusOK)
}

// limited applies the IP rate limit for anonymous endpoints. Limiter errors
// are logged and ignored; rate limiting is best effort.
func (h *Handler) limited(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())
	ip := getClientIP(r)

	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		respondError(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	return false
}

// getClientIP returns the request's client IP. The RealIP middleware has
// already rewritten RemoteAddr from forwarding headers where present.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	httputil.RespondJSON(w, data, statusCode)
}

func respondError(w http.ResponseWriter, message, code string, statusCode int) {
	httputil.RespondErrorWithCode(w, message, code, statusCode)
}
