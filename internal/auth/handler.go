package auth

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/keterhq/keter-rest/internal/httpx"
	"go.uber.org/zap"
)

type Handler interface {
	Login(w http.ResponseWriter, r *http.Request)
}

type handler struct {
	logger    *zap.Logger
	service   Service
	validator *validator.Validate
}

func NewHandler(service Service, l *zap.Logger) Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	return &handler{
		logger:    l,
		service:   service,
		validator: v,
	}
}

func (h *handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		httpx.WriteError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req loginRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("failed to decode login request body", zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF { // check if there's any trailing data
		httpx.WriteError(w, http.StatusBadRequest, "request body must contain a single JSON object")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("login validation failed", zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, httpx.ValidationMessage(err))
		return
	}

	signed, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, "No user found with email: "+req.Email)
		case errors.Is(err, ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid username or password")
		default:
			h.logger.Error("login failed", zap.Error(err))
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginResponse{AccessToken: signed})
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}
