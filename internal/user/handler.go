package user

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/keterhq/keter-rest/internal/auth"
	"github.com/keterhq/keter-rest/internal/httpx"
	"github.com/keterhq/keter-rest/internal/permission"
	"go.uber.org/zap"
)

type Handler interface {
	Routes() chi.Router
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

// Routes attaches the per-verb permission interceptors at composition time.
// The authenticate layer is applied by the composition root, above this
// router.
func (h *handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequirePermission(permission.ReadUser)).Get("/", h.GetAll)
	r.With(auth.RequirePermission(permission.CreateUser)).Post("/", h.Create)
	r.With(auth.RequirePermission(permission.ReadUser)).Get("/{id}", h.Get)
	r.With(auth.RequirePermission(permission.UpdateUser)).Put("/{id}", h.Update)
	r.With(auth.RequirePermission(permission.DeleteUser)).Delete("/{id}", h.Delete)
	r.With(auth.RequirePermission(permission.UpdateUser)).Put("/{id}/permissions", h.UpdatePermissions)
	return r
}

func (h *handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Create(r.Context(), req.Name, req.Age, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			httpx.WriteError(w, http.StatusBadRequest, "Email already exists: "+req.Email)
		default:
			h.logger.Error("failed to create user", zap.Error(err))
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, err, id)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *handler) GetAll(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Update(r.Context(), id, req.Name, req.Age, req.Password)
	if err != nil {
		h.writeLookupError(w, err, id)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete user", zap.Int32("id", id), zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, deleted)
}

func (h *handler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req updatePermissionsRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.UpdatePermissions(r.Context(), id, req.Permissions); err != nil {
		h.writeLookupError(w, err, id)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, true)
}

// decode enforces the JSON body contract shared by every write endpoint.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		httpx.WriteError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.logger.Warn("failed to decode request body", zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		httpx.WriteError(w, http.StatusBadRequest, "request body must contain a single JSON object")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.logger.Warn("request validation failed", zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, httpx.ValidationMessage(err))
		return false
	}
	return true
}

func (h *handler) pathID(w http.ResponseWriter, r *http.Request) (int32, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id < 1 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid user id: "+raw)
		return 0, false
	}
	return int32(id), true
}

func (h *handler) writeLookupError(w http.ResponseWriter, err error, id int32) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "User not found with id: "+strconv.FormatInt(int64(id), 10))
	default:
		h.logger.Error("user operation failed", zap.Int32("id", id), zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

type createUserRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=64"`
	Age      int32  `json:"age"      validate:"required,gte=0,lte=150"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type updateUserRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=64"`
	Age      int32  `json:"age"      validate:"required,gte=0,lte=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type updatePermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required"`
}
