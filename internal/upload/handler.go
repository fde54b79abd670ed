package upload

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/keterhq/keter-rest/internal/httpx"
	"go.uber.org/zap"
)

type Handler interface {
	Routes() chi.Router
}

type handler struct {
	logger   *zap.Logger
	service  Service
	maxBytes int64
}

func NewHandler(service Service, maxBytes int64, l *zap.Logger) Handler {
	return &handler{
		logger:   l,
		service:  service,
		maxBytes: maxBytes,
	}
}

func (h *handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Upload)
	return r
}

func (h *handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		h.logger.Warn("failed to read multipart field", zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, "multipart field 'image' is required")
		return
	}
	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	path, err := h.service.SaveImage(r.Context(), header.Filename, contents)
	if err != nil {
		h.logger.Error("failed to store upload", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httpx.WriteJSON(w, http.StatusOK, uploadResponse{Image: path})
}

type uploadResponse struct {
	Image string `json:"image"`
}
