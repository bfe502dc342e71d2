package http

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/storage"
)

// maxUploadBytes caps a single listing image.
const maxUploadBytes = 10 << 20

// ImageUploadHandler serves the presigned URLs the local blob store hands
// out, so development setups need no cloud bucket.
type ImageUploadHandler struct {
	files storage.LocalFiles
}

func NewImageUploadHandler(files storage.LocalFiles) *ImageUploadHandler {
	return &ImageUploadHandler{files: files}
}

// imageKey reads the object key from the query and writes 400 when it is
// not a listing image key.
func imageKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.URL.Query().Get("key")
	if !storage.IsListingImageKey(key) {
		http.Error(w, "invalid or missing key", http.StatusBadRequest)
		return "", false
	}
	return key, true
}

// HandleMockUpload stores the request body under the key. The declared
// content type must be an accepted image type matching the key.
func (h *ImageUploadHandler) HandleMockUpload(w http.ResponseWriter, r *http.Request) {
	key, ok := imageKey(w, r)
	if !ok {
		return
	}
	contentType := r.Header.Get("Content-Type")
	if _, ok := storage.ImageExtension(contentType); !ok || storage.ContentTypeOf(key) != contentType {
		http.Error(w, "unsupported content type", http.StatusBadRequest)
		return
	}

	if err := h.files.SaveFile(key, http.MaxBytesReader(w, r.Body, maxUploadBytes)); err != nil {
		logger.Warn("Listing image upload failed", "key", key, "error", err)
		http.Error(w, "failed to save image", http.StatusInternalServerError)
		return
	}
	logger.Debug("Listing image uploaded", "key", key)
	w.Header().Set("ETag", `"`+mux.Vars(r)["token"]+`"`)
	w.WriteHeader(http.StatusOK)
}

func (h *ImageUploadHandler) HandleMockDownload(w http.ResponseWriter, r *http.Request) {
	key, ok := imageKey(w, r)
	if !ok {
		return
	}
	file, err := h.files.ReadFile(key)
	if err != nil {
		http.Error(w, "image not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", storage.ContentTypeOf(key))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.Debug("Listing image download interrupted", "key", key, "error", err)
	}
}

// RegisterMockStorageRoutes mounts the routes the mock presigned URLs point at.
func RegisterMockStorageRoutes(router *mux.Router, files storage.LocalFiles) {
	handler := NewImageUploadHandler(files)
	router.HandleFunc("/api/v1/upload/{token}", handler.HandleMockUpload).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/download/{key}", handler.HandleMockDownload).Methods(http.MethodGet)
}
