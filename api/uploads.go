package api

import (
	"net/http"

	"log/slog"

	"github.com/sholas-io/onboard/internal/storage"
)

// maxUploadBytes bounds a single document or video upload.
const maxUploadBytes = 64 << 20

type UploadHandler struct {
	blobs *storage.BlobStore
}

func NewUploadHandler(blobs *storage.BlobStore) *UploadHandler {
	return &UploadHandler{blobs: blobs}
}

type uploadResponse struct {
	ID string `json:"id"`
}

// Upload stores one multipart file under field "file" and returns its blob
// id. Profiles and documents reference blobs by id only; bytes never pass
// through the profile records.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	id, err := h.blobs.Save(file, header.Filename)
	if err != nil {
		logger.Error("store upload", slog.Any("err", err))
		http.Error(w, "Error storing file", http.StatusInternalServerError)
		return
	}

	writeJSON(w, uploadResponse{ID: id}, http.StatusCreated)
}
