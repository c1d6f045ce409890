package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stratodrive/internal/identity"
	"stratodrive/internal/preview"
)

type PreviewHandler struct {
	previewService *preview.Service
}

func NewPreviewHandler(previewService *preview.Service) *PreviewHandler {
	return &PreviewHandler{previewService: previewService}
}

// GetPreview отдаёт JPEG-превью файла диска.
func (h *PreviewHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fileUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		http.Error(w, "Invalid file UUID", http.StatusBadRequest)
		return
	}

	data, err := h.previewService.GetPreview(r.Context(), fileUUID, ownerID)
	if err != nil {
		if errors.Is(err, preview.ErrUnsupported) {
			http.Error(w, "Preview is not supported for this file type", http.StatusUnsupportedMediaType)
			return
		}
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "max-age=86400")
	w.Write(data)
}

// GetWebVideo отдаёт видео в пригодном для браузера MP4.
func (h *PreviewHandler) GetWebVideo(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fileUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		http.Error(w, "Invalid file UUID", http.StatusBadRequest)
		return
	}

	data, err := h.previewService.WebVideo(r.Context(), fileUUID, ownerID)
	if err != nil {
		if errors.Is(err, preview.ErrUnsupported) {
			http.Error(w, "Not a video file", http.StatusUnsupportedMediaType)
			return
		}
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Write(data)
}
