package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stratodrive/internal/domain"
	"stratodrive/internal/identity"
	"stratodrive/internal/service"
)

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

func (h *MediaHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File is required", http.StatusBadRequest)
		return
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	upload := domain.MediaUpload{
		Filename: header.Filename,
		OwnerID:  ownerID,
		Category: r.FormValue("category"),
		Data:     data,
	}
	if upload.Category == "" {
		upload.Category = "other"
	}

	if v := r.FormValue("confidence"); v != "" {
		confidence, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "Invalid confidence", http.StatusBadRequest)
			return
		}
		upload.Confidence = &confidence
	}
	if v := r.FormValue("width"); v != "" {
		upload.Width, _ = strconv.Atoi(v)
	}
	if v := r.FormValue("height"); v != "" {
		upload.Height, _ = strconv.Atoi(v)
	}
	if v := r.FormValue("taken_at"); v != "" {
		takenAt, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "Invalid taken_at", http.StatusBadRequest)
			return
		}
		upload.TakenAt = &takenAt
	}

	item, err := h.mediaService.UploadMedia(r.Context(), upload)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itemUUID, err := parseMediaUUID(r)
	if err != nil {
		http.Error(w, "Invalid media UUID", http.StatusBadRequest)
		return
	}

	item, err := h.mediaService.GetMedia(r.Context(), itemUUID, ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

func (h *MediaHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	category := chi.URLParam(r, "category")
	items, err := h.mediaService.ListByCategory(r.Context(), ownerID, category)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

func (h *MediaHandler) ListTrashed(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := h.mediaService.ListTrashed(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

func (h *MediaHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itemUUID, err := parseMediaUUID(r)
	if err != nil {
		http.Error(w, "Invalid media UUID", http.StatusBadRequest)
		return
	}

	if err := h.mediaService.DeleteMedia(r.Context(), itemUUID, ownerID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MediaHandler) RestoreMedia(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itemUUID, err := parseMediaUUID(r)
	if err != nil {
		http.Error(w, "Invalid media UUID", http.StatusBadRequest)
		return
	}

	if err := h.mediaService.RestoreMedia(r.Context(), itemUUID, ownerID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MediaHandler) PermanentDeleteMedia(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itemUUID, err := parseMediaUUID(r)
	if err != nil {
		http.Error(w, "Invalid media UUID", http.StatusBadRequest)
		return
	}

	if err := h.mediaService.PermanentDeleteMedia(r.Context(), itemUUID, ownerID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MediaHandler) DeleteByCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	category := chi.URLParam(r, "category")
	deleted, err := h.mediaService.DeleteByCategory(r.Context(), ownerID, category)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *MediaHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.mediaService.EmptyTrash(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *MediaHandler) GetStorageAnalysis(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	analysis, err := h.mediaService.GetStorageAnalysis(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

func parseMediaUUID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "uuid"))
}
