package handler

import (
	"net/http"

	"stratodrive/internal/identity"
	"stratodrive/internal/service"
)

type TrashHandler struct {
	trashService *service.TrashService
}

func NewTrashHandler(trashService *service.TrashService) *TrashHandler {
	return &TrashHandler{trashService: trashService}
}

// GetTrashItems отдаёт корзину диска со сроками до окончательного удаления.
func (h *TrashHandler) GetTrashItems(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := h.trashService.GetTrashItems(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// Cleanup запускает чистку просроченной корзины вручную, не дожидаясь
// фонового прохода.
func (h *TrashHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	result, err := h.trashService.CleanupOldTrash(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
