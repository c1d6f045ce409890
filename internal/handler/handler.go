package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"stratodrive/internal/domain"
)

// writeError сопоставляет типизированные ошибки ядра с HTTP-статусами.
// Неопознанная ошибка логируется и уходит наружу как 500 без деталей.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrParentNotFound):
		http.Error(w, "Parent folder not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrTargetNotFound):
		http.Error(w, "Target folder not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrNotInTrash):
		http.Error(w, "Item is not in trash", http.StatusConflict)
	case errors.Is(err, domain.ErrAlreadyExists):
		http.Error(w, "Folder with this name already exists", http.StatusConflict)
	case errors.Is(err, domain.ErrSelfReference):
		http.Error(w, "Cannot move folder into itself", http.StatusBadRequest)
	case errors.Is(err, domain.ErrFileTooLarge):
		http.Error(w, "File size exceeds plan upload limit", http.StatusRequestEntityTooLarge)
	case errors.Is(err, domain.ErrQuotaExceeded):
		http.Error(w, "Not enough storage space available", http.StatusInsufficientStorage)
	case errors.Is(err, domain.ErrBlobStore):
		http.Error(w, "Blob storage is unavailable", http.StatusBadGateway)
	default:
		log.Printf("[Handler] Внутренняя ошибка: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[Handler] Ошибка кодирования ответа: %v", err)
	}
}
