package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stratodrive/internal/domain"
	"stratodrive/internal/identity"
	"stratodrive/internal/service"
)

type QuotaHandler struct {
	quotaService *service.QuotaService
	usageService *service.UsageService
}

func NewQuotaHandler(quotaService *service.QuotaService, usageService *service.UsageService) *QuotaHandler {
	return &QuotaHandler{
		quotaService: quotaService,
		usageService: usageService,
	}
}

type setPlanRequest struct {
	Plan string `json:"plan"`
}

func storageDomain(r *http.Request) string {
	switch chi.URLParam(r, "domain") {
	case domain.DomainGallery:
		return domain.DomainGallery
	default:
		return domain.DomainDrive
	}
}

// GetQuota отдаёт состояние квоты домена.
func (h *QuotaHandler) GetQuota(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	info, err := h.quotaService.GetQuotaInfo(r.Context(), ownerID, storageDomain(r))
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

// SetPlan переводит владельца на тариф в домене.
func (h *QuotaHandler) SetPlan(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req setPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Plan == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.quotaService.SetPlan(r.Context(), ownerID, storageDomain(r), req.Plan); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPlan отдаёт параметры текущего тарифа домена, включая потолок
// размера одной загрузки.
func (h *QuotaHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	plan, err := h.quotaService.ResolvePlan(r.Context(), ownerID, storageDomain(r))
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

// Recalculate пересчитывает учёт домена по фактическим метаданным.
func (h *QuotaHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	info, err := h.quotaService.Recalculate(r.Context(), ownerID, storageDomain(r))
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

// GetCombinedUsage отдаёт объединённый отчёт по всем доменам.
func (h *QuotaHandler) GetCombinedUsage(w http.ResponseWriter, r *http.Request) {
	ownerID, err := identity.FromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	usage, err := h.usageService.GetCombinedUsage(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, usage)
}
