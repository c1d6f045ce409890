package service

import (
	"context"
	"fmt"
	"log"

	"stratodrive/internal/domain"
	"stratodrive/internal/format"
)

// QuotaService управляет лимитами хранилища по доменам.
type QuotaService struct {
	quotaStore QuotaStore
}

func NewQuotaService(quotaStore QuotaStore) *QuotaService {
	return &QuotaService{quotaStore: quotaStore}
}

// GetQuotaInfo возвращает состояние квоты с готовыми для отображения полями.
func (s *QuotaService) GetQuotaInfo(ctx context.Context, ownerID, storageDomain string) (*domain.QuotaInfo, error) {
	quota, err := s.quotaStore.GetQuota(ctx, ownerID, storageDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	var usedPercent float64
	if quota.LimitBytes > 0 {
		usedPercent = float64(quota.UsedBytes) / float64(quota.LimitBytes) * 100
	}

	return &domain.QuotaInfo{
		Plan:           quota.Plan,
		UsedBytes:      quota.UsedBytes,
		LimitBytes:     quota.LimitBytes,
		UsedPercent:    usedPercent,
		ItemsCount:     quota.ItemsCount,
		FoldersCount:   quota.FoldersCount,
		UsedFormatted:  format.FormatBytes(quota.UsedBytes),
		LimitFormatted: format.FormatBytes(quota.LimitBytes),
	}, nil
}

// SetPlan переводит владельца на тариф. Превышение нового лимита допустимо:
// загрузка заблокируется, существующие данные остаются доступны.
func (s *QuotaService) SetPlan(ctx context.Context, ownerID, storageDomain, planName string) error {
	plan := domain.PlanByName(planName)

	if err := s.quotaStore.SetPlan(ctx, ownerID, storageDomain, plan.Name); err != nil {
		return fmt.Errorf("failed to set plan: %w", err)
	}

	log.Printf("[QuotaService] Владелец %s переведён на тариф %s в домене %s", ownerID, plan.Name, storageDomain)
	return nil
}

// ResolvePlan возвращает параметры текущего тарифа владельца в домене.
func (s *QuotaService) ResolvePlan(ctx context.Context, ownerID, storageDomain string) (domain.PlanLimits, error) {
	quota, err := s.quotaStore.GetQuota(ctx, ownerID, storageDomain)
	if err != nil {
		return domain.PlanLimits{}, fmt.Errorf("failed to get quota: %w", err)
	}

	return domain.PlanByName(quota.Plan), nil
}

// Recalculate пересчитывает учёт домена по фактическим строкам метаданных.
// Запускается вручную при подозрении на дрейф счётчиков.
func (s *QuotaService) Recalculate(ctx context.Context, ownerID, storageDomain string) (*domain.QuotaInfo, error) {
	if err := s.quotaStore.CalculateAndUpdateUsedSpace(ctx, ownerID, storageDomain); err != nil {
		return nil, fmt.Errorf("failed to recalculate usage: %w", err)
	}

	return s.GetQuotaInfo(ctx, ownerID, storageDomain)
}
