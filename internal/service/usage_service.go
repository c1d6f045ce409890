package service

import (
	"context"
	"log"
	"math"
	"sync"

	"stratodrive/internal/domain"
)

// ExternalUsageReporter сообщает потребление домена, который учитывается
// внешним сервисом (почта).
type ExternalUsageReporter interface {
	UsedBytes(ctx context.Context, ownerID string) (int64, error)
}

// ZeroUsageReporter — заглушка до подключения почтового сервиса: внешний
// домен всегда сообщает ноль.
type ZeroUsageReporter struct{}

func (ZeroUsageReporter) UsedBytes(ctx context.Context, ownerID string) (int64, error) {
	return 0, nil
}

// UsageService собирает объединённый отчёт о потреблении по всем доменам.
// Отчёт вычисляется на лету и нигде не сохраняется.
type UsageService struct {
	quotaStore   QuotaStore
	mediaStore   MediaStore
	mailReporter ExternalUsageReporter
}

func NewUsageService(
	quotaStore QuotaStore,
	mediaStore MediaStore,
	mailReporter ExternalUsageReporter,
) *UsageService {
	return &UsageService{
		quotaStore:   quotaStore,
		mediaStore:   mediaStore,
		mailReporter: mailReporter,
	}
}

// GetCombinedUsage опрашивает домены параллельно. Недоступный домен не
// валит весь отчёт: его вклад засчитывается нулём с пометкой Degraded.
// Общий потолок определяется старшим из тарифов доменов.
func (s *UsageService) GetCombinedUsage(ctx context.Context, ownerID string) (*domain.CombinedUsage, error) {
	breakdown := make([]domain.DomainUsage, 3)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		breakdown[0] = s.fetchDomainUsage(ctx, ownerID, domain.DomainDrive)
	}()
	go func() {
		defer wg.Done()
		breakdown[1] = s.fetchDomainUsage(ctx, ownerID, domain.DomainGallery)
	}()
	go func() {
		defer wg.Done()
		breakdown[2] = s.fetchMailUsage(ctx, ownerID)
	}()

	wg.Wait()

	effectivePlan := domain.PlanByName(domain.DefaultPlan)
	var totalUsed int64
	for _, usage := range breakdown {
		totalUsed += usage.UsedBytes
		if usage.Plan != "" {
			effectivePlan = domain.HigherPriorityPlan(effectivePlan.Name, usage.Plan)
		}
	}

	totalLimit := effectivePlan.StorageBytes

	var usedPercent int
	if totalLimit > 0 {
		usedPercent = int(math.Round(float64(totalUsed) / float64(totalLimit) * 100))
	}

	return &domain.CombinedUsage{
		TotalUsedBytes:   totalUsed,
		TotalLimitBytes:  totalLimit,
		UsedPercent:      usedPercent,
		EffectivePlan:    effectivePlan.Name,
		ReclaimableBytes: s.reclaimableBytes(ctx, ownerID),
		Breakdown:        breakdown,
	}, nil
}

func (s *UsageService) fetchDomainUsage(ctx context.Context, ownerID, storageDomain string) domain.DomainUsage {
	quota, err := s.quotaStore.GetQuota(ctx, ownerID, storageDomain)
	if err != nil {
		log.Printf("[UsageService] Домен %s владельца %s недоступен: %v", storageDomain, ownerID, err)
		return domain.DomainUsage{Domain: storageDomain, Degraded: true}
	}

	return domain.DomainUsage{
		Domain:    storageDomain,
		Plan:      quota.Plan,
		UsedBytes: quota.UsedBytes,
	}
}

func (s *UsageService) fetchMailUsage(ctx context.Context, ownerID string) domain.DomainUsage {
	used, err := s.mailReporter.UsedBytes(ctx, ownerID)
	if err != nil {
		log.Printf("[UsageService] Почтовый сервис недоступен для %s: %v", ownerID, err)
		return domain.DomainUsage{Domain: domain.DomainMail, Degraded: true}
	}

	return domain.DomainUsage{Domain: domain.DomainMail, UsedBytes: used}
}

// reclaimableBytes оценивает, сколько места вернёт чистка малоценного
// содержимого галереи: суммируются крупнейшие и малоценные элементы.
// Элемент, попавший в оба списка, считается дважды. Это витринная цифра,
// не учёт.
func (s *UsageService) reclaimableBytes(ctx context.Context, ownerID string) int64 {
	var total int64

	largest, err := s.mediaStore.ListLargest(ctx, ownerID, largestItemsLimit)
	if err != nil {
		log.Printf("[UsageService] Не удалось получить крупнейшие элементы %s: %v", ownerID, err)
	} else {
		for _, item := range largest {
			total += item.SizeBytes
		}
	}

	lowValue, err := s.mediaStore.ListLowValue(ctx, ownerID, lowValueMinDimension, lowValueMinConfidence)
	if err != nil {
		log.Printf("[UsageService] Не удалось получить малоценные элементы %s: %v", ownerID, err)
	} else {
		for _, item := range lowValue {
			total += item.SizeBytes
		}
	}

	return total
}
