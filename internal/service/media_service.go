package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"stratodrive/internal/domain"
)

// Пороговые значения малоценных элементов и размер выборки крупнейших.
const (
	lowValueMinDimension  = 64
	lowValueMinConfidence = 0.35
	largestItemsLimit     = 10
	maxHeadroomYears      = 99
)

// MediaService реализует плоскую медиаколлекцию галереи: загрузку,
// корзину, массовые операции по категориям и аналитику занятого места.
type MediaService struct {
	mediaStore MediaStore
	quotaStore QuotaStore
	blobStore  BlobStore
}

func NewMediaService(mediaStore MediaStore, quotaStore QuotaStore, blobStore BlobStore) *MediaService {
	return &MediaService{
		mediaStore: mediaStore,
		quotaStore: quotaStore,
		blobStore:  blobStore,
	}
}

// UploadMedia сохраняет медиаэлемент по той же схеме, что и файлы диска:
// блоб, метаданные, атомарная фиксация квоты с откатом при неудаче.
func (s *MediaService) UploadMedia(ctx context.Context, upload domain.MediaUpload) (*domain.MediaItem, error) {
	size := int64(len(upload.Data))

	quota, err := s.quotaStore.GetQuota(ctx, upload.OwnerID, domain.DomainGallery)
	if err != nil {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	plan := domain.PlanByName(quota.Plan)
	if size > plan.MaxUploadBytes {
		return nil, domain.ErrFileTooLarge
	}

	if quota.UsedBytes+size > quota.LimitBytes {
		return nil, domain.ErrQuotaExceeded
	}

	itemUUID := uuid.New()
	s3Key := fmt.Sprintf("gallery/%s/%s", upload.OwnerID, itemUUID)

	if err := s.blobStore.UploadBytes(s3Key, upload.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBlobStore, err)
	}

	item := &domain.MediaItem{
		UUID:       itemUUID,
		OwnerID:    upload.OwnerID,
		Filename:   upload.Filename,
		SizeBytes:  size,
		S3Key:      s3Key,
		Category:   upload.Category,
		Confidence: upload.Confidence,
		Width:      upload.Width,
		Height:     upload.Height,
		TakenAt:    upload.TakenAt,
	}

	if err := s.mediaStore.Create(ctx, item); err != nil {
		s.deleteBlob(s3Key)
		return nil, fmt.Errorf("failed to create media record: %w", err)
	}

	if err := s.quotaStore.ReserveAndCommit(ctx, upload.OwnerID, domain.DomainGallery, size, 1); err != nil {
		if rbErr := s.mediaStore.DeleteAny(ctx, itemUUID, upload.OwnerID); rbErr != nil {
			log.Printf("[MediaService] Не удалось откатить метаданные элемента %s: %v", itemUUID, rbErr)
		}
		s.deleteBlob(s3Key)
		return nil, err
	}

	log.Printf("[MediaService] Элемент %s (%d байт) загружен владельцем %s", itemUUID, size, upload.OwnerID)
	return item, nil
}

func (s *MediaService) deleteBlob(s3Key string) {
	if err := s.blobStore.DeleteObject(s3Key); err != nil {
		log.Printf("[MediaService] Не удалось удалить объект %s: %v", s3Key, err)
	}
}

// GetMedia возвращает активный элемент.
func (s *MediaService) GetMedia(ctx context.Context, itemUUID uuid.UUID, ownerID string) (*domain.MediaItem, error) {
	return s.mediaStore.GetByUUID(ctx, itemUUID, ownerID)
}

// ListByCategory возвращает активные элементы категории.
func (s *MediaService) ListByCategory(ctx context.Context, ownerID, category string) ([]domain.MediaItem, error) {
	return s.mediaStore.ListActiveByCategory(ctx, ownerID, category)
}

// ListTrashed возвращает корзину галереи, свежеудалённые первыми.
func (s *MediaService) ListTrashed(ctx context.Context, ownerID string) ([]domain.MediaItem, error) {
	return s.mediaStore.ListTrashed(ctx, ownerID)
}

// DeleteMedia перемещает элемент в корзину и освобождает слот items_count.
func (s *MediaService) DeleteMedia(ctx context.Context, itemUUID uuid.UUID, ownerID string) error {
	if err := s.mediaStore.SoftDelete(ctx, itemUUID, ownerID, time.Now().UTC()); err != nil {
		return err
	}

	if err := s.quotaStore.Release(ctx, ownerID, domain.DomainGallery, 0, 1); err != nil {
		log.Printf("[MediaService] Не удалось освободить слот после удаления элемента %s: %v", itemUUID, err)
	}

	return nil
}

// RestoreMedia возвращает элемент из корзины.
func (s *MediaService) RestoreMedia(ctx context.Context, itemUUID uuid.UUID, ownerID string) error {
	if err := s.mediaStore.Restore(ctx, itemUUID, ownerID); err != nil {
		return err
	}

	if err := s.quotaStore.ReserveAndCommit(ctx, ownerID, domain.DomainGallery, 0, 1); err != nil {
		log.Printf("[MediaService] Не удалось занять слот после восстановления элемента %s: %v", itemUUID, err)
	}

	return nil
}

// PermanentDeleteMedia окончательно удаляет элемент из корзины вместе с
// миниатюрой и возвращает байты в квоту.
func (s *MediaService) PermanentDeleteMedia(ctx context.Context, itemUUID uuid.UUID, ownerID string) error {
	item, err := s.mediaStore.GetAnyByUUID(ctx, itemUUID, ownerID)
	if err != nil {
		return err
	}
	if !item.IsDeleted() {
		return domain.ErrNotInTrash
	}

	if err := s.blobStore.DeleteObject(item.S3Key); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBlobStore, err)
	}
	if item.ThumbKey != nil {
		if err := s.blobStore.DeleteObject(*item.ThumbKey); err != nil {
			log.Printf("[MediaService] Не удалось удалить миниатюру %s: %v", *item.ThumbKey, err)
		}
	}

	if err := s.mediaStore.DeleteRow(ctx, itemUUID, ownerID); err != nil {
		return err
	}

	if err := s.quotaStore.Release(ctx, ownerID, domain.DomainGallery, item.SizeBytes, 0); err != nil {
		log.Printf("[MediaService] Не удалось освободить %d байт после удаления элемента %s: %v", item.SizeBytes, itemUUID, err)
	}

	return nil
}

// DeleteByCategory перемещает в корзину все активные элементы категории.
// Каждый элемент проходит обычный путь мягкого удаления, поэтому частичный
// сбой оставляет коллекцию в согласованном состоянии.
func (s *MediaService) DeleteByCategory(ctx context.Context, ownerID, category string) (int, error) {
	items, err := s.mediaStore.ListActiveByCategory(ctx, ownerID, category)
	if err != nil {
		return 0, fmt.Errorf("failed to list category items: %w", err)
	}

	deleted := 0
	for _, item := range items {
		if err := s.DeleteMedia(ctx, item.UUID, ownerID); err != nil {
			log.Printf("[MediaService] Не удалось удалить элемент %s категории %s: %v", item.UUID, category, err)
			continue
		}
		deleted++
	}

	log.Printf("[MediaService] Категория %s владельца %s: перемещено в корзину %d элементов", category, ownerID, deleted)
	return deleted, nil
}

// EmptyTrash окончательно удаляет всю корзину галереи. Ошибки отдельных
// элементов логируются, чистка продолжается.
func (s *MediaService) EmptyTrash(ctx context.Context, ownerID string) (*domain.CleanupResult, error) {
	items, err := s.mediaStore.ListTrashed(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trashed items: %w", err)
	}

	result := &domain.CleanupResult{}
	for _, item := range items {
		if err := s.PermanentDeleteMedia(ctx, item.UUID, ownerID); err != nil {
			log.Printf("[MediaService] Не удалось окончательно удалить элемент %s: %v", item.UUID, err)
			continue
		}
		result.MediaPurged++
		result.BytesFreed += item.SizeBytes
	}

	log.Printf("[MediaService] Корзина галереи %s: удалено %d элементов, освобождено %d байт", ownerID, result.MediaPurged, result.BytesFreed)
	return result, nil
}

// GetStorageAnalysis собирает аналитику коллекции: раскладку по категориям,
// самые тяжёлые и малоценные элементы и прогноз заполнения квоты.
func (s *MediaService) GetStorageAnalysis(ctx context.Context, ownerID string) (*domain.StorageAnalysis, error) {
	byCategory, err := s.mediaStore.SizeByCategory(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category usage: %w", err)
	}

	largest, err := s.mediaStore.ListLargest(ctx, ownerID, largestItemsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list largest items: %w", err)
	}

	lowValue, err := s.mediaStore.ListLowValue(ctx, ownerID, lowValueMinDimension, lowValueMinConfidence)
	if err != nil {
		return nil, fmt.Errorf("failed to list low value items: %w", err)
	}

	headroom, err := s.estimateHeadroomYears(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return &domain.StorageAnalysis{
		ByCategory:    byCategory,
		LargestItems:  largest,
		LowValueItems: lowValue,
		HeadroomYears: headroom,
	}, nil
}

// estimateHeadroomYears экстраполирует средний темп заполнения с момента
// первой загрузки. Результат обрезается в диапазон [0, 99] лет: пустая
// коллекция или нулевое потребление дают максимум.
func (s *MediaService) estimateHeadroomYears(ctx context.Context, ownerID string) (float64, error) {
	quota, err := s.quotaStore.GetQuota(ctx, ownerID, domain.DomainGallery)
	if err != nil {
		return 0, fmt.Errorf("failed to get quota: %w", err)
	}

	if quota.UsedBytes <= 0 {
		return maxHeadroomYears, nil
	}

	oldest, err := s.mediaStore.OldestCreatedAt(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to get oldest item: %w", err)
	}
	if oldest == nil {
		return maxHeadroomYears, nil
	}

	ageMonths := time.Since(*oldest).Hours() / 24 / 30
	if ageMonths < 1 {
		ageMonths = 1
	}

	bytesPerMonth := float64(quota.UsedBytes) / ageMonths
	remaining := float64(quota.LimitBytes - quota.UsedBytes)
	if remaining < 0 {
		remaining = 0
	}

	years := remaining / bytesPerMonth / 12
	if years > maxHeadroomYears {
		years = maxHeadroomYears
	}
	if years < 0 {
		years = 0
	}

	return years, nil
}
