package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"stratodrive/internal/domain"
	"stratodrive/internal/format"
)

// TrashService отвечает за просмотр корзины диска и фоновую чистку
// просроченных элементов обоих доменов.
type TrashService struct {
	trashStore  TrashStore
	folderStore FolderStore
	fileStore   FileStore
	mediaStore  MediaStore
	quotaStore  QuotaStore
	blobStore   BlobStore
	retention   time.Duration
}

func NewTrashService(
	trashStore TrashStore,
	folderStore FolderStore,
	fileStore FileStore,
	mediaStore MediaStore,
	quotaStore QuotaStore,
	blobStore BlobStore,
	retentionDays int,
) *TrashService {
	return &TrashService{
		trashStore:  trashStore,
		folderStore: folderStore,
		fileStore:   fileStore,
		mediaStore:  mediaStore,
		quotaStore:  quotaStore,
		blobStore:   blobStore,
		retention:   time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// GetTrashItems возвращает корзину диска с оставшимся сроком хранения
// каждого элемента.
func (s *TrashService) GetTrashItems(ctx context.Context, ownerID string) ([]domain.TrashItem, error) {
	items, err := s.trashStore.GetTrashItems(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trash items: %w", err)
	}

	now := time.Now().UTC()
	for i := range items {
		remaining := items[i].DeletedAt.Add(s.retention).Sub(now)
		if remaining <= 0 {
			items[i].ExpiresIn = "скоро будет удалено"
		} else {
			items[i].ExpiresIn = format.FormatDuration(remaining)
		}
	}

	return items, nil
}

// CleanupOldTrash окончательно удаляет элементы, пролежавшие в корзине
// дольше срока хранения, во всех доменах. Повторный запуск над тем же
// состоянием ничего не делает. Ошибка блоба не останавливает проход:
// осиротевший объект лучше, чем учтённые метаданные без байтов.
func (s *TrashService) CleanupOldTrash(ctx context.Context) (*domain.CleanupResult, error) {
	cutoff := time.Now().UTC().Add(-s.retention)
	result := &domain.CleanupResult{}

	files, err := s.fileStore.ListTrashedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired files: %w", err)
	}
	for _, file := range files {
		if err := s.blobStore.DeleteObject(file.S3Key); err != nil {
			log.Printf("[TrashService] Не удалось удалить объект %s: %v", file.S3Key, err)
		}
		if err := s.fileStore.DeleteRow(ctx, file.UUID, file.OwnerID); err != nil {
			log.Printf("[TrashService] Не удалось удалить файл %s: %v", file.UUID, err)
			continue
		}
		if err := s.quotaStore.Release(ctx, file.OwnerID, domain.DomainDrive, file.SizeBytes, 0); err != nil {
			log.Printf("[TrashService] Не удалось освободить %d байт владельца %s: %v", file.SizeBytes, file.OwnerID, err)
		}
		result.FilesPurged++
		result.BytesFreed += file.SizeBytes
	}

	foldersPurged, err := s.folderStore.DeleteTrashedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to purge expired folders: %w", err)
	}
	result.FoldersPurged = int(foldersPurged)

	items, err := s.mediaStore.ListTrashedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired media items: %w", err)
	}
	for _, item := range items {
		if err := s.blobStore.DeleteObject(item.S3Key); err != nil {
			log.Printf("[TrashService] Не удалось удалить объект %s: %v", item.S3Key, err)
		}
		if item.ThumbKey != nil {
			if err := s.blobStore.DeleteObject(*item.ThumbKey); err != nil {
				log.Printf("[TrashService] Не удалось удалить миниатюру %s: %v", *item.ThumbKey, err)
			}
		}
		if err := s.mediaStore.DeleteRow(ctx, item.UUID, item.OwnerID); err != nil {
			log.Printf("[TrashService] Не удалось удалить элемент %s: %v", item.UUID, err)
			continue
		}
		if err := s.quotaStore.Release(ctx, item.OwnerID, domain.DomainGallery, item.SizeBytes, 0); err != nil {
			log.Printf("[TrashService] Не удалось освободить %d байт владельца %s: %v", item.SizeBytes, item.OwnerID, err)
		}
		result.MediaPurged++
		result.BytesFreed += item.SizeBytes
	}

	if result.FilesPurged > 0 || result.FoldersPurged > 0 || result.MediaPurged > 0 {
		log.Printf("[TrashService] Чистка корзины: файлов %d, папок %d, медиа %d, освобождено %d байт",
			result.FilesPurged, result.FoldersPurged, result.MediaPurged, result.BytesFreed)
	}

	return result, nil
}

// StartAutoCleanup запускает периодическую чистку корзины. Останавливается
// по отмене контекста.
func (s *TrashService) StartAutoCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Printf("[TrashService] Автоочистка корзины запущена, интервал %s, срок хранения %s", interval, s.retention)

		for {
			select {
			case <-ctx.Done():
				log.Printf("[TrashService] Автоочистка корзины остановлена")
				return
			case <-ticker.C:
				if _, err := s.CleanupOldTrash(ctx); err != nil {
					log.Printf("[TrashService] Ошибка чистки корзины: %v", err)
				}
			}
		}
	}()
}
