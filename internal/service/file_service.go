package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"stratodrive/internal/domain"
	"stratodrive/internal/service/s3"
)

// FileService реализует жизненный цикл файла диска: загрузку с учётом
// квоты, скачивание, перемещение, корзину и окончательное удаление.
type FileService struct {
	fileStore   FileStore
	folderStore FolderStore
	quotaStore  QuotaStore
	blobStore   BlobStore
}

func NewFileService(fileStore FileStore, folderStore FolderStore, quotaStore QuotaStore, blobStore BlobStore) *FileService {
	return &FileService{
		fileStore:   fileStore,
		folderStore: folderStore,
		quotaStore:  quotaStore,
		blobStore:   blobStore,
	}
}

// UploadFile сохраняет файл: сначала байты в блоб-хранилище, затем
// метаданные, затем атомарная фиксация квоты. Неудачная фиксация
// откатывает метаданные и блоб, чтобы не оставить учтённый мусор.
func (s *FileService) UploadFile(ctx context.Context, upload domain.FileUpload) (*domain.File, error) {
	if upload.FolderID != nil {
		if _, err := s.folderStore.GetByID(ctx, *upload.FolderID, upload.OwnerID); err != nil {
			if err == domain.ErrNotFound {
				return nil, domain.ErrParentNotFound
			}
			return nil, fmt.Errorf("failed to check folder: %w", err)
		}
	}

	size := int64(len(upload.Data))

	quota, err := s.quotaStore.GetQuota(ctx, upload.OwnerID, domain.DomainDrive)
	if err != nil {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	plan := domain.PlanByName(quota.Plan)
	if size > plan.MaxUploadBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Предварительная проверка отсеивает заведомо безнадёжные загрузки до
	// записи байтов. Решающее слово остаётся за условной фиксацией ниже.
	if quota.UsedBytes+size > quota.LimitBytes {
		return nil, domain.ErrQuotaExceeded
	}

	fileUUID := uuid.New()
	s3Key := fmt.Sprintf("drive_files/%s/%s", upload.OwnerID, fileUUID)

	if err := s.blobStore.UploadBytes(s3Key, upload.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBlobStore, err)
	}

	file := &domain.File{
		UUID:      fileUUID,
		Name:      upload.Name,
		MIMEType:  upload.MIMEType,
		SizeBytes: size,
		FolderID:  upload.FolderID,
		OwnerID:   upload.OwnerID,
		S3Key:     s3Key,
	}

	if err := s.fileStore.Create(ctx, file); err != nil {
		s.rollbackBlob(s3Key)
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	if err := s.quotaStore.ReserveAndCommit(ctx, upload.OwnerID, domain.DomainDrive, size, 1); err != nil {
		if rbErr := s.fileStore.DeleteAny(ctx, fileUUID, upload.OwnerID); rbErr != nil {
			log.Printf("[FileService] Не удалось откатить метаданные файла %s: %v", fileUUID, rbErr)
		}
		s.rollbackBlob(s3Key)
		return nil, err
	}

	log.Printf("[FileService] Файл %s (%d байт) загружен владельцем %s", fileUUID, size, upload.OwnerID)
	return file, nil
}

func (s *FileService) rollbackBlob(s3Key string) {
	if err := s.blobStore.DeleteObject(s3Key); err != nil {
		log.Printf("[FileService] Не удалось откатить объект %s: %v", s3Key, err)
	}
}

// DownloadFile возвращает метаданные и содержимое активного файла.
func (s *FileService) DownloadFile(ctx context.Context, fileUUID uuid.UUID, ownerID string) (*domain.FileDownload, error) {
	file, err := s.fileStore.GetByUUID(ctx, fileUUID, ownerID)
	if err != nil {
		return nil, err
	}

	object, err := s.blobStore.GetObject(ctx, file.S3Key)
	if err != nil {
		// Пропавший объект при живых метаданных отдаём как отсутствие
		// файла, а не как сбой хранилища.
		if errors.Is(err, s3.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: blob %s", domain.ErrNotFound, file.S3Key)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrBlobStore, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	return &domain.FileDownload{File: file, Data: data}, nil
}

// RenameFile переименовывает активный файл.
func (s *FileService) RenameFile(ctx context.Context, fileUUID uuid.UUID, ownerID, newName string) error {
	return s.fileStore.Rename(ctx, fileUUID, ownerID, newName)
}

// MoveFile перемещает файл в другую папку (nil = корень).
func (s *FileService) MoveFile(ctx context.Context, fileUUID uuid.UUID, ownerID string, newFolderID *int64) error {
	if newFolderID != nil {
		if _, err := s.folderStore.GetByID(ctx, *newFolderID, ownerID); err != nil {
			if err == domain.ErrNotFound {
				return domain.ErrTargetNotFound
			}
			return fmt.Errorf("failed to check target folder: %w", err)
		}
	}

	return s.fileStore.SetFolder(ctx, fileUUID, ownerID, newFolderID)
}

// DeleteFile перемещает файл в корзину. Слот items_count освобождается
// сразу, байты остаются занятыми до окончательного удаления.
func (s *FileService) DeleteFile(ctx context.Context, fileUUID uuid.UUID, ownerID string) error {
	if err := s.fileStore.SoftDelete(ctx, fileUUID, ownerID, time.Now().UTC()); err != nil {
		return err
	}

	if err := s.quotaStore.Release(ctx, ownerID, domain.DomainDrive, 0, 1); err != nil {
		log.Printf("[FileService] Не удалось освободить слот после удаления файла %s: %v", fileUUID, err)
	}

	return nil
}

// RestoreFile возвращает файл из корзины и занимает слот items_count
// обратно. Байты и так числились занятыми, восстановление квоту не меняет.
func (s *FileService) RestoreFile(ctx context.Context, fileUUID uuid.UUID, ownerID string) error {
	if err := s.fileStore.Restore(ctx, fileUUID, ownerID); err != nil {
		return err
	}

	if err := s.quotaStore.ReserveAndCommit(ctx, ownerID, domain.DomainDrive, 0, 1); err != nil {
		log.Printf("[FileService] Не удалось занять слот после восстановления файла %s: %v", fileUUID, err)
	}

	return nil
}

// PermanentDeleteFile окончательно удаляет файл из корзины: блоб стирается,
// строка удаляется, байты возвращаются в квоту.
func (s *FileService) PermanentDeleteFile(ctx context.Context, fileUUID uuid.UUID, ownerID string) error {
	file, err := s.fileStore.GetAnyByUUID(ctx, fileUUID, ownerID)
	if err != nil {
		return err
	}
	if !file.IsDeleted() {
		return domain.ErrNotInTrash
	}

	if err := s.blobStore.DeleteObject(file.S3Key); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBlobStore, err)
	}

	if err := s.fileStore.DeleteRow(ctx, fileUUID, ownerID); err != nil {
		return err
	}

	if err := s.quotaStore.Release(ctx, ownerID, domain.DomainDrive, file.SizeBytes, 0); err != nil {
		log.Printf("[FileService] Не удалось освободить %d байт после удаления файла %s: %v", file.SizeBytes, fileUUID, err)
	}

	log.Printf("[FileService] Файл %s удалён окончательно, освобождено %d байт", fileUUID, file.SizeBytes)
	return nil
}
