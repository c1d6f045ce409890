package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"stratodrive/internal/domain"
)

// FolderService реализует иерархию папок диска: создание, навигацию,
// перемещение, корзину и окончательное удаление.
type FolderService struct {
	folderStore FolderStore
	fileStore   FileStore
	quotaStore  QuotaStore
	blobStore   BlobStore
}

func NewFolderService(folderStore FolderStore, fileStore FileStore, quotaStore QuotaStore, blobStore BlobStore) *FolderService {
	return &FolderService{
		folderStore: folderStore,
		fileStore:   fileStore,
		quotaStore:  quotaStore,
		blobStore:   blobStore,
	}
}

// CreateFolder создаёт папку на уровне parentID (nil = корень).
// Имя должно быть уникально среди активных папок того же уровня.
func (s *FolderService) CreateFolder(ctx context.Context, ownerID, name string, parentID *int64) (*domain.Folder, error) {
	if parentID != nil {
		if _, err := s.folderStore.GetByID(ctx, *parentID, ownerID); err != nil {
			if err == domain.ErrNotFound {
				return nil, domain.ErrParentNotFound
			}
			return nil, fmt.Errorf("failed to check parent folder: %w", err)
		}
	}

	exists, err := s.folderStore.CheckFolderExistsInParent(ctx, parentID, ownerID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check folder name: %w", err)
	}
	if exists {
		return nil, domain.ErrAlreadyExists
	}

	folder := &domain.Folder{
		Name:     name,
		OwnerID:  ownerID,
		ParentID: parentID,
	}

	if err := s.folderStore.Create(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	if err := s.quotaStore.AdjustFolderCount(ctx, ownerID, 1); err != nil {
		log.Printf("[FolderService] Не удалось увеличить счётчик папок для %s: %v", ownerID, err)
	}

	return folder, nil
}

// GetFolderContents возвращает папку, хлебные крошки и активное содержимое
// уровня. folderID = nil означает синтетический корень.
func (s *FolderService) GetFolderContents(ctx context.Context, folderID *int64, ownerID string) (*domain.FolderContent, error) {
	content := &domain.FolderContent{
		Breadcrumb: []domain.BreadcrumbEntry{{ID: nil, Name: domain.RootFolderName}},
	}

	if folderID == nil {
		content.Folder = domain.Folder{Name: domain.RootFolderName, OwnerID: ownerID}
	} else {
		folder, err := s.folderStore.GetByID(ctx, *folderID, ownerID)
		if err != nil {
			return nil, err
		}
		content.Folder = *folder

		// Цепочка предков приходит от папки к корню, путь строится наоборот.
		ancestors, err := s.folderStore.GetBreadcrumb(ctx, *folderID, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get breadcrumb: %w", err)
		}
		for i := len(ancestors) - 1; i >= 0; i-- {
			id := ancestors[i].ID
			content.Breadcrumb = append(content.Breadcrumb, domain.BreadcrumbEntry{ID: &id, Name: ancestors[i].Name})
		}
	}

	folders, err := s.folderStore.ListSubfolders(ctx, folderID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subfolders: %w", err)
	}
	content.Folders = folders

	files, err := s.fileStore.ListByFolder(ctx, folderID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	content.Files = files

	return content, nil
}

// RenameFolder переименовывает активную папку.
func (s *FolderService) RenameFolder(ctx context.Context, folderID int64, ownerID, newName string) error {
	folder, err := s.folderStore.GetByID(ctx, folderID, ownerID)
	if err != nil {
		return err
	}

	exists, err := s.folderStore.CheckFolderExistsInParent(ctx, folder.ParentID, ownerID, newName)
	if err != nil {
		return fmt.Errorf("failed to check folder name: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	return s.folderStore.Rename(ctx, folderID, ownerID, newName)
}

// MoveFolder переносит папку в другой родитель (nil = корень). Перенос
// папки в саму себя запрещён; проверка самоссылки намеренно неглубокая,
// перенос в собственного потомка отлавливается на уровне БД внешним ключом.
func (s *FolderService) MoveFolder(ctx context.Context, folderID int64, ownerID string, newParentID *int64) error {
	if _, err := s.folderStore.GetByID(ctx, folderID, ownerID); err != nil {
		return err
	}

	if newParentID != nil {
		if *newParentID == folderID {
			return domain.ErrSelfReference
		}
		if _, err := s.folderStore.GetByID(ctx, *newParentID, ownerID); err != nil {
			if err == domain.ErrNotFound {
				return domain.ErrTargetNotFound
			}
			return fmt.Errorf("failed to check target folder: %w", err)
		}
	}

	return s.folderStore.SetParent(ctx, folderID, ownerID, newParentID)
}

// DeleteFolder перемещает папку со всем поддеревом в корзину одной отметкой
// времени. Единственное изменение в квоте — счётчик папок верхнего уровня:
// слоты и байты затронутых файлов остаются занятыми, как при любом
// содержимом корзины.
func (s *FolderService) DeleteFolder(ctx context.Context, folderID int64, ownerID string) error {
	deletedAt := time.Now().UTC()
	if err := s.folderStore.SoftDeleteTree(ctx, folderID, ownerID, deletedAt); err != nil {
		return err
	}

	s.decrementTopLevelFolderCount(ctx, ownerID)

	log.Printf("[FolderService] Папка %d перемещена в корзину вместе с поддеревом", folderID)
	return nil
}

// decrementTopLevelFolderCount уменьшает счётчик папок на единицу за весь
// каскад. Вложенные папки счётчик не трогают, поэтому после каскадных
// удалений он может отставать от факта; выравнивается пересчётом квоты.
func (s *FolderService) decrementTopLevelFolderCount(ctx context.Context, ownerID string) {
	if err := s.quotaStore.AdjustFolderCount(ctx, ownerID, -1); err != nil {
		log.Printf("[FolderService] Не удалось уменьшить счётчик папок для %s: %v", ownerID, err)
	}
}

// RestoreFolder возвращает из корзины только саму папку, без содержимого.
// Файлы и подпапки остаются в корзине и восстанавливаются поштучно.
func (s *FolderService) RestoreFolder(ctx context.Context, folderID int64, ownerID string) error {
	if err := s.folderStore.Restore(ctx, folderID, ownerID); err != nil {
		return err
	}

	if err := s.quotaStore.AdjustFolderCount(ctx, ownerID, 1); err != nil {
		log.Printf("[FolderService] Не удалось увеличить счётчик папок для %s: %v", ownerID, err)
	}

	return nil
}

// PermanentDeleteFolder окончательно удаляет папку из корзины вместе с её
// непосредственными удалёнными файлами: блобы стираются, байты возвращаются
// в квоту. Ошибка блоба логируется, чистка метаданных продолжается.
func (s *FolderService) PermanentDeleteFolder(ctx context.Context, folderID int64, ownerID string) error {
	folder, err := s.folderStore.GetAnyByID(ctx, folderID, ownerID)
	if err != nil {
		return err
	}
	if !folder.IsDeleted() {
		return domain.ErrNotInTrash
	}

	files, err := s.fileStore.ListTrashedByFolder(ctx, folderID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to list trashed files: %w", err)
	}

	var freedBytes, freedItems int64
	for _, file := range files {
		if err := s.blobStore.DeleteObject(file.S3Key); err != nil {
			log.Printf("[FolderService] Не удалось удалить объект %s: %v", file.S3Key, err)
		}
		if err := s.fileStore.DeleteRow(ctx, file.UUID, ownerID); err != nil {
			log.Printf("[FolderService] Не удалось удалить файл %s: %v", file.UUID, err)
			continue
		}
		freedBytes += file.SizeBytes
		freedItems++
	}

	if err := s.folderStore.DeleteRow(ctx, folderID, ownerID); err != nil {
		return err
	}

	if freedBytes > 0 {
		if err := s.quotaStore.Release(ctx, ownerID, domain.DomainDrive, freedBytes, 0); err != nil {
			log.Printf("[FolderService] Не удалось освободить %d байт после удаления папки %d: %v", freedBytes, folderID, err)
		}
	}

	log.Printf("[FolderService] Папка %d удалена окончательно, освобождено %d байт", folderID, freedBytes)
	return nil
}
