package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stratodrive/internal/domain"
	"stratodrive/internal/service/s3"
)

// BlobStore — байтовое хранилище блобов. Боевая реализация — S3-клиент.
type BlobStore = s3.Storage

// Сервисы зависят от узких интерфейсов хранилищ, а не от конкретных
// репозиториев: тесты собирают изолированные экземпляры с фейками,
// боевой код — с sqlx-репозиториями. Глобального состояния нет.

type QuotaStore interface {
	GetQuota(ctx context.Context, ownerID, storageDomain string) (*domain.StorageQuota, error)
	SetPlan(ctx context.Context, ownerID, storageDomain, planName string) error
	ReserveAndCommit(ctx context.Context, ownerID, storageDomain string, deltaBytes, deltaItems int64) error
	Release(ctx context.Context, ownerID, storageDomain string, deltaBytes, deltaItems int64) error
	AdjustFolderCount(ctx context.Context, ownerID string, delta int64) error
	CalculateAndUpdateUsedSpace(ctx context.Context, ownerID, storageDomain string) error
}

type FolderStore interface {
	Create(ctx context.Context, folder *domain.Folder) error
	GetByID(ctx context.Context, id int64, ownerID string) (*domain.Folder, error)
	GetAnyByID(ctx context.Context, id int64, ownerID string) (*domain.Folder, error)
	GetBreadcrumb(ctx context.Context, id int64, ownerID string) ([]domain.Folder, error)
	ListSubfolders(ctx context.Context, parentID *int64, ownerID string) ([]domain.Folder, error)
	Rename(ctx context.Context, id int64, ownerID, newName string) error
	SetParent(ctx context.Context, id int64, ownerID string, newParentID *int64) error
	SoftDeleteTree(ctx context.Context, id int64, ownerID string, deletedAt time.Time) error
	Restore(ctx context.Context, id int64, ownerID string) error
	DeleteRow(ctx context.Context, id int64, ownerID string) error
	CheckFolderExistsInParent(ctx context.Context, parentID *int64, ownerID, name string) (bool, error)
	DeleteTrashedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type FileStore interface {
	Create(ctx context.Context, file *domain.File) error
	GetByUUID(ctx context.Context, fileUUID uuid.UUID, ownerID string) (*domain.File, error)
	GetAnyByUUID(ctx context.Context, fileUUID uuid.UUID, ownerID string) (*domain.File, error)
	ListByFolder(ctx context.Context, folderID *int64, ownerID string) ([]domain.File, error)
	Rename(ctx context.Context, fileUUID uuid.UUID, ownerID, newName string) error
	SetFolder(ctx context.Context, fileUUID uuid.UUID, ownerID string, newFolderID *int64) error
	SoftDelete(ctx context.Context, fileUUID uuid.UUID, ownerID string, deletedAt time.Time) error
	Restore(ctx context.Context, fileUUID uuid.UUID, ownerID string) error
	DeleteRow(ctx context.Context, fileUUID uuid.UUID, ownerID string) error
	DeleteAny(ctx context.Context, fileUUID uuid.UUID, ownerID string) error
	ListTrashedByFolder(ctx context.Context, folderID int64, ownerID string) ([]domain.File, error)
	ListTrashedBefore(ctx context.Context, cutoff time.Time) ([]domain.File, error)
}

type MediaStore interface {
	Create(ctx context.Context, item *domain.MediaItem) error
	GetByUUID(ctx context.Context, itemUUID uuid.UUID, ownerID string) (*domain.MediaItem, error)
	GetAnyByUUID(ctx context.Context, itemUUID uuid.UUID, ownerID string) (*domain.MediaItem, error)
	SoftDelete(ctx context.Context, itemUUID uuid.UUID, ownerID string, deletedAt time.Time) error
	Restore(ctx context.Context, itemUUID uuid.UUID, ownerID string) error
	DeleteRow(ctx context.Context, itemUUID uuid.UUID, ownerID string) error
	DeleteAny(ctx context.Context, itemUUID uuid.UUID, ownerID string) error
	ListActiveByCategory(ctx context.Context, ownerID, category string) ([]domain.MediaItem, error)
	ListTrashed(ctx context.Context, ownerID string) ([]domain.MediaItem, error)
	ListTrashedBefore(ctx context.Context, cutoff time.Time) ([]domain.MediaItem, error)
	SizeByCategory(ctx context.Context, ownerID string) ([]domain.CategoryUsage, error)
	ListLargest(ctx context.Context, ownerID string, limit int) ([]domain.MediaItem, error)
	ListLowValue(ctx context.Context, ownerID string, minDimension int, minConfidence float64) ([]domain.MediaItem, error)
	OldestCreatedAt(ctx context.Context, ownerID string) (*time.Time, error)
}

type TrashStore interface {
	GetTrashItems(ctx context.Context, ownerID string) ([]domain.TrashItem, error)
}
