package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stratodrive/internal/domain"
)

type FileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *domain.File) error {
	query := `
        INSERT INTO files (uuid, name, mime_type, size_bytes, folder_id, owner_id, s3_key)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		file.UUID,
		file.Name,
		file.MIMEType,
		file.SizeBytes,
		file.FolderID,
		file.OwnerID,
		file.S3Key,
	).Scan(&file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	return nil
}

// GetByUUID возвращает активный файл владельца. Чужой или отсутствующий
// файл — всегда ErrNotFound.
func (r *FileRepository) GetByUUID(ctx context.Context, fileUUID uuid.UUID, ownerID string) (*domain.File, error) {
	var file domain.File
	query := `
        SELECT * FROM files
        WHERE uuid = $1 AND owner_id = $2 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &file, query, fileUUID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

// GetAnyByUUID возвращает файл владельца независимо от состояния корзины.
func (r *FileRepository) GetAnyByUUID(ctx context.Context, fileUUID uuid.UUID, ownerID string) (*domain.File, error) {
	var file domain.File
	query := `SELECT * FROM files WHERE uuid = $1 AND owner_id = $2`

	err := r.db.GetContext(ctx, &file, query, fileUUID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

// ListByFolder возвращает активные файлы уровня, отсортированные по имени.
// folderID = nil означает корневой уровень.
func (r *FileRepository) ListByFolder(ctx context.Context, folderID *int64, ownerID string) ([]domain.File, error) {
	var files []domain.File
	var err error

	if folderID == nil {
		err = r.db.SelectContext(ctx, &files, `
            SELECT * FROM files
            WHERE folder_id IS NULL AND owner_id = $1 AND deleted_at IS NULL
            ORDER BY name`, ownerID)
	} else {
		err = r.db.SelectContext(ctx, &files, `
            SELECT * FROM files
            WHERE folder_id = $1 AND owner_id = $2 AND deleted_at IS NULL
            ORDER BY name`, *folderID, ownerID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get files: %w", err)
	}

	return files, nil
}

// Rename обновляет только имя. Удалённый файл не переименовывается.
func (r *FileRepository) Rename(ctx context.Context, fileUUID uuid.UUID, ownerID, newName string) error {
	query := `
        UPDATE files
        SET name = $1, updated_at = CURRENT_TIMESTAMP
        WHERE uuid = $2 AND owner_id = $3 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, newName, fileUUID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// SetFolder перемещает файл в другую папку. Валидация цели — на сервисе.
func (r *FileRepository) SetFolder(ctx context.Context, fileUUID uuid.UUID, ownerID string, newFolderID *int64) error {
	query := `
        UPDATE files
        SET folder_id = $1, updated_at = CURRENT_TIMESTAMP
        WHERE uuid = $2 AND owner_id = $3 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, newFolderID, fileUUID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to move file: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// SoftDelete помечает файл удалённым. Предикат по deleted_at гарантирует,
// что переход применится ровно один раз.
func (r *FileRepository) SoftDelete(ctx context.Context, fileUUID uuid.UUID, ownerID string, deletedAt time.Time) error {
	query := `
        UPDATE files
        SET deleted_at = $1, updated_at = CURRENT_TIMESTAMP
        WHERE uuid = $2 AND owner_id = $3 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, deletedAt, fileUUID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to move file to trash: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Restore возвращает файл из корзины.
func (r *FileRepository) Restore(ctx context.Context, fileUUID uuid.UUID, ownerID string) error {
	query := `
        UPDATE files
        SET deleted_at = NULL, updated_at = CURRENT_TIMESTAMP
        WHERE uuid = $1 AND owner_id = $2 AND deleted_at IS NOT NULL`

	result, err := r.db.ExecContext(ctx, query, fileUUID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to restore file: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return domain.ErrNotInTrash
	}

	return nil
}

// DeleteRow окончательно удаляет строку файла из корзины. Гонка с
// восстановлением безопасна: восстановленный файл не подпадает под предикат.
func (r *FileRepository) DeleteRow(ctx context.Context, fileUUID uuid.UUID, ownerID string) error {
	query := `DELETE FROM files WHERE uuid = $1 AND owner_id = $2 AND deleted_at IS NOT NULL`

	result, err := r.db.ExecContext(ctx, query, fileUUID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete file permanently: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return domain.ErrNotInTrash
	}

	return nil
}

// DeleteAny удаляет строку независимо от состояния корзины. Используется
// для отката метаданных при неудачной фиксации квоты.
func (r *FileRepository) DeleteAny(ctx context.Context, fileUUID uuid.UUID, ownerID string) error {
	query := `DELETE FROM files WHERE uuid = $1 AND owner_id = $2`

	if _, err := r.db.ExecContext(ctx, query, fileUUID, ownerID); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// ListTrashedByFolder возвращает удалённые файлы, лежавшие непосредственно
// в папке (без рекурсии в подпапки).
func (r *FileRepository) ListTrashedByFolder(ctx context.Context, folderID int64, ownerID string) ([]domain.File, error) {
	var files []domain.File
	query := `
        SELECT * FROM files
        WHERE folder_id = $1 AND owner_id = $2 AND deleted_at IS NOT NULL`

	err := r.db.SelectContext(ctx, &files, query, folderID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trashed files: %w", err)
	}

	return files, nil
}

// ListTrashedBefore возвращает файлы, удалённые раньше отметки времени.
func (r *FileRepository) ListTrashedBefore(ctx context.Context, cutoff time.Time) ([]domain.File, error) {
	var files []domain.File
	query := `
        SELECT * FROM files
        WHERE deleted_at IS NOT NULL AND deleted_at < $1`

	err := r.db.SelectContext(ctx, &files, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list trashed files: %w", err)
	}

	return files, nil
}
