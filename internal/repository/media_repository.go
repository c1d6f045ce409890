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

type MediaRepository struct {
	db *sqlx.DB
}

func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) Create(ctx context.Context, item *domain.MediaItem) error {
	query := `
        INSERT INTO media_items (uuid, owner_id, filename, size_bytes, s3_key, thumb_key,
                                 category, confidence, width, height, taken_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		item.UUID,
		item.OwnerID,
		item.Filename,
		item.SizeBytes,
		item.S3Key,
		item.ThumbKey,
		item.Category,
		item.Confidence,
		item.Width,
		item.Height,
		item.TakenAt,
	).Scan(&item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create media item: %w", err)
	}

	return nil
}

func (r *MediaRepository) GetByUUID(ctx context.Context, itemUUID uuid.UUID, ownerID string) (*domain.MediaItem, error) {
	var item domain.MediaItem
	query := `
        SELECT * FROM media_items
        WHERE uuid = $1 AND owner_id = $2 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &item, query, itemUUID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get media item: %w", err)
	}

	return &item, nil
}

func (r *MediaRepository) GetAnyByUUID(ctx context.Context, itemUUID uuid.UUID, ownerID string) (*domain.MediaItem, error) {
	var item domain.MediaItem
	query := `SELECT * FROM media_items WHERE uuid = $1 AND owner_id = $2`

	err := r.db.GetContext(ctx, &item, query, itemUUID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get media item: %w", err)
	}

	return &item, nil
}

func (r *MediaRepository) SoftDelete(ctx context.Context, itemUUID uuid.UUID, ownerID string, deletedAt time.Time) error {
	query := `
        UPDATE media_items
        SET deleted_at = $1, updated_at = CURRENT_TIMESTAMP
        WHERE uuid = $2 AND owner_id = $3 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, deletedAt, itemUUID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to move media item to trash: %w", err)
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

func (r *MediaRepository) Restore(ctx context.Context, itemUUID uuid.UUID, ownerID string) error {
	query := `
        UPDATE media_items
        SET deleted_at = NULL, updated_at = CURRENT_TIMESTAMP
        WHERE uuid = $1 AND owner_id = $2 AND deleted_at IS NOT NULL`

	result, err := r.db.ExecContext(ctx, query, itemUUID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to restore media item: %w", err)
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

// DeleteRow окончательно удаляет строку из корзины; гонка с восстановлением
// безопасна за счёт предиката deleted_at IS NOT NULL.
func (r *MediaRepository) DeleteRow(ctx context.Context, itemUUID uuid.UUID, ownerID string) error {
	query := `DELETE FROM media_items WHERE uuid = $1 AND owner_id = $2 AND deleted_at IS NOT NULL`

	result, err := r.db.ExecContext(ctx, query, itemUUID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete media item permanently: %w", err)
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
func (r *MediaRepository) DeleteAny(ctx context.Context, itemUUID uuid.UUID, ownerID string) error {
	query := `DELETE FROM media_items WHERE uuid = $1 AND owner_id = $2`

	if _, err := r.db.ExecContext(ctx, query, itemUUID, ownerID); err != nil {
		return fmt.Errorf("failed to delete media item: %w", err)
	}

	return nil
}

// ListActiveByCategory возвращает активные элементы категории.
func (r *MediaRepository) ListActiveByCategory(ctx context.Context, ownerID, category string) ([]domain.MediaItem, error) {
	var items []domain.MediaItem
	query := `
        SELECT * FROM media_items
        WHERE owner_id = $1 AND category = $2 AND deleted_at IS NULL
        ORDER BY created_at`

	err := r.db.SelectContext(ctx, &items, query, ownerID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list media items by category: %w", err)
	}

	return items, nil
}

// ListTrashed возвращает все элементы корзины владельца, свежеудалённые первыми.
func (r *MediaRepository) ListTrashed(ctx context.Context, ownerID string) ([]domain.MediaItem, error) {
	var items []domain.MediaItem
	query := `
        SELECT * FROM media_items
        WHERE owner_id = $1 AND deleted_at IS NOT NULL
        ORDER BY deleted_at DESC`

	err := r.db.SelectContext(ctx, &items, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trashed media items: %w", err)
	}

	return items, nil
}

// ListTrashedBefore возвращает элементы, удалённые раньше отметки времени.
func (r *MediaRepository) ListTrashedBefore(ctx context.Context, cutoff time.Time) ([]domain.MediaItem, error) {
	var items []domain.MediaItem
	query := `
        SELECT * FROM media_items
        WHERE deleted_at IS NOT NULL AND deleted_at < $1`

	err := r.db.SelectContext(ctx, &items, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list trashed media items: %w", err)
	}

	return items, nil
}

// SizeByCategory считает объём активных элементов по категориям.
func (r *MediaRepository) SizeByCategory(ctx context.Context, ownerID string) ([]domain.CategoryUsage, error) {
	var usage []domain.CategoryUsage
	query := `
        SELECT category, COALESCE(SUM(size_bytes), 0) AS total_bytes, COUNT(*) AS items_count
        FROM media_items
        WHERE owner_id = $1 AND deleted_at IS NULL
        GROUP BY category
        ORDER BY total_bytes DESC`

	err := r.db.SelectContext(ctx, &usage, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category usage: %w", err)
	}

	return usage, nil
}

// ListLargest возвращает N самых тяжёлых активных элементов.
func (r *MediaRepository) ListLargest(ctx context.Context, ownerID string, limit int) ([]domain.MediaItem, error) {
	var items []domain.MediaItem
	query := `
        SELECT * FROM media_items
        WHERE owner_id = $1 AND deleted_at IS NULL
        ORDER BY size_bytes DESC
        LIMIT $2`

	err := r.db.SelectContext(ctx, &items, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list largest media items: %w", err)
	}

	return items, nil
}

// ListLowValue возвращает визуально малоинформативные элементы: крошечные
// по пикселям или с низкой уверенностью классификатора.
func (r *MediaRepository) ListLowValue(ctx context.Context, ownerID string, minDimension int, minConfidence float64) ([]domain.MediaItem, error) {
	var items []domain.MediaItem
	query := `
        SELECT * FROM media_items
        WHERE owner_id = $1 AND deleted_at IS NULL
        AND (width < $2 OR height < $2 OR (confidence IS NOT NULL AND confidence < $3))
        ORDER BY size_bytes DESC`

	err := r.db.SelectContext(ctx, &items, query, ownerID, minDimension, minConfidence)
	if err != nil {
		return nil, fmt.Errorf("failed to list low value media items: %w", err)
	}

	return items, nil
}

// OldestCreatedAt возвращает время самой ранней загрузки владельца —
// основу для оценки возраста аккаунта в прогнозе заполнения.
func (r *MediaRepository) OldestCreatedAt(ctx context.Context, ownerID string) (*time.Time, error) {
	var oldest sql.NullTime
	query := `SELECT MIN(created_at) FROM media_items WHERE owner_id = $1`

	err := r.db.GetContext(ctx, &oldest, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get oldest media item: %w", err)
	}

	if !oldest.Valid {
		return nil, nil
	}
	return &oldest.Time, nil
}
