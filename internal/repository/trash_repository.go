package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stratodrive/internal/domain"
)

type TrashRepository struct {
	db *sqlx.DB
}

func NewTrashRepository(db *sqlx.DB) *TrashRepository {
	return &TrashRepository{db: db}
}

// GetTrashItems получает все элементы в корзине пользователя,
// свежеудалённые первыми.
func (r *TrashRepository) GetTrashItems(ctx context.Context, ownerID string) ([]domain.TrashItem, error) {
	var items []domain.TrashItem

	query := `
        WITH folder_sizes AS (
            SELECT
                f.id,
                COALESCE(SUM(fi.size_bytes), 0) AS total_size
            FROM folders f
            LEFT JOIN files fi ON fi.folder_id = f.id
            WHERE f.deleted_at IS NOT NULL
            GROUP BY f.id
        ),
        deleted_folders AS (
            SELECT
                f.id::text AS id,
                f.name,
                'folder' AS type,
                COALESCE(fs.total_size, 0) AS size_bytes,
                NULL::text AS mime_type,
                f.deleted_at
            FROM folders f
            LEFT JOIN folder_sizes fs ON f.id = fs.id
            WHERE f.owner_id = $1 AND f.deleted_at IS NOT NULL
        ),
        deleted_files AS (
            SELECT
                uuid::text AS id,
                name,
                'file' AS type,
                size_bytes,
                mime_type,
                deleted_at
            FROM files
            WHERE owner_id = $1 AND deleted_at IS NOT NULL
        )
        SELECT id, name, type, size_bytes, mime_type, deleted_at FROM deleted_folders
        UNION ALL
        SELECT id, name, type, size_bytes, mime_type, deleted_at FROM deleted_files
        ORDER BY deleted_at DESC`

	err := r.db.SelectContext(ctx, &items, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trash items: %w", err)
	}

	return items, nil
}
