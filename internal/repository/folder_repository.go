package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"stratodrive/internal/domain"
)

type FolderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	query := `
        INSERT INTO folders (name, owner_id, parent_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		folder.Name,
		folder.OwnerID,
		folder.ParentID,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	return nil
}

// GetByID возвращает активную (не удалённую) папку владельца.
// Чужая или отсутствующая папка — всегда ErrNotFound.
func (r *FolderRepository) GetByID(ctx context.Context, id int64, ownerID string) (*domain.Folder, error) {
	var folder domain.Folder
	query := `
        SELECT * FROM folders
        WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &folder, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

// GetAnyByID возвращает папку владельца независимо от состояния корзины.
func (r *FolderRepository) GetAnyByID(ctx context.Context, id int64, ownerID string) (*domain.Folder, error) {
	var folder domain.Folder
	query := `SELECT * FROM folders WHERE id = $1 AND owner_id = $2`

	err := r.db.GetContext(ctx, &folder, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

// GetBreadcrumb строит путь от корня до папки, поднимаясь по ссылкам
// parent_id. Первый элемент результата — сама папка, последний — папка
// верхнего уровня; сервис разворачивает порядок и добавляет корень.
func (r *FolderRepository) GetBreadcrumb(ctx context.Context, id int64, ownerID string) ([]domain.Folder, error) {
	var trail []domain.Folder
	query := `
        WITH RECURSIVE ancestors AS (
            SELECT *, 0 AS depth
            FROM folders
            WHERE id = $1 AND owner_id = $2

            UNION ALL

            SELECT f.*, a.depth + 1
            FROM folders f
            INNER JOIN ancestors a ON f.id = a.parent_id
        )
        SELECT id, name, owner_id, parent_id, created_at, updated_at, deleted_at
        FROM ancestors
        ORDER BY depth`

	err := r.db.SelectContext(ctx, &trail, query, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get breadcrumb: %w", err)
	}

	return trail, nil
}

// ListSubfolders возвращает активные подпапки уровня, отсортированные по
// имени. parentID = nil означает корневой уровень.
func (r *FolderRepository) ListSubfolders(ctx context.Context, parentID *int64, ownerID string) ([]domain.Folder, error) {
	var folders []domain.Folder
	var err error

	if parentID == nil {
		err = r.db.SelectContext(ctx, &folders, `
            SELECT * FROM folders
            WHERE parent_id IS NULL AND owner_id = $1 AND deleted_at IS NULL
            ORDER BY name`, ownerID)
	} else {
		err = r.db.SelectContext(ctx, &folders, `
            SELECT * FROM folders
            WHERE parent_id = $1 AND owner_id = $2 AND deleted_at IS NULL
            ORDER BY name`, *parentID, ownerID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get subfolders: %w", err)
	}

	return folders, nil
}

// Rename обновляет только имя. Удалённая папка не переименовывается.
func (r *FolderRepository) Rename(ctx context.Context, id int64, ownerID, newName string) error {
	query := `
        UPDATE folders
        SET name = $1, updated_at = CURRENT_TIMESTAMP
        WHERE id = $2 AND owner_id = $3 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, newName, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
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

// SetParent перемещает папку. Валидация цели выполняется сервисом.
func (r *FolderRepository) SetParent(ctx context.Context, id int64, ownerID string, newParentID *int64) error {
	query := `
        UPDATE folders
        SET parent_id = $1, updated_at = CURRENT_TIMESTAMP
        WHERE id = $2 AND owner_id = $3 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, newParentID, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to move folder: %w", err)
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

// SoftDeleteTree помечает папку и всех её потомков (папки и файлы)
// удалёнными одной отметкой времени, обходя дерево в глубину.
func (r *FolderRepository) SoftDeleteTree(ctx context.Context, id int64, ownerID string, deletedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Помечаем папки поддерева
	result, err := tx.ExecContext(ctx, `
        WITH RECURSIVE subfolder AS (
            SELECT id FROM folders
            WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL

            UNION ALL

            SELECT f.id FROM folders f
            INNER JOIN subfolder s ON f.parent_id = s.id
            WHERE f.deleted_at IS NULL
        )
        UPDATE folders
        SET deleted_at = $3, updated_at = CURRENT_TIMESTAMP
        WHERE id IN (SELECT id FROM subfolder)
    `, id, ownerID, deletedAt)
	if err != nil {
		return fmt.Errorf("failed to mark folders as deleted: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	// Помечаем файлы во всех затронутых папках той же отметкой времени
	_, err = tx.ExecContext(ctx, `
        UPDATE files
        SET deleted_at = $3, updated_at = CURRENT_TIMESTAMP
        WHERE owner_id = $2
        AND deleted_at IS NULL
        AND folder_id IN (
            WITH RECURSIVE subfolder AS (
                SELECT id FROM folders WHERE id = $1 AND owner_id = $2
                UNION ALL
                SELECT f.id FROM folders f
                INNER JOIN subfolder s ON f.parent_id = s.id
            )
            SELECT id FROM subfolder
        )
    `, id, ownerID, deletedAt)
	if err != nil {
		return fmt.Errorf("failed to mark files as deleted: %w", err)
	}

	return tx.Commit()
}

// Restore возвращает из корзины только названную папку. Потомки остаются
// удалёнными, пока их не восстановят отдельно.
func (r *FolderRepository) Restore(ctx context.Context, id int64, ownerID string) error {
	query := `
        UPDATE folders
        SET deleted_at = NULL, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1 AND owner_id = $2 AND deleted_at IS NOT NULL`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to restore folder: %w", err)
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

// DeleteRow окончательно удаляет строку папки из корзины. Предикат
// deleted_at IS NOT NULL делает гонку с восстановлением безопасной:
// восстановленная папка просто не будет найдена.
func (r *FolderRepository) DeleteRow(ctx context.Context, id int64, ownerID string) error {
	query := `DELETE FROM folders WHERE id = $1 AND owner_id = $2 AND deleted_at IS NOT NULL`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete folder permanently: %w", err)
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

// CheckFolderExistsInParent проверяет существование папки с таким именем в родительской папке
func (r *FolderRepository) CheckFolderExistsInParent(ctx context.Context, parentID *int64, ownerID, name string) (bool, error) {
	var exists bool
	var err error

	if parentID == nil {
		err = r.db.GetContext(ctx, &exists, `
            SELECT EXISTS(
                SELECT 1 FROM folders
                WHERE parent_id IS NULL AND owner_id = $1 AND name = $2 AND deleted_at IS NULL
            )`, ownerID, name)
	} else {
		err = r.db.GetContext(ctx, &exists, `
            SELECT EXISTS(
                SELECT 1 FROM folders
                WHERE parent_id = $1 AND owner_id = $2 AND name = $3 AND deleted_at IS NULL
            )`, *parentID, ownerID, name)
	}

	if err != nil {
		return false, fmt.Errorf("failed to check folder existence: %w", err)
	}

	return exists, nil
}

// DeleteTrashedBefore окончательно удаляет старые папки из корзины.
// Папки не несут байтов, поэтому квота не затрагивается.
func (r *FolderRepository) DeleteTrashedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM folders WHERE deleted_at IS NOT NULL AND deleted_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old trashed folders: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}
