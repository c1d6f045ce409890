package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"stratodrive/internal/domain"
)

type StorageQuotaRepository struct {
	db *sqlx.DB
}

func NewStorageQuotaRepository(db *sqlx.DB) *StorageQuotaRepository {
	return &StorageQuotaRepository{db: db}
}

// GetQuota возвращает квоту владельца в домене, лениво создавая её
// с дефолтным тарифом при первом обращении.
func (r *StorageQuotaRepository) GetQuota(ctx context.Context, ownerID, storageDomain string) (*domain.StorageQuota, error) {
	var quota domain.StorageQuota

	err := r.db.GetContext(ctx, &quota,
		`SELECT * FROM storage_quotas WHERE owner_id = $1 AND domain = $2`,
		ownerID, storageDomain)

	if err != nil {
		// Если квота не найдена, создаем новую с дефолтным тарифом
		if err == sql.ErrNoRows {
			if err := r.ensure(ctx, ownerID, storageDomain); err != nil {
				return nil, fmt.Errorf("failed to create quota: %w", err)
			}
			err = r.db.GetContext(ctx, &quota,
				`SELECT * FROM storage_quotas WHERE owner_id = $1 AND domain = $2`,
				ownerID, storageDomain)
			if err != nil {
				return nil, fmt.Errorf("failed to get quota after create: %w", err)
			}
			return &quota, nil
		}
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	return &quota, nil
}

// ensure создает запись квоты, если её ещё нет. Идемпотентно.
func (r *StorageQuotaRepository) ensure(ctx context.Context, ownerID, storageDomain string) error {
	plan := domain.PlanByName(domain.DefaultPlan)
	query := `
        INSERT INTO storage_quotas (owner_id, domain, plan, used_bytes, limit_bytes)
        VALUES ($1, $2, $3, 0, $4)
        ON CONFLICT (owner_id, domain) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, ownerID, storageDomain, plan.Name, plan.StorageBytes)
	return err
}

// SetPlan обновляет тариф и потолок квоты. Уже занятые байты сверх нового
// (меньшего) потолка не отклоняются: аккаунт живет read-only, пока не
// освободит место.
func (r *StorageQuotaRepository) SetPlan(ctx context.Context, ownerID, storageDomain, planName string) error {
	if _, err := r.GetQuota(ctx, ownerID, storageDomain); err != nil {
		return err
	}

	plan := domain.PlanByName(planName)
	query := `
        UPDATE storage_quotas
        SET plan = $1,
            limit_bytes = $2,
            updated_at = CURRENT_TIMESTAMP
        WHERE owner_id = $3 AND domain = $4`

	result, err := r.db.ExecContext(ctx, query, plan.Name, plan.StorageBytes, ownerID, storageDomain)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("quota not found for owner: %s", ownerID)
	}

	return nil
}

// ReserveAndCommit атомарно проверяет потолок и применяет дельты байт и
// количества элементов. Проверка и запись выполняются одним условным
// UPDATE: два конкурентных вызова не могут оба пройти проверку и вместе
// пробить лимит.
func (r *StorageQuotaRepository) ReserveAndCommit(ctx context.Context, ownerID, storageDomain string, deltaBytes, deltaItems int64) error {
	if _, err := r.GetQuota(ctx, ownerID, storageDomain); err != nil {
		return err
	}

	query := `
        UPDATE storage_quotas
        SET used_bytes = GREATEST(0, used_bytes + $1),
            items_count = GREATEST(0, items_count + $2),
            updated_at = CURRENT_TIMESTAMP
        WHERE owner_id = $3 AND domain = $4
        AND ($1 <= 0 OR used_bytes + $1 <= limit_bytes)`

	result, err := r.db.ExecContext(ctx, query, deltaBytes, deltaItems, ownerID, storageDomain)
	if err != nil {
		return fmt.Errorf("failed to reserve quota: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		// Запись существует (мы только что её читали), значит не прошла
		// проверка потолка.
		return domain.ErrQuotaExceeded
	}

	return nil
}

// Release безусловно уменьшает счётчики, с нижней границей ноль: дрейф
// бухгалтерии не должен уводить used_bytes в минус.
func (r *StorageQuotaRepository) Release(ctx context.Context, ownerID, storageDomain string, deltaBytes, deltaItems int64) error {
	query := `
        UPDATE storage_quotas
        SET used_bytes = GREATEST(0, used_bytes - $1),
            items_count = GREATEST(0, items_count - $2),
            updated_at = CURRENT_TIMESTAMP
        WHERE owner_id = $3 AND domain = $4`

	result, err := r.db.ExecContext(ctx, query, deltaBytes, deltaItems, ownerID, storageDomain)
	if err != nil {
		return fmt.Errorf("failed to release quota: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("quota not found for owner: %s", ownerID)
	}

	return nil
}

// AdjustFolderCount изменяет счётчик папок drive-домена.
func (r *StorageQuotaRepository) AdjustFolderCount(ctx context.Context, ownerID string, delta int64) error {
	query := `
        UPDATE storage_quotas
        SET folders_count = GREATEST(0, folders_count + $1),
            updated_at = CURRENT_TIMESTAMP
        WHERE owner_id = $2 AND domain = $3`

	result, err := r.db.ExecContext(ctx, query, delta, ownerID, domain.DomainDrive)
	if err != nil {
		return fmt.Errorf("failed to adjust folder count: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("quota not found for owner: %s", ownerID)
	}

	return nil
}

// CalculateAndUpdateUsedSpace пересчитывает used_bytes полным сканом строк
// домена. Элементы в корзине продолжают занимать место до окончательного
// удаления, поэтому считаются и удалённые, и активные строки.
func (r *StorageQuotaRepository) CalculateAndUpdateUsedSpace(ctx context.Context, ownerID, storageDomain string) error {
	var query string
	switch storageDomain {
	case domain.DomainDrive:
		query = `
            UPDATE storage_quotas sq
            SET used_bytes = (
                SELECT COALESCE(SUM(f.size_bytes), 0)
                FROM files f
                WHERE f.owner_id = $1
            ),
            items_count = (
                SELECT COUNT(*)
                FROM files f
                WHERE f.owner_id = $1 AND f.deleted_at IS NULL
            ),
            updated_at = CURRENT_TIMESTAMP
            WHERE sq.owner_id = $1 AND sq.domain = $2`
	case domain.DomainGallery:
		query = `
            UPDATE storage_quotas sq
            SET used_bytes = (
                SELECT COALESCE(SUM(m.size_bytes), 0)
                FROM media_items m
                WHERE m.owner_id = $1
            ),
            items_count = (
                SELECT COUNT(*)
                FROM media_items m
                WHERE m.owner_id = $1 AND m.deleted_at IS NULL
            ),
            updated_at = CURRENT_TIMESTAMP
            WHERE sq.owner_id = $1 AND sq.domain = $2`
	default:
		return fmt.Errorf("unknown storage domain: %s", storageDomain)
	}

	log.Printf("[QuotaRepository] Выполняем пересчет используемого пространства: владелец %s, домен %s", ownerID, storageDomain)

	result, err := r.db.ExecContext(ctx, query, ownerID, storageDomain)
	if err != nil {
		log.Printf("[QuotaRepository] Ошибка при пересчете: %v", err)
		return fmt.Errorf("failed to update used space: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		// Квоты ещё нет — создаём и повторяем пересчет один раз
		if _, err := r.GetQuota(ctx, ownerID, storageDomain); err != nil {
			return fmt.Errorf("failed to get or create quota: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, ownerID, storageDomain); err != nil {
			return fmt.Errorf("failed to update used space: %w", err)
		}
	}

	return nil
}
