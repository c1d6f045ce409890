package domain

import "time"

// Домены хранилища, разделяющие один общий потолок квоты.
const (
	DomainDrive   = "drive"
	DomainGallery = "gallery"
	DomainMail    = "mail" // учитывается внешним сервисом
)

// StorageQuota — запись квоты одного владельца в одном домене.
type StorageQuota struct {
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	Domain       string    `json:"domain" db:"domain"`
	Plan         string    `json:"plan" db:"plan"`
	UsedBytes    int64     `json:"used_bytes" db:"used_bytes"`
	LimitBytes   int64     `json:"limit_bytes" db:"limit_bytes"`
	ItemsCount   int64     `json:"items_count" db:"items_count"`
	FoldersCount int64     `json:"folders_count" db:"folders_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// QuotaInfo — состояние квоты домена в готовом для выдачи наружу виде.
type QuotaInfo struct {
	Plan           string  `json:"plan"`
	UsedBytes      int64   `json:"used_bytes"`
	LimitBytes     int64   `json:"limit_bytes"`
	UsedPercent    float64 `json:"used_percent"`
	ItemsCount     int64   `json:"items_count"`
	FoldersCount   int64   `json:"folders_count"`
	UsedFormatted  string  `json:"used_formatted"`
	LimitFormatted string  `json:"limit_formatted"`
}

// DomainUsage — вклад одного домена в объединённый отчёт.
type DomainUsage struct {
	Domain    string `json:"domain"`
	Plan      string `json:"plan,omitempty"`
	UsedBytes int64  `json:"used_bytes"`
	// Degraded выставляется, когда чтение квоты домена не удалось и его
	// потребление засчитано как 0 (fail-open).
	Degraded bool `json:"degraded,omitempty"`
}

// CombinedUsage — объединённый отчёт по всем доменам. Вычисляется на лету,
// не персистится.
type CombinedUsage struct {
	TotalUsedBytes   int64         `json:"total_used_bytes"`
	TotalLimitBytes  int64         `json:"total_limit_bytes"`
	UsedPercent      int           `json:"used_percent"`
	EffectivePlan    string        `json:"effective_plan"`
	ReclaimableBytes int64         `json:"reclaimable_bytes"`
	Breakdown        []DomainUsage `json:"breakdown"`
}
