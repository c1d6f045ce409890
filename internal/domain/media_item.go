package domain

import (
	"github.com/google/uuid"
	"time"
)

// MediaItem — элемент плоской медиаколлекции. Вместо произвольных метаданных
// перечислены только реально читаемые поля: категория, уверенность
// классификатора, размеры в пикселях и время съёмки.
type MediaItem struct {
	UUID       uuid.UUID  `json:"uuid" db:"uuid"`
	OwnerID    string     `json:"owner_id" db:"owner_id"`
	Filename   string     `json:"filename" db:"filename"`
	SizeBytes  int64      `json:"size_bytes" db:"size_bytes"`
	S3Key      string     `json:"-" db:"s3_key"`
	ThumbKey   *string    `json:"-" db:"thumb_key"`
	Category   string     `json:"category" db:"category"`
	Confidence *float64   `json:"confidence,omitempty" db:"confidence"`
	Width      int        `json:"width" db:"width"`
	Height     int        `json:"height" db:"height"`
	TakenAt    *time.Time `json:"taken_at,omitempty" db:"taken_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func (m *MediaItem) IsDeleted() bool {
	return m.DeletedAt != nil
}

type MediaUpload struct {
	Filename   string
	OwnerID    string
	Category   string
	Confidence *float64
	Width      int
	Height     int
	TakenAt    *time.Time
	Data       []byte
}

// CategoryUsage — суммарный объём одной категории.
type CategoryUsage struct {
	Category   string `json:"category" db:"category"`
	TotalBytes int64  `json:"total_bytes" db:"total_bytes"`
	ItemsCount int64  `json:"items_count" db:"items_count"`
}

// StorageAnalysis — аналитика медиаколлекции: что занимает место и что
// можно безболезненно удалить.
type StorageAnalysis struct {
	ByCategory    []CategoryUsage `json:"by_category"`
	LargestItems  []MediaItem     `json:"largest_items"`
	LowValueItems []MediaItem     `json:"low_value_items"`
	HeadroomYears float64         `json:"headroom_years"`
}
