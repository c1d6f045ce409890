package domain

import "time"

// TrashItem — элемент корзины (папка или файл) для отображения списком.
type TrashItem struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Type      string    `json:"type" db:"type"` // "folder" | "file"
	SizeBytes int64     `json:"size_bytes" db:"size_bytes"`
	MIMEType  *string   `json:"mime_type,omitempty" db:"mime_type"`
	DeletedAt time.Time `json:"deleted_at" db:"deleted_at"`
	ExpiresIn string    `json:"expires_in"`
}

// CleanupResult — отчёт одного прохода чистки корзины.
type CleanupResult struct {
	FilesPurged   int   `json:"files_purged"`
	FoldersPurged int   `json:"folders_purged"`
	MediaPurged   int   `json:"media_purged"`
	BytesFreed    int64 `json:"bytes_freed"`
}
