package domain

import (
	"github.com/google/uuid"
	"time"
)

type File struct {
	UUID      uuid.UUID  `json:"uuid" db:"uuid"`
	Name      string     `json:"name" db:"name"`
	MIMEType  string     `json:"mime_type" db:"mime_type"`
	SizeBytes int64      `json:"size_bytes" db:"size_bytes"`
	FolderID  *int64     `json:"folder_id,omitempty" db:"folder_id"` // nil = корень
	OwnerID   string     `json:"owner_id" db:"owner_id"`
	S3Key     string     `json:"-" db:"s3_key"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted сообщает, находится ли файл в корзине.
func (f *File) IsDeleted() bool {
	return f.DeletedAt != nil
}

type FileUpload struct {
	Name     string
	MIMEType string
	FolderID *int64
	OwnerID  string
	Data     []byte
}

type FileDownload struct {
	File *File
	Data []byte
}
