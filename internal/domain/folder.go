package domain

import "time"

type Folder struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	OwnerID   string     `json:"owner_id" db:"owner_id"`
	ParentID  *int64     `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted сообщает, находится ли папка в корзине.
func (f *Folder) IsDeleted() bool {
	return f.DeletedAt != nil
}

// RootFolderName — отображаемое имя синтетического корня (parent_id = NULL).
const RootFolderName = "Root"

// BreadcrumbEntry — один шаг пути от корня до папки.
type BreadcrumbEntry struct {
	ID   *int64 `json:"id"` // nil для корня
	Name string `json:"name"`
}

// FolderContent — папка, хлебные крошки и её непосредственное содержимое.
type FolderContent struct {
	Folder     Folder            `json:"folder"`
	Breadcrumb []BreadcrumbEntry `json:"breadcrumb"`
	Folders    []Folder          `json:"subfolders"`
	Files      []File            `json:"files"`
}
