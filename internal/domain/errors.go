package domain

import "errors"

// Типизированные ошибки ядра. Хендлеры сопоставляют их с HTTP-статусами,
// сервисы заворачивают через fmt.Errorf("...: %w", err).
var (
	// ErrNotFound возвращается, когда элемент отсутствует или принадлежит
	// другому владельцу. Чужие элементы всегда выглядят как несуществующие.
	ErrNotFound = errors.New("item not found")

	// ErrNotInTrash возвращается при попытке окончательного удаления или
	// восстановления элемента, который не находится в корзине.
	ErrNotInTrash = errors.New("item is not in trash")

	ErrAlreadyExists  = errors.New("folder with this name already exists")
	ErrParentNotFound = errors.New("parent folder not found")
	ErrTargetNotFound = errors.New("target folder not found")
	ErrSelfReference  = errors.New("cannot move folder into itself")
	ErrFileTooLarge   = errors.New("file size exceeds plan upload limit")
	ErrQuotaExceeded  = errors.New("not enough storage space available")
	ErrBlobStore      = errors.New("blob storage operation failed")
	ErrInvalidState   = errors.New("invalid state")
)
