// storage.go
package s3

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound возвращается при чтении отсутствующего ключа: вызывающий
// код отличает пропавший объект от сбоя ввода-вывода.
var ErrObjectNotFound = errors.New("object not found")

// S3Object определяет интерфейс для объектов S3
type S3Object interface {
	io.ReadCloser
	ContentLength() int64
	ContentType() string
}

// s3Object реализует интерфейс S3Object
type s3Object struct {
	io.ReadCloser
	contentLength int64
	contentType   string
}

func (o *s3Object) ContentLength() int64 {
	return o.contentLength
}

func (o *s3Object) ContentType() string {
	return o.contentType
}

// Storage определяет интерфейс байтового хранилища. Ключи непрозрачны и
// генерируются сервисами с префиксом владельца, чтобы исключить коллизии.
type Storage interface {
	UploadBytes(key string, data []byte) error
	GetObject(ctx context.Context, key string) (S3Object, error)
	// DeleteObject удаляет объект; отсутствие объекта считается успехом.
	DeleteObject(key string) error
	ObjectExists(ctx context.Context, key string) (bool, error)
}
