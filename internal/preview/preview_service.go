package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/bimg"

	"stratodrive/internal/domain"
	"stratodrive/internal/service/s3"
)

const (
	maxPreviewSize = 600
	jpegQuality    = 75
	frameTime      = "00:00:01"

	videoFrameTimeout = 30 * time.Second
)

// ErrUnsupported возвращается для типов содержимого, по которым превью
// не строится.
var ErrUnsupported = errors.New("preview is not supported for this content type")

// FileSource отдаёт метаданные активного файла владельца.
type FileSource interface {
	GetByUUID(ctx context.Context, fileUUID uuid.UUID, ownerID string) (*domain.File, error)
}

// Service строит превью файлов диска лениво, при первом запросе, и кэширует
// результат в блоб-хранилище рядом с оригиналами.
type Service struct {
	storage s3.Storage
	files   FileSource
}

func NewService(storage s3.Storage, files FileSource) *Service {
	return &Service{storage: storage, files: files}
}

// GetPreview возвращает JPEG-превью файла. Готовое превью отдаётся из
// кэша; иначе строится из оригинала и кэшируется. Неудачное кэширование
// не мешает отдать результат.
func (s *Service) GetPreview(ctx context.Context, fileUUID uuid.UUID, ownerID string) ([]byte, error) {
	file, err := s.files.GetByUUID(ctx, fileUUID, ownerID)
	if err != nil {
		return nil, err
	}

	previewKey := fmt.Sprintf("previews/%s", fileUUID)

	exists, err := s.storage.ObjectExists(ctx, previewKey)
	if err != nil {
		log.Printf("[PreviewService] Не удалось проверить кэш превью %s: %v", previewKey, err)
	}
	if exists {
		return s.readObject(ctx, previewKey)
	}

	original, err := s.readObject(ctx, file.S3Key)
	if err != nil {
		return nil, err
	}

	var preview []byte
	switch {
	case strings.HasPrefix(file.MIMEType, "image/"):
		preview, err = optimizeImage(original, maxPreviewSize)
	case strings.HasPrefix(file.MIMEType, "video/"):
		preview, err = extractVideoFrame(ctx, original)
	default:
		return nil, ErrUnsupported
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build preview: %w", err)
	}

	if err := s.storage.UploadBytes(previewKey, preview); err != nil {
		log.Printf("[PreviewService] Не удалось закэшировать превью %s: %v", previewKey, err)
	}

	return preview, nil
}

func (s *Service) readObject(ctx context.Context, key string) ([]byte, error) {
	object, err := s.storage.GetObject(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	return data, nil
}

// optimizeImage вписывает изображение в квадрат maxSize и пережимает в JPEG.
func optimizeImage(data []byte, maxSize int) ([]byte, error) {
	image := bimg.NewImage(data)

	size, err := image.Size()
	if err != nil {
		return nil, fmt.Errorf("failed to get image size: %w", err)
	}

	width, height := calculateNewDimensions(size.Width, size.Height, maxSize)

	processed, err := image.Process(bimg.Options{
		Width:   width,
		Height:  height,
		Quality: jpegQuality,
		Type:    bimg.JPEG,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	return processed, nil
}

// calculateNewDimensions сохраняет пропорции, не увеличивая оригинал.
func calculateNewDimensions(width, height, maxSize int) (int, int) {
	if width <= maxSize && height <= maxSize {
		return width, height
	}

	if width > height {
		return maxSize, height * maxSize / width
	}
	return width * maxSize / height, maxSize
}

// extractVideoFrame достаёт кадр с первой секунды видео через ffmpeg.
func extractVideoFrame(ctx context.Context, data []byte) ([]byte, error) {
	input, err := os.CreateTemp("", "preview-in-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(input.Name())

	if _, err := input.Write(data); err != nil {
		input.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	input.Close()

	output := input.Name() + ".jpg"
	defer os.Remove(output)

	ctx, cancel := context.WithTimeout(ctx, videoFrameTimeout)
	defer cancel()

	scale := fmt.Sprintf("scale='min(%d,iw)':-2", maxPreviewSize)
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", frameTime,
		"-i", input.Name(),
		"-vf", scale,
		"-frames:v", "1",
		"-q:v", "5",
		"-y", output,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, out)
	}

	frame, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted frame: %w", err)
	}

	return frame, nil
}
