package preview

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xfrr/goffmpeg/transcoder"
)

const transcodeTimeout = 10 * time.Minute

// WebVideo перекодирует видеофайл в H.264/AAC MP4, пригодный для просмотра
// в браузере, и кэширует результат. Повторный запрос отдаёт кэш.
func (s *Service) WebVideo(ctx context.Context, fileUUID uuid.UUID, ownerID string) ([]byte, error) {
	file, err := s.files.GetByUUID(ctx, fileUUID, ownerID)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(file.MIMEType, "video/") {
		return nil, ErrUnsupported
	}

	webKey := fmt.Sprintf("previews/video/%s.mp4", fileUUID)

	exists, err := s.storage.ObjectExists(ctx, webKey)
	if err != nil {
		log.Printf("[PreviewService] Не удалось проверить кэш видео %s: %v", webKey, err)
	}
	if exists {
		return s.readObject(ctx, webKey)
	}

	original, err := s.readObject(ctx, file.S3Key)
	if err != nil {
		return nil, err
	}

	converted, err := transcodeToMP4(ctx, original)
	if err != nil {
		return nil, fmt.Errorf("failed to transcode video: %w", err)
	}

	if err := s.storage.UploadBytes(webKey, converted); err != nil {
		log.Printf("[PreviewService] Не удалось закэшировать видео %s: %v", webKey, err)
	}

	return converted, nil
}

func transcodeToMP4(ctx context.Context, data []byte) ([]byte, error) {
	input, err := os.CreateTemp("", "transcode-in-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(input.Name())

	if _, err := input.Write(data); err != nil {
		input.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	input.Close()

	output := input.Name() + ".mp4"
	defer os.Remove(output)

	ctx, cancel := context.WithTimeout(ctx, transcodeTimeout)
	defer cancel()

	trans := new(transcoder.Transcoder)
	if err := trans.Initialize(input.Name(), output); err != nil {
		return nil, fmt.Errorf("failed to initialize transcoder: %w", err)
	}

	trans.MediaFile().SetVideoCodec("libx264")
	trans.MediaFile().SetAudioCodec("aac")
	trans.MediaFile().SetOutputFormat("mp4")

	done := trans.Run(true)
	select {
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("transcoding failed: %w", err)
		}
	case <-ctx.Done():
		trans.Stop()
		return nil, ctx.Err()
	}

	result, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcoded file: %w", err)
	}

	return result, nil
}
