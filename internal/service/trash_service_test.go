package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratodrive/internal/domain"
)

type trashFixture struct {
	quotas   *fakeQuotaStore
	folders  *fakeFolderStore
	files    *fakeFileStore
	media    *fakeMediaStore
	blobs    *fakeBlobStore
	service  *TrashService
	fileSvc  *FileService
	mediaSvc *MediaService
}

func newTrashFixture(retentionDays int) *trashFixture {
	quotas := newFakeQuotaStore()
	files := newFakeFileStore()
	folders := newFakeFolderStore(files)
	media := newFakeMediaStore()
	blobs := newFakeBlobStore()
	trash := &fakeTrashStore{folders: folders, files: files}
	return &trashFixture{
		quotas:   quotas,
		folders:  folders,
		files:    files,
		media:    media,
		blobs:    blobs,
		service:  NewTrashService(trash, folders, files, media, quotas, blobs, retentionDays),
		fileSvc:  NewFileService(files, folders, quotas, blobs),
		mediaSvc: NewMediaService(media, quotas, blobs),
	}
}

// backdate сдвигает отметку удаления файла в прошлое.
func (f *trashFixture) backdateFile(t *testing.T, name string, age time.Duration) {
	t.Helper()
	f.files.mu.Lock()
	defer f.files.mu.Unlock()
	for _, file := range f.files.files {
		if file.Name == name && file.IsDeleted() {
			past := time.Now().UTC().Add(-age)
			file.DeletedAt = &past
			return
		}
	}
	t.Fatalf("deleted file %s not found", name)
}

func (f *trashFixture) backdateMedia(t *testing.T, filename string, age time.Duration) {
	t.Helper()
	f.media.mu.Lock()
	defer f.media.mu.Unlock()
	for _, item := range f.media.items {
		if item.Filename == filename && item.IsDeleted() {
			past := time.Now().UTC().Add(-age)
			item.DeletedAt = &past
			return
		}
	}
	t.Fatalf("deleted media %s not found", filename)
}

func TestGetTrashItemsShowsRemainingTime(t *testing.T) {
	f := newTrashFixture(30)
	ctx := context.Background()

	file, err := f.fileSvc.UploadFile(ctx, domain.FileUpload{
		Name:     "fresh.txt",
		MIMEType: "text/plain",
		OwnerID:  "user-1",
		Data:     []byte("fresh"),
	})
	require.NoError(t, err)
	require.NoError(t, f.fileSvc.DeleteFile(ctx, file.UUID, "user-1"))

	items, err := f.service.GetTrashItems(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].ExpiresIn, "дней")
}

func TestGetTrashItemsExpiredLabel(t *testing.T) {
	f := newTrashFixture(30)
	ctx := context.Background()

	file, err := f.fileSvc.UploadFile(ctx, domain.FileUpload{
		Name:     "ancient.txt",
		MIMEType: "text/plain",
		OwnerID:  "user-1",
		Data:     []byte("ancient"),
	})
	require.NoError(t, err)
	require.NoError(t, f.fileSvc.DeleteFile(ctx, file.UUID, "user-1"))
	f.backdateFile(t, "ancient.txt", 31*24*time.Hour)

	items, err := f.service.GetTrashItems(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "скоро будет удалено", items[0].ExpiresIn)
}

func TestCleanupPurgesExpiredAcrossDomains(t *testing.T) {
	f := newTrashFixture(30)
	ctx := context.Background()

	oldFile, err := f.fileSvc.UploadFile(ctx, domain.FileUpload{
		Name:     "expired.txt",
		MIMEType: "text/plain",
		OwnerID:  "user-1",
		Data:     []byte("expired file bytes"),
	})
	require.NoError(t, err)
	require.NoError(t, f.fileSvc.DeleteFile(ctx, oldFile.UUID, "user-1"))
	f.backdateFile(t, "expired.txt", 40*24*time.Hour)

	freshFile, err := f.fileSvc.UploadFile(ctx, domain.FileUpload{
		Name:     "recent.txt",
		MIMEType: "text/plain",
		OwnerID:  "user-1",
		Data:     []byte("recent"),
	})
	require.NoError(t, err)
	require.NoError(t, f.fileSvc.DeleteFile(ctx, freshFile.UUID, "user-1"))

	oldMedia, err := f.mediaSvc.UploadMedia(ctx, domain.MediaUpload{
		Filename: "expired.jpg",
		OwnerID:  "user-1",
		Category: "other",
		Data:     []byte("expired media"),
	})
	require.NoError(t, err)
	require.NoError(t, f.mediaSvc.DeleteMedia(ctx, oldMedia.UUID, "user-1"))
	f.backdateMedia(t, "expired.jpg", 40*24*time.Hour)

	result, err := f.service.CleanupOldTrash(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesPurged)
	assert.Equal(t, 1, result.MediaPurged)
	assert.Equal(t, oldFile.SizeBytes+oldMedia.SizeBytes, result.BytesFreed)

	driveQuota := f.quotas.snapshot("user-1", domain.DomainDrive)
	assert.Equal(t, freshFile.SizeBytes, driveQuota.UsedBytes, "свежая корзина байты не возвращает")

	galleryQuota := f.quotas.snapshot("user-1", domain.DomainGallery)
	assert.Equal(t, int64(0), galleryQuota.UsedBytes)
}

func TestCleanupIsIdempotent(t *testing.T) {
	f := newTrashFixture(30)
	ctx := context.Background()

	file, err := f.fileSvc.UploadFile(ctx, domain.FileUpload{
		Name:     "once.txt",
		MIMEType: "text/plain",
		OwnerID:  "user-1",
		Data:     []byte("purged once"),
	})
	require.NoError(t, err)
	require.NoError(t, f.fileSvc.DeleteFile(ctx, file.UUID, "user-1"))
	f.backdateFile(t, "once.txt", 60*24*time.Hour)

	first, err := f.service.CleanupOldTrash(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.FilesPurged)

	second, err := f.service.CleanupOldTrash(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.FilesPurged)
	assert.Equal(t, 0, second.MediaPurged)
	assert.Equal(t, int64(0), second.BytesFreed)

	quota := f.quotas.snapshot("user-1", domain.DomainDrive)
	assert.Equal(t, int64(0), quota.UsedBytes, "повторный проход не уводит счётчик в минус")
}

func TestCleanupPurgesExpiredFolders(t *testing.T) {
	f := newTrashFixture(30)
	ctx := context.Background()

	folderSvc := NewFolderService(f.folders, f.files, f.quotas, f.blobs)
	folder, err := folderSvc.CreateFolder(ctx, "user-1", "Stale", nil)
	require.NoError(t, err)
	require.NoError(t, folderSvc.DeleteFolder(ctx, folder.ID, "user-1"))

	f.folders.mu.Lock()
	past := time.Now().UTC().Add(-45 * 24 * time.Hour)
	f.folders.folders[folder.ID].DeletedAt = &past
	f.folders.mu.Unlock()

	result, err := f.service.CleanupOldTrash(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FoldersPurged)
}
