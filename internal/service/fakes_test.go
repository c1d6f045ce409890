package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"stratodrive/internal/domain"
	"stratodrive/internal/service/s3"
)

// Фейковые хранилища повторяют семантику sqlx-репозиториев в памяти,
// чтобы сервисы тестировались изолированно.

type fakeQuotaStore struct {
	mu sync.Mutex
	// ключ owner_id + "/" + domain
	quotas map[string]*domain.StorageQuota
	// имитация проигранной гонки при фиксации
	forceReserveErr error
}

func newFakeQuotaStore() *fakeQuotaStore {
	return &fakeQuotaStore{quotas: make(map[string]*domain.StorageQuota)}
}

func (f *fakeQuotaStore) ensure(ownerID, storageDomain string) *domain.StorageQuota {
	key := ownerID + "/" + storageDomain
	if q, ok := f.quotas[key]; ok {
		return q
	}
	plan := domain.PlanByName(domain.DefaultPlan)
	q := &domain.StorageQuota{
		OwnerID:    ownerID,
		Domain:     storageDomain,
		Plan:       plan.Name,
		LimitBytes: plan.StorageBytes,
	}
	f.quotas[key] = q
	return q
}

func (f *fakeQuotaStore) GetQuota(ctx context.Context, ownerID, storageDomain string) (*domain.StorageQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := *f.ensure(ownerID, storageDomain)
	return &q, nil
}

func (f *fakeQuotaStore) SetPlan(ctx context.Context, ownerID, storageDomain, planName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	plan := domain.PlanByName(planName)
	q := f.ensure(ownerID, storageDomain)
	q.Plan = plan.Name
	q.LimitBytes = plan.StorageBytes
	return nil
}

func (f *fakeQuotaStore) ReserveAndCommit(ctx context.Context, ownerID, storageDomain string, deltaBytes, deltaItems int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forceReserveErr != nil {
		return f.forceReserveErr
	}
	q := f.ensure(ownerID, storageDomain)
	if deltaBytes > 0 && q.UsedBytes+deltaBytes > q.LimitBytes {
		return domain.ErrQuotaExceeded
	}
	q.UsedBytes += deltaBytes
	q.ItemsCount += deltaItems
	return nil
}

func (f *fakeQuotaStore) Release(ctx context.Context, ownerID, storageDomain string, deltaBytes, deltaItems int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.ensure(ownerID, storageDomain)
	if q.UsedBytes -= deltaBytes; q.UsedBytes < 0 {
		q.UsedBytes = 0
	}
	if q.ItemsCount -= deltaItems; q.ItemsCount < 0 {
		q.ItemsCount = 0
	}
	return nil
}

func (f *fakeQuotaStore) AdjustFolderCount(ctx context.Context, ownerID string, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.ensure(ownerID, domain.DomainDrive)
	if q.FoldersCount += delta; q.FoldersCount < 0 {
		q.FoldersCount = 0
	}
	return nil
}

func (f *fakeQuotaStore) CalculateAndUpdateUsedSpace(ctx context.Context, ownerID, storageDomain string) error {
	return nil
}

func (f *fakeQuotaStore) snapshot(ownerID, storageDomain string) domain.StorageQuota {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.ensure(ownerID, storageDomain)
}

func (f *fakeQuotaStore) seed(ownerID, storageDomain string, usedBytes, itemsCount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.ensure(ownerID, storageDomain)
	q.UsedBytes = usedBytes
	q.ItemsCount = itemsCount
}

type fakeFileStore struct {
	mu    sync.Mutex
	files map[uuid.UUID]*domain.File
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[uuid.UUID]*domain.File)}
}

func (f *fakeFileStore) Create(ctx context.Context, file *domain.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	file.CreatedAt = now
	file.UpdatedAt = now
	stored := *file
	f.files[file.UUID] = &stored
	return nil
}

func (f *fakeFileStore) GetByUUID(ctx context.Context, fileUUID uuid.UUID, ownerID string) (*domain.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[fileUUID]
	if !ok || file.OwnerID != ownerID || file.IsDeleted() {
		return nil, domain.ErrNotFound
	}
	copied := *file
	return &copied, nil
}

func (f *fakeFileStore) GetAnyByUUID(ctx context.Context, fileUUID uuid.UUID, ownerID string) (*domain.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[fileUUID]
	if !ok || file.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	copied := *file
	return &copied, nil
}

func (f *fakeFileStore) ListByFolder(ctx context.Context, folderID *int64, ownerID string) ([]domain.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.File
	for _, file := range f.files {
		if file.OwnerID != ownerID || file.IsDeleted() {
			continue
		}
		if !sameFolder(file.FolderID, folderID) {
			continue
		}
		out = append(out, *file)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func sameFolder(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (f *fakeFileStore) Rename(ctx context.Context, fileUUID uuid.UUID, ownerID, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[fileUUID]
	if !ok || file.OwnerID != ownerID || file.IsDeleted() {
		return domain.ErrNotFound
	}
	file.Name = newName
	return nil
}

func (f *fakeFileStore) SetFolder(ctx context.Context, fileUUID uuid.UUID, ownerID string, newFolderID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[fileUUID]
	if !ok || file.OwnerID != ownerID || file.IsDeleted() {
		return domain.ErrNotFound
	}
	file.FolderID = newFolderID
	return nil
}

func (f *fakeFileStore) SoftDelete(ctx context.Context, fileUUID uuid.UUID, ownerID string, deletedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[fileUUID]
	if !ok || file.OwnerID != ownerID || file.IsDeleted() {
		return domain.ErrNotFound
	}
	file.DeletedAt = &deletedAt
	return nil
}

func (f *fakeFileStore) Restore(ctx context.Context, fileUUID uuid.UUID, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[fileUUID]
	if !ok || file.OwnerID != ownerID || !file.IsDeleted() {
		return domain.ErrNotInTrash
	}
	file.DeletedAt = nil
	return nil
}

func (f *fakeFileStore) DeleteRow(ctx context.Context, fileUUID uuid.UUID, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[fileUUID]
	if !ok || file.OwnerID != ownerID || !file.IsDeleted() {
		return domain.ErrNotInTrash
	}
	delete(f.files, fileUUID)
	return nil
}

func (f *fakeFileStore) DeleteAny(ctx context.Context, fileUUID uuid.UUID, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, fileUUID)
	return nil
}

func (f *fakeFileStore) ListTrashedByFolder(ctx context.Context, folderID int64, ownerID string) ([]domain.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.File
	for _, file := range f.files {
		if file.OwnerID != ownerID || !file.IsDeleted() {
			continue
		}
		if file.FolderID == nil || *file.FolderID != folderID {
			continue
		}
		out = append(out, *file)
	}
	return out, nil
}

func (f *fakeFileStore) ListTrashedBefore(ctx context.Context, cutoff time.Time) ([]domain.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.File
	for _, file := range f.files {
		if file.IsDeleted() && file.DeletedAt.Before(cutoff) {
			out = append(out, *file)
		}
	}
	return out, nil
}

type fakeFolderStore struct {
	mu      sync.Mutex
	folders map[int64]*domain.Folder
	nextID  int64
	// каскадная пометка затрагивает и файлы поддерева
	files *fakeFileStore
}

func newFakeFolderStore(files *fakeFileStore) *fakeFolderStore {
	return &fakeFolderStore{folders: make(map[int64]*domain.Folder), nextID: 1, files: files}
}

func (f *fakeFolderStore) Create(ctx context.Context, folder *domain.Folder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder.ID = f.nextID
	f.nextID++
	now := time.Now().UTC()
	folder.CreatedAt = now
	folder.UpdatedAt = now
	stored := *folder
	f.folders[folder.ID] = &stored
	return nil
}

func (f *fakeFolderStore) GetByID(ctx context.Context, id int64, ownerID string) (*domain.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.folders[id]
	if !ok || folder.OwnerID != ownerID || folder.IsDeleted() {
		return nil, domain.ErrNotFound
	}
	copied := *folder
	return &copied, nil
}

func (f *fakeFolderStore) GetAnyByID(ctx context.Context, id int64, ownerID string) (*domain.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.folders[id]
	if !ok || folder.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	copied := *folder
	return &copied, nil
}

// GetBreadcrumb возвращает цепочку от самой папки к корню.
func (f *fakeFolderStore) GetBreadcrumb(ctx context.Context, id int64, ownerID string) ([]domain.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var chain []domain.Folder
	current, ok := f.folders[id]
	if !ok || current.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	for current != nil {
		chain = append(chain, *current)
		if current.ParentID == nil {
			break
		}
		current = f.folders[*current.ParentID]
	}
	return chain, nil
}

func (f *fakeFolderStore) ListSubfolders(ctx context.Context, parentID *int64, ownerID string) ([]domain.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Folder
	for _, folder := range f.folders {
		if folder.OwnerID != ownerID || folder.IsDeleted() {
			continue
		}
		if !sameFolder(folder.ParentID, parentID) {
			continue
		}
		out = append(out, *folder)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeFolderStore) Rename(ctx context.Context, id int64, ownerID, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.folders[id]
	if !ok || folder.OwnerID != ownerID || folder.IsDeleted() {
		return domain.ErrNotFound
	}
	folder.Name = newName
	return nil
}

func (f *fakeFolderStore) SetParent(ctx context.Context, id int64, ownerID string, newParentID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.folders[id]
	if !ok || folder.OwnerID != ownerID || folder.IsDeleted() {
		return domain.ErrNotFound
	}
	folder.ParentID = newParentID
	return nil
}

func (f *fakeFolderStore) SoftDeleteTree(ctx context.Context, id int64, ownerID string, deletedAt time.Time) error {
	f.mu.Lock()
	root, ok := f.folders[id]
	if !ok || root.OwnerID != ownerID || root.IsDeleted() {
		f.mu.Unlock()
		return domain.ErrNotFound
	}

	subtree := map[int64]bool{id: true}
	queue := []int64{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, folder := range f.folders {
			if folder.ParentID != nil && *folder.ParentID == current && !folder.IsDeleted() && !subtree[folder.ID] {
				subtree[folder.ID] = true
				queue = append(queue, folder.ID)
			}
		}
	}

	for folderID := range subtree {
		ts := deletedAt
		f.folders[folderID].DeletedAt = &ts
	}
	f.mu.Unlock()

	f.files.mu.Lock()
	for _, file := range f.files.files {
		if file.OwnerID == ownerID && !file.IsDeleted() && file.FolderID != nil && subtree[*file.FolderID] {
			ts := deletedAt
			file.DeletedAt = &ts
		}
	}
	f.files.mu.Unlock()
	return nil
}

func (f *fakeFolderStore) Restore(ctx context.Context, id int64, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.folders[id]
	if !ok || folder.OwnerID != ownerID || !folder.IsDeleted() {
		return domain.ErrNotInTrash
	}
	folder.DeletedAt = nil
	return nil
}

func (f *fakeFolderStore) DeleteRow(ctx context.Context, id int64, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.folders[id]
	if !ok || folder.OwnerID != ownerID || !folder.IsDeleted() {
		return domain.ErrNotInTrash
	}
	delete(f.folders, id)
	return nil
}

func (f *fakeFolderStore) CheckFolderExistsInParent(ctx context.Context, parentID *int64, ownerID, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, folder := range f.folders {
		if folder.OwnerID == ownerID && !folder.IsDeleted() && folder.Name == name && sameFolder(folder.ParentID, parentID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFolderStore) DeleteTrashedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var purged int64
	for id, folder := range f.folders {
		if folder.IsDeleted() && folder.DeletedAt.Before(cutoff) {
			delete(f.folders, id)
			purged++
		}
	}
	return purged, nil
}

type fakeMediaStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.MediaItem
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{items: make(map[uuid.UUID]*domain.MediaItem)}
}

func (f *fakeMediaStore) Create(ctx context.Context, item *domain.MediaItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	stored := *item
	f.items[item.UUID] = &stored
	return nil
}

func (f *fakeMediaStore) GetByUUID(ctx context.Context, itemUUID uuid.UUID, ownerID string) (*domain.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemUUID]
	if !ok || item.OwnerID != ownerID || item.IsDeleted() {
		return nil, domain.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeMediaStore) GetAnyByUUID(ctx context.Context, itemUUID uuid.UUID, ownerID string) (*domain.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemUUID]
	if !ok || item.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeMediaStore) SoftDelete(ctx context.Context, itemUUID uuid.UUID, ownerID string, deletedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemUUID]
	if !ok || item.OwnerID != ownerID || item.IsDeleted() {
		return domain.ErrNotFound
	}
	item.DeletedAt = &deletedAt
	return nil
}

func (f *fakeMediaStore) Restore(ctx context.Context, itemUUID uuid.UUID, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemUUID]
	if !ok || item.OwnerID != ownerID || !item.IsDeleted() {
		return domain.ErrNotInTrash
	}
	item.DeletedAt = nil
	return nil
}

func (f *fakeMediaStore) DeleteRow(ctx context.Context, itemUUID uuid.UUID, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemUUID]
	if !ok || item.OwnerID != ownerID || !item.IsDeleted() {
		return domain.ErrNotInTrash
	}
	delete(f.items, itemUUID)
	return nil
}

func (f *fakeMediaStore) DeleteAny(ctx context.Context, itemUUID uuid.UUID, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, itemUUID)
	return nil
}

func (f *fakeMediaStore) ListActiveByCategory(ctx context.Context, ownerID, category string) ([]domain.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.MediaItem
	for _, item := range f.items {
		if item.OwnerID == ownerID && !item.IsDeleted() && item.Category == category {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeMediaStore) ListTrashed(ctx context.Context, ownerID string) ([]domain.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.MediaItem
	for _, item := range f.items {
		if item.OwnerID == ownerID && item.IsDeleted() {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeletedAt.After(*out[j].DeletedAt) })
	return out, nil
}

func (f *fakeMediaStore) ListTrashedBefore(ctx context.Context, cutoff time.Time) ([]domain.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.MediaItem
	for _, item := range f.items {
		if item.IsDeleted() && item.DeletedAt.Before(cutoff) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeMediaStore) SizeByCategory(ctx context.Context, ownerID string) ([]domain.CategoryUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	totals := make(map[string]*domain.CategoryUsage)
	for _, item := range f.items {
		if item.OwnerID != ownerID || item.IsDeleted() {
			continue
		}
		usage, ok := totals[item.Category]
		if !ok {
			usage = &domain.CategoryUsage{Category: item.Category}
			totals[item.Category] = usage
		}
		usage.TotalBytes += item.SizeBytes
		usage.ItemsCount++
	}
	var out []domain.CategoryUsage
	for _, usage := range totals {
		out = append(out, *usage)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalBytes > out[j].TotalBytes })
	return out, nil
}

func (f *fakeMediaStore) ListLargest(ctx context.Context, ownerID string, limit int) ([]domain.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.MediaItem
	for _, item := range f.items {
		if item.OwnerID == ownerID && !item.IsDeleted() {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SizeBytes > out[j].SizeBytes })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMediaStore) ListLowValue(ctx context.Context, ownerID string, minDimension int, minConfidence float64) ([]domain.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.MediaItem
	for _, item := range f.items {
		if item.OwnerID != ownerID || item.IsDeleted() {
			continue
		}
		lowRes := item.Width < minDimension || item.Height < minDimension
		lowConfidence := item.Confidence != nil && *item.Confidence < minConfidence
		if lowRes || lowConfidence {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SizeBytes > out[j].SizeBytes })
	return out, nil
}

func (f *fakeMediaStore) OldestCreatedAt(ctx context.Context, ownerID string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var oldest *time.Time
	for _, item := range f.items {
		if item.OwnerID != ownerID {
			continue
		}
		created := item.CreatedAt
		if oldest == nil || created.Before(*oldest) {
			oldest = &created
		}
	}
	return oldest, nil
}

// fakeTrashStore строит корзину диска из фейковых папок и файлов так же,
// как это делает SQL-запрос.
type fakeTrashStore struct {
	folders *fakeFolderStore
	files   *fakeFileStore
}

func (f *fakeTrashStore) GetTrashItems(ctx context.Context, ownerID string) ([]domain.TrashItem, error) {
	var items []domain.TrashItem

	f.folders.mu.Lock()
	deletedFolders := make(map[int64]domain.Folder)
	for _, folder := range f.folders.folders {
		if folder.OwnerID == ownerID && folder.IsDeleted() {
			deletedFolders[folder.ID] = *folder
		}
	}
	f.folders.mu.Unlock()

	folderSizes := make(map[int64]int64)
	f.files.mu.Lock()
	for _, file := range f.files.files {
		if file.FolderID != nil {
			if _, ok := deletedFolders[*file.FolderID]; ok {
				folderSizes[*file.FolderID] += file.SizeBytes
			}
		}
		if file.OwnerID == ownerID && file.IsDeleted() {
			mime := file.MIMEType
			items = append(items, domain.TrashItem{
				ID:        file.UUID.String(),
				Name:      file.Name,
				Type:      "file",
				SizeBytes: file.SizeBytes,
				MIMEType:  &mime,
				DeletedAt: *file.DeletedAt,
			})
		}
	}
	f.files.mu.Unlock()

	for id, folder := range deletedFolders {
		items = append(items, domain.TrashItem{
			ID:        strconv.FormatInt(id, 10),
			Name:      folder.Name,
			Type:      "folder",
			SizeBytes: folderSizes[id],
			DeletedAt: *folder.DeletedAt,
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].DeletedAt.After(items[j].DeletedAt) })
	return items, nil
}

type fakeObject struct {
	io.ReadCloser
	size int64
}

func (o *fakeObject) ContentLength() int64 { return o.size }
func (o *fakeObject) ContentType() string  { return "application/octet-stream" }

// fakeBlobStore имитирует байтовое хранилище с управляемыми отказами.
type fakeBlobStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failUpload bool
	failDelete bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) UploadBytes(key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload {
		return io.ErrUnexpectedEOF
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	f.objects[key] = stored
	return nil
}

func (f *fakeBlobStore) GetObject(ctx context.Context, key string) (s3.S3Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, s3.ErrObjectNotFound
	}
	return &fakeObject{
		ReadCloser: io.NopCloser(bytes.NewReader(data)),
		size:       int64(len(data)),
	}, nil
}

func (f *fakeBlobStore) DeleteObject(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return io.ErrUnexpectedEOF
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobStore) ObjectExists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeBlobStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
