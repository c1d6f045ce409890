package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratodrive/internal/domain"
)

// failingQuotaStore роняет чтение квоты одного домена.
type failingQuotaStore struct {
	*fakeQuotaStore
	failDomain string
}

func (f *failingQuotaStore) GetQuota(ctx context.Context, ownerID, storageDomain string) (*domain.StorageQuota, error) {
	if storageDomain == f.failDomain {
		return nil, errors.New("connection refused")
	}
	return f.fakeQuotaStore.GetQuota(ctx, ownerID, storageDomain)
}

type stubMailReporter struct {
	used int64
	err  error
}

func (s stubMailReporter) UsedBytes(ctx context.Context, ownerID string) (int64, error) {
	return s.used, s.err
}

type usageFixture struct {
	quotas *fakeQuotaStore
	media  *fakeMediaStore
}

func newUsageFixture() *usageFixture {
	return &usageFixture{
		quotas: newFakeQuotaStore(),
		media:  newFakeMediaStore(),
	}
}

func (f *usageFixture) build(quotas QuotaStore, mail ExternalUsageReporter) *UsageService {
	return NewUsageService(quotas, f.media, mail)
}

func TestCombinedUsageSumsDomains(t *testing.T) {
	f := newUsageFixture()
	f.quotas.seed("user-1", domain.DomainDrive, 1000, 3)
	f.quotas.seed("user-1", domain.DomainGallery, 500, 2)

	svc := f.build(f.quotas, stubMailReporter{used: 250})

	usage, err := svc.GetCombinedUsage(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1750), usage.TotalUsedBytes)
	require.Len(t, usage.Breakdown, 3)
	assert.Equal(t, domain.DomainDrive, usage.Breakdown[0].Domain)
	assert.Equal(t, domain.DomainGallery, usage.Breakdown[1].Domain)
	assert.Equal(t, domain.DomainMail, usage.Breakdown[2].Domain)
	assert.Equal(t, int64(250), usage.Breakdown[2].UsedBytes)
}

func TestCombinedUsageTakesHigherPriorityPlan(t *testing.T) {
	f := newUsageFixture()
	require.NoError(t, f.quotas.SetPlan(context.Background(), "user-1", domain.DomainDrive, domain.PlanPro))
	// Галерея остаётся на бесплатном тарифе.
	f.quotas.seed("user-1", domain.DomainGallery, 0, 0)

	svc := f.build(f.quotas, stubMailReporter{})

	usage, err := svc.GetCombinedUsage(context.Background(), "user-1")
	require.NoError(t, err)

	pro := domain.PlanByName(domain.PlanPro)
	assert.Equal(t, pro.Name, usage.EffectivePlan)
	assert.Equal(t, pro.StorageBytes, usage.TotalLimitBytes, "общий потолок задаёт старший тариф")
}

func TestCombinedUsageFailOpen(t *testing.T) {
	f := newUsageFixture()
	f.quotas.seed("user-1", domain.DomainDrive, 2048, 1)

	svc := f.build(&failingQuotaStore{fakeQuotaStore: f.quotas, failDomain: domain.DomainGallery}, stubMailReporter{})

	usage, err := svc.GetCombinedUsage(context.Background(), "user-1")
	require.NoError(t, err, "недоступный домен не роняет отчёт")

	require.Len(t, usage.Breakdown, 3)
	assert.False(t, usage.Breakdown[0].Degraded)
	assert.True(t, usage.Breakdown[1].Degraded)
	assert.Equal(t, int64(0), usage.Breakdown[1].UsedBytes)
	assert.Equal(t, int64(2048), usage.TotalUsedBytes)
}

func TestCombinedUsageMailFailureDegrades(t *testing.T) {
	f := newUsageFixture()

	svc := f.build(f.quotas, stubMailReporter{err: errors.New("mail service down")})

	usage, err := svc.GetCombinedUsage(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, usage.Breakdown[2].Degraded)
}

func TestCombinedUsageReclaimable(t *testing.T) {
	f := newUsageFixture()
	ctx := context.Background()

	mediaSvc := NewMediaService(f.media, f.quotas, newFakeBlobStore())

	photo, err := mediaSvc.UploadMedia(ctx, domain.MediaUpload{
		Filename: "vacation.jpg",
		OwnerID:  "user-1",
		Category: "photos",
		Width:    4000,
		Height:   3000,
		Data:     make([]byte, 500),
	})
	require.NoError(t, err)

	// Миниатюрный элемент попадает и в крупнейшие, и в малоценные.
	tiny, err := mediaSvc.UploadMedia(ctx, domain.MediaUpload{
		Filename: "icon.png",
		OwnerID:  "user-1",
		Category: "screenshots",
		Width:    32,
		Height:   32,
		Data:     make([]byte, 100),
	})
	require.NoError(t, err)

	svc := f.build(f.quotas, stubMailReporter{})

	usage, err := svc.GetCombinedUsage(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, photo.SizeBytes+2*tiny.SizeBytes, usage.ReclaimableBytes,
		"элемент из обоих списков считается дважды")
}

func TestCombinedUsagePercent(t *testing.T) {
	f := newUsageFixture()
	free := domain.PlanByName(domain.PlanFree)
	f.quotas.seed("user-1", domain.DomainDrive, free.StorageBytes/2, 1)

	svc := f.build(f.quotas, stubMailReporter{})

	usage, err := svc.GetCombinedUsage(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 50, usage.UsedPercent)
}

func TestCombinedUsageIsFresh(t *testing.T) {
	f := newUsageFixture()
	svc := f.build(f.quotas, stubMailReporter{})
	ctx := context.Background()

	before, err := svc.GetCombinedUsage(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, int64(0), before.TotalUsedBytes)

	f.quotas.seed("user-1", domain.DomainDrive, 4096, 1)
	time.Sleep(time.Millisecond)

	after, err := svc.GetCombinedUsage(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4096), after.TotalUsedBytes, "отчёт каждый раз считается заново")
}
