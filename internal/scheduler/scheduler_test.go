package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"admincms/internal/service"
	"admincms/pkg/logger"
)

type fakePosts struct {
	service.PostService
	before []time.Time
}

func (f *fakePosts) PurgeTrashed(_ context.Context, before time.Time) (int64, error) {
	f.before = append(f.before, before)
	return 2, nil
}

type fakeAds struct {
	service.AdvertisementService
	calls int
	err   error
}

func (f *fakeAds) ExpireFinished(context.Context) (int64, error) {
	f.calls++
	return 1, f.err
}

func TestPurgeTrashUsesRetention(t *testing.T) {
	posts := &fakePosts{}
	s := NewScheduler(posts, &fakeAds{}, 7, logger.NewNop())
	now := time.Date(2026, 10, 17, 3, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.PurgeTrash(context.Background())

	require.Len(t, posts.before, 1)
	assert.Equal(t, now.AddDate(0, 0, -7), posts.before[0])
}

func TestDefaultRetention(t *testing.T) {
	s := NewScheduler(&fakePosts{}, &fakeAds{}, 0, logger.NewNop())
	assert.Equal(t, 30*24*time.Hour, s.retention)
}

func TestExpireAdsSurvivesErrors(t *testing.T) {
	ads := &fakeAds{err: errors.New("db down")}
	s := NewScheduler(&fakePosts{}, ads, 30, logger.NewNop())

	s.ExpireAds(context.Background())
	ads.err = nil
	s.ExpireAds(context.Background())

	assert.Equal(t, 2, ads.calls)
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewScheduler(&fakePosts{}, &fakeAds{}, 30, logger.NewNop())
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
