package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admincms/internal/fillable"
	"admincms/internal/model"
	"admincms/internal/query"
	"admincms/internal/testutil"
)

func (f *fixture) zone(t *testing.T, slug string) int64 {
	t.Helper()
	z, err := f.zones.Create(ctx, map[string]interface{}{"name": slug, "slug": slug, "is_active": true}, f.admin)
	require.NoError(t, err)
	return z.ID
}

func (f *fixture) ad(t *testing.T, zoneID int64, title, status string, start time.Time, end *time.Time) *model.Advertisement {
	t.Helper()
	attrs := map[string]interface{}{
		"ad_zone_id": zoneID, "title": title, "status": status, "start_time": start, "priority": 1,
	}
	if end != nil {
		attrs["end_time"] = *end
	}
	a, err := f.ads.Create(ctx, attrs, f.editor)
	require.NoError(t, err)
	return a
}

func TestAdvertisementCreateValidation(t *testing.T) {
	f := newFixture(t)
	zone := f.zone(t, "home")

	_, err := f.ads.Create(ctx, map[string]interface{}{
		"ad_zone_id": int64(999), "title": "x", "status": model.AdStatusActive, "start_time": testutil.Now,
	}, f.editor)
	fields, ok := ValidationFields(err)
	require.True(t, ok)
	assert.Contains(t, fields, "ad_zone_id")

	_, err = f.ads.Create(ctx, map[string]interface{}{
		"ad_zone_id": zone, "title": "x", "status": model.AdStatusActive,
		"start_time": testutil.Now, "end_time": testutil.Now.Add(-time.Hour),
	}, f.editor)
	fields, ok = ValidationFields(err)
	require.True(t, ok)
	assert.Contains(t, fields, "end_time")

	a, err := f.ads.Create(ctx, map[string]interface{}{
		"ad_zone_id": zone, "title": "ok", "status": model.AdStatusInactive,
		"start_time": testutil.Now, "created_by": f.other.UserID,
	}, f.editor)
	require.NoError(t, err)
	assert.Equal(t, f.editor.UserID, a.CreatedBy)

	_, err = f.ads.Update(ctx, a.ID, map[string]interface{}{"end_time": testutil.Now.Add(-time.Minute)}, f.editor)
	_, ok = ValidationFields(err)
	assert.True(t, ok)
}

func TestAdvertisementOwnership(t *testing.T) {
	f := newFixture(t)
	zone := f.zone(t, "home")
	a := f.ad(t, zone, "Mine", model.AdStatusActive, testutil.Now, nil)

	_, err := f.ads.Get(ctx, a.ID, f.other)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.ads.Delete(ctx, a.ID, f.other), ErrForbidden)
	_, err = f.ads.ToggleStatus(ctx, a.ID, f.other)
	assert.ErrorIs(t, err, ErrForbidden)

	page, err := f.ads.List(ctx, query.Params{}, f.other)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = f.ads.List(ctx, query.Params{}, f.editor)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Running)

	require.NoError(t, f.ads.Delete(ctx, a.ID, f.admin))
}

func TestAdvertisementRunningForZone(t *testing.T) {
	f := newFixture(t)
	zone := f.zone(t, "home")
	end := testutil.Now.Add(time.Hour)
	past := testutil.Now.Add(-time.Minute)
	running := f.ad(t, zone, "Running", model.AdStatusActive, testutil.Now.Add(-time.Hour), &end)
	f.ad(t, zone, "Paused", model.AdStatusInactive, testutil.Now.Add(-time.Hour), nil)
	f.ad(t, zone, "Future", model.AdStatusActive, testutil.Now.Add(time.Hour), nil)
	finished := f.ad(t, zone, "Finished", model.AdStatusActive, testutil.Now.Add(-2*time.Hour), &past)

	ads, err := f.ads.RunningForZone(ctx, "home")
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, running.ID, ads[0].ID)
	assert.True(t, ads[0].Running)
	assert.True(t, f.mr.Exists("test:zones:home:ads"))

	page, err := f.ads.List(ctx, query.Params{Filters: map[string]string{"running": "0"}}, f.editor)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)

	n, err := f.ads.ExpireFinished(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.False(t, f.mr.Exists("test:zones:home:ads"))

	got, err := f.ads.Get(ctx, finished.ID, f.editor)
	require.NoError(t, err)
	assert.Equal(t, model.AdStatusExpired, got.Status)

	_, err = f.ads.ToggleStatus(ctx, finished.ID, f.editor)
	_, ok := ValidationFields(err)
	assert.True(t, ok)

	toggled, err := f.ads.ToggleStatus(ctx, running.ID, f.editor)
	require.NoError(t, err)
	assert.Equal(t, model.AdStatusInactive, toggled.Status)
	ads, err = f.ads.RunningForZone(ctx, "home")
	require.NoError(t, err)
	assert.Empty(t, ads)

	_, err = f.ads.RunningForZone(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdZoneLifecycle(t *testing.T) {
	f := newFixture(t)
	zone := f.zone(t, "home")

	_, err := f.zones.Create(ctx, map[string]interface{}{"name": "Home", "slug": "home"}, f.admin)
	_, ok := ValidationFields(err)
	assert.True(t, ok)

	a := f.ad(t, zone, "Ad", model.AdStatusActive, testutil.Now.Add(-time.Hour), nil)
	_, ok = ValidationFields(f.zones.Delete(ctx, zone))
	assert.True(t, ok)

	z, err := f.zones.ToggleStatus(ctx, zone)
	require.NoError(t, err)
	assert.False(t, z.IsActive)
	_, err = f.ads.RunningForZone(ctx, "home")
	assert.ErrorIs(t, err, ErrNotFound)

	z, err = f.zones.Update(ctx, zone, map[string]interface{}{"width": 300, "is_active": true}, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 300, z.Width)
	assert.True(t, z.IsActive)

	page, err := f.zones.List(ctx, query.Params{Filters: map[string]string{"active": "1"}}, f.admin)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	require.NoError(t, f.ads.Delete(ctx, a.ID, f.editor))
	require.NoError(t, f.zones.Delete(ctx, zone))
	assert.ErrorIs(t, f.zones.Delete(ctx, zone), ErrNotFound)
}

func TestAdvertisementFormOptions(t *testing.T) {
	f := newFixture(t)
	f.zone(t, "home")

	opts, err := f.ads.FormOptions(ctx, fillable.Create, f.editor)
	require.NoError(t, err)
	require.Len(t, opts.Zones, 1)
	assert.Equal(t, "home", opts.Zones[0].Slug)
	assert.Equal(t, model.AdStatuses, opts.Statuses)
	assert.NotContains(t, opts.Fields, "created_by")

	assert.Contains(t, f.zones.FormOptions(fillable.Create, f.admin).Fields, "slug")
}

func TestAdvertisementAssignedOwnerMustExist(t *testing.T) {
	f := newFixture(t)
	zone := f.zone(t, "home")

	_, err := f.ads.Create(ctx, map[string]interface{}{
		"ad_zone_id": zone, "title": "x", "status": model.AdStatusActive,
		"start_time": testutil.Now, "created_by": int64(999),
	}, f.admin)
	fields, ok := ValidationFields(err)
	require.True(t, ok)
	assert.Contains(t, fields, "created_by")
	assert.Equal(t, 0, testutil.Count(t, f.db, "SELECT COUNT(*) FROM advertisements"))

	a := f.ad(t, zone, "mine", model.AdStatusInactive, testutil.Now, nil)
	_, err = f.ads.Update(ctx, a.ID, map[string]interface{}{"created_by": int64(999)}, f.admin)
	fields, ok = ValidationFields(err)
	require.True(t, ok)
	assert.Contains(t, fields, "created_by")
}

func TestRunningForZoneStartsCachedScheduledAds(t *testing.T) {
	f := newFixture(t)
	zone := f.zone(t, "home")
	start := testutil.Now.Add(10 * time.Minute)
	end := start.Add(time.Hour)
	running := f.ad(t, zone, "Running", model.AdStatusActive, testutil.Now.Add(-time.Hour), &end)
	upcoming := f.ad(t, zone, "Upcoming", model.AdStatusActive, start, nil)

	ads, err := f.ads.RunningForZone(ctx, "home")
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, running.ID, ads[0].ID)
	require.True(t, f.mr.Exists("test:zones:home:ads"))

	f.now = start
	ads, err = f.ads.RunningForZone(ctx, "home")
	require.NoError(t, err)
	require.Len(t, ads, 2)
	assert.Equal(t, running.ID, ads[0].ID)
	assert.Equal(t, upcoming.ID, ads[1].ID)

	f.now = end
	ads, err = f.ads.RunningForZone(ctx, "home")
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, upcoming.ID, ads[0].ID)
}
