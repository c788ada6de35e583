package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDashboard(t *testing.T, kv KVStore) *Dashboard {
	t.Helper()
	d, err := NewDashboard(kv, DefaultCatalog(), testUser, zap.NewNop(), NewMetrics())
	require.NoError(t, err)
	require.NoError(t, d.Boot(context.Background(), false))
	return d
}

func TestDashboardScenario(t *testing.T) {
	ctx := context.Background()
	d := newTestDashboard(t, NewMemoryStore())

	snap := d.Snapshot()
	assert.Equal(t, 0, snap.Completed)
	assert.Equal(t, 5, snap.Total)
	assert.Equal(t, 0, snap.Percent)
	assert.InDelta(t, 282.7, snap.RingOffset, 0.05)

	_, err := d.ToggleLesson(ctx, 1)
	require.NoError(t, err)
	snap, err = d.ToggleLesson(ctx, 3)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Completed)
	assert.Equal(t, 40, snap.Percent)
	assert.InDelta(t, 169.62, snap.RingOffset, 0.05)
	assert.Empty(t, snap.Warning)
}

func TestDashboardUnknownLesson(t *testing.T) {
	d := newTestDashboard(t, NewMemoryStore())
	_, err := d.ToggleLesson(context.Background(), 42)
	assert.ErrorIs(t, err, ErrLessonNotFound)
	assert.Empty(t, d.ExportProgress())
}

func TestDashboardRoleToggleLeavesProgressAlone(t *testing.T) {
	ctx := context.Background()
	d := newTestDashboard(t, NewMemoryStore())
	_, err := d.ToggleLesson(ctx, 2)
	require.NoError(t, err)
	before := d.Snapshot()
	progress := d.ExportProgress()

	snap := d.ToggleRole()
	assert.Equal(t, ViewTeacher, snap.View)
	page := d.Page()
	assert.True(t, page.StudentHidden)
	assert.False(t, page.TeacherHidden)
	assert.Equal(t, "Teacher", page.RoleLabel)
	assert.Equal(t, "Switch to Student View", page.ToggleCaption)

	snap = d.ToggleRole()
	assert.Equal(t, ViewStudent, snap.View)
	assert.Equal(t, before, snap)
	assert.Equal(t, progress, d.ExportProgress())
}

func TestDashboardRestartRestoresProgressButNotView(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()

	d := newTestDashboard(t, kv)
	for _, id := range []int{1, 2, 4} {
		_, err := d.ToggleLesson(ctx, id)
		require.NoError(t, err)
	}
	d.ToggleRole()
	d.ToggleTheme(ctx)

	restarted := newTestDashboard(t, kv)
	snap := restarted.Snapshot()
	assert.Equal(t, 3, snap.Completed)
	assert.Equal(t, 60, snap.Percent)
	assert.Equal(t, ThemeDark, snap.Theme)
	assert.Equal(t, ViewStudent, snap.View)
}

func TestDashboardStorageFailureIsAWarning(t *testing.T) {
	ctx := context.Background()
	kv := newFlakyStore()
	d := newTestDashboard(t, kv)

	kv.setFailing(false, true)
	snap, err := d.ToggleLesson(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Completed)
	assert.Equal(t, warnProgressNotSaved, snap.Warning)

	themed := d.ToggleTheme(ctx)
	assert.Equal(t, ThemeDark, themed.Theme)
	assert.Equal(t, warnThemeNotSaved, themed.Warning)

	// lesson rendering is unaffected by the theme failure
	lessons := d.Lessons()
	assert.True(t, lessons[4].Completed)

	// warnings are shown once
	page := d.Page()
	assert.ElementsMatch(t, []string{warnProgressNotSaved, warnThemeNotSaved}, page.Warnings)
	assert.Empty(t, d.Page().Warnings)
}

func TestDashboardBootSurvivesBrokenStorage(t *testing.T) {
	kv := newFlakyStore()
	require.NoError(t, kv.Set(context.Background(), progressKeyFor(testUser), `{"1":true`))
	kv.setFailing(false, true)

	d, err := NewDashboard(kv, DefaultCatalog(), testUser, zap.NewNop(), nil)
	require.NoError(t, err)
	require.NoError(t, d.Boot(context.Background(), true))

	snap := d.Snapshot()
	assert.Equal(t, 0, snap.Completed)
	assert.Equal(t, ThemeDark, snap.Theme)
	assert.Equal(t, []string{warnThemeNotSaved}, d.Page().Warnings)
}

func TestDashboardRestoreProgress(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	d := newTestDashboard(t, kv)

	snap := d.RestoreProgress(ctx, CompletionMap{"1": true, "2": true, "3": true, "4": true, "5": true})
	assert.Equal(t, 100, snap.Percent)
	assert.InDelta(t, 0, snap.RingOffset, 1e-9)

	restarted := newTestDashboard(t, kv)
	assert.Equal(t, 5, restarted.Snapshot().Completed)
}

func TestDashboardResetProgress(t *testing.T) {
	ctx := context.Background()
	kv := newFlakyStore()
	d := newTestDashboard(t, kv)
	for _, id := range []int{1, 3} {
		_, err := d.ToggleLesson(ctx, id)
		require.NoError(t, err)
	}

	snap := d.ResetProgress(ctx)
	assert.Equal(t, 0, snap.Completed)
	assert.Empty(t, snap.Warning)
	assert.Equal(t, 0, newTestDashboard(t, kv).Snapshot().Completed)

	_, err := d.ToggleLesson(ctx, 2)
	require.NoError(t, err)
	kv.setFailing(false, true)
	snap = d.ResetProgress(ctx)
	assert.Equal(t, 0, snap.Completed, "memory is cleared even when the write fails")
	assert.Equal(t, warnProgressNotSaved, snap.Warning)
}

func TestDashboardRestoreCountsKeysOutsideCatalog(t *testing.T) {
	d := newTestDashboard(t, NewMemoryStore())

	snap := d.RestoreProgress(context.Background(), CompletionMap{
		"1": true, "2": true, "3": true, "4": true, "5": true, "99": true, "x": true,
	})
	assert.Equal(t, 7, snap.Completed)
	assert.Equal(t, 140, snap.Percent)
	assert.InDelta(t, -113.10, snap.RingOffset, 0.01)
}
