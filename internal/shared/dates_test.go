package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/filaflow/filaflow/internal/shared"
	_ "github.com/filaflow/filaflow/testing"
)

func TestTodayBounds(t *testing.T) {
	now := time.Date(2025, time.March, 14, 15, 9, 26, 0, time.Local)
	day := shared.Today(now)

	require.Equal(t, time.Date(2025, time.March, 14, 0, 0, 0, 0, time.Local), day.Start)
	require.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.Local), day.End)

	require.True(t, day.Contains(now))
	require.True(t, day.Contains(day.Start))
	require.False(t, day.Contains(day.End))
	require.False(t, day.Contains(day.Start.Add(-time.Nanosecond)))
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2025, time.March, 14, 0, 0, 1, 0, time.Local)
	night := time.Date(2025, time.March, 14, 23, 59, 59, 0, time.Local)
	nextDay := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.Local)

	require.True(t, shared.SameDay(morning, night))
	require.False(t, shared.SameDay(night, nextDay))
}

func TestUnityDayLockKey(t *testing.T) {
	day := time.Date(2025, time.March, 14, 10, 0, 0, 0, time.Local)
	require.Equal(t, "unity:uni-1:day:2025-03-14:admission", shared.UnityDayLockKey("uni-1", day))

	// Different unities on the same day never share a lock key.
	require.NotEqual(t, shared.UnityDayLockKey("uni-1", day), shared.UnityDayLockKey("uni-2", day))
}
