package notifications_test

import (
	"testing"

	"github.com/USSTM/courier-console/internal/notifications"
	"github.com/USSTM/courier-console/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func ids(items []notifications.Notification) []string {
	out := make([]string, len(items))
	for i, n := range items {
		out[i] = n.ID
	}
	return out
}

func TestMerge(t *testing.T) {
	t.Run("live copy wins over fetched duplicate", func(t *testing.T) {
		live := []notifications.Notification{testutil.Notification("a")}
		fetched := []notifications.Notification{testutil.ReadNotification("a"), testutil.Notification("b")}

		merged := notifications.Merge(live, fetched)

		assert.Equal(t, []notifications.Notification{testutil.Notification("a"), testutil.Notification("b")}, merged)
		assert.False(t, merged[0].Read)
	})

	t.Run("disjoint sets keep live then fetched order", func(t *testing.T) {
		merged := notifications.Merge(
			[]notifications.Notification{testutil.Notification("x")},
			[]notifications.Notification{testutil.Notification("y")},
		)
		assert.Equal(t, []string{"x", "y"}, ids(merged))
	})

	t.Run("no timestamp re-sort", func(t *testing.T) {
		older := testutil.Notification("old")
		newer := testutil.Notification("new")
		newer.CreatedAt = older.CreatedAt.Add(1)

		merged := notifications.Merge(
			[]notifications.Notification{older},
			[]notifications.Notification{newer},
		)
		assert.Equal(t, []string{"old", "new"}, ids(merged))
	})

	t.Run("duplicates inside fetched collapse to first", func(t *testing.T) {
		first := testutil.Notification("b")
		second := testutil.ReadNotification("b")

		merged := notifications.Merge(nil, []notifications.Notification{first, testutil.Notification("c"), second})
		assert.Equal(t, []string{"b", "c"}, ids(merged))
		assert.False(t, merged[0].Read)
	})

	t.Run("empty inputs", func(t *testing.T) {
		merged := notifications.Merge(nil, nil)
		assert.NotNil(t, merged)
		assert.Empty(t, merged)
	})

	t.Run("pure and repeatable", func(t *testing.T) {
		live := []notifications.Notification{testutil.Notification("a")}
		fetched := []notifications.Notification{testutil.ReadNotification("a"), testutil.Notification("b")}
		liveBefore := append([]notifications.Notification(nil), live...)
		fetchedBefore := append([]notifications.Notification(nil), fetched...)

		first := notifications.Merge(live, fetched)
		second := notifications.Merge(live, fetched)

		assert.Equal(t, first, second)
		assert.Equal(t, liveBefore, live)
		assert.Equal(t, fetchedBefore, fetched)

		first[0].Read = true
		assert.False(t, live[0].Read)
		assert.False(t, second[0].Read)
	})
}
