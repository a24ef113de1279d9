package github

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stamped struct {
	id      int
	updated time.Time
}

func stampedUpdatedAt(s stamped) time.Time { return s.updated }

// pagesOf splits a descending series into pages of size n followed by an
// empty page, counting requests.
func pagesOf(items []stamped, n int, calls *int) PageFunc[stamped] {
	return func(_ context.Context, page int) ([]stamped, error) {
		*calls++
		start := (page - 1) * n
		if start >= len(items) {
			return nil, nil
		}
		end := start + n
		if end > len(items) {
			end = len(items)
		}
		return items[start:end], nil
	}
}

func descending(base time.Time, count int) []stamped {
	items := make([]stamped, count)
	for i := range items {
		items[i] = stamped{id: i, updated: base.Add(-time.Duration(i) * time.Hour)}
	}
	return items
}

func TestFetchSince_EarlyStopMidSecondPage(t *testing.T) {
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	items := descending(base, 12)
	// items 0..6 are fresh, item 7 onwards are stale; page 2 holds 4..7.
	since := items[7].updated.Add(30 * time.Minute)

	calls := 0
	got, err := FetchSince(context.Background(), pagesOf(items, 4, &calls), stampedUpdatedAt, since)
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "page 3 must never be requested")
	require.Len(t, got, 7)
	for i, item := range got {
		assert.Equal(t, i, item.id)
	}
}

func TestFetchSince_StrictBoundary(t *testing.T) {
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	items := descending(base, 5)

	calls := 0
	got, err := FetchSince(context.Background(), pagesOf(items, 10, &calls), stampedUpdatedAt, items[2].updated)
	require.NoError(t, err)

	assert.Len(t, got, 2, "an item updated exactly at since is excluded")
	assert.Equal(t, 1, calls)
}

func TestFetchSince_AllFreshStopsOnEmptyPage(t *testing.T) {
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	items := descending(base, 6)

	calls := 0
	got, err := FetchSince(context.Background(), pagesOf(items, 4, &calls), stampedUpdatedAt, base.Add(-72*time.Hour))
	require.NoError(t, err)

	assert.Len(t, got, 6)
	assert.Equal(t, 3, calls)
}

func TestFetchSince_Idempotent(t *testing.T) {
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	items := descending(base, 9)
	since := base.Add(-5 * time.Hour)

	var calls int
	first, err := FetchSince(context.Background(), pagesOf(items, 3, &calls), stampedUpdatedAt, since)
	require.NoError(t, err)
	second, err := FetchSince(context.Background(), pagesOf(items, 3, &calls), stampedUpdatedAt, since)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFetchSince_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(_ context.Context, page int) ([]stamped, error) {
		if page == 2 {
			return nil, boom
		}
		return descending(time.Now(), 2), nil
	}

	got, err := FetchSince(context.Background(), fetch, stampedUpdatedAt, time.Now().Add(-time.Hour*24))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}
