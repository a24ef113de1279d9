package github

import (
	"context"
	"time"
)

// PageFunc fetches one page of results. Pages are numbered from 1 and must be
// sorted by last update, newest first.
type PageFunc[T any] func(ctx context.Context, page int) ([]T, error)

// FetchSince walks pages until it meets the first item not updated strictly
// after since, or an empty page. Items after the first stale one are never
// inspected, on that page or any later one.
func FetchSince[T any](ctx context.Context, fetchPage PageFunc[T], updatedAt func(T) time.Time, since time.Time) ([]T, error) {
	var result []T
	for page := 1; ; page++ {
		items, err := fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return result, nil
		}

		for _, item := range items {
			if !updatedAt(item).After(since) {
				return result, nil
			}
			result = append(result, item)
		}
	}
}
