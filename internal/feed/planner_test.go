package feed

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circleboard/feed/internal/domain"
)

// fakeFeedStore serves pages from an in-memory post slice with the same
// ordering and seek semantics the SQL layer promises: sort key
// descending, post ID descending, rows strictly after the cursor row.
type fakeFeedStore struct {
	posts []domain.Post

	lastQuery domain.FeedQuery
	err       error
}

func (f *fakeFeedStore) SelectFeedPage(_ context.Context, q domain.FeedQuery) ([]domain.Post, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}

	key := func(p domain.Post) int64 {
		switch q.Sort {
		case domain.SortNew:
			return p.CreatedAt.UnixNano()
		case domain.SortControversial:
			return p.CommentCount
		default:
			return p.VoteTotal
		}
	}

	matched := make([]domain.Post, 0, len(f.posts))
	for _, p := range f.posts {
		if q.Sort == domain.SortHot && !p.CreatedAt.After(domain.HotCutoff(q.Now)) {
			continue
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		if key(matched[i]) != key(matched[j]) {
			return key(matched[i]) > key(matched[j])
		}
		return matched[i].ID > matched[j].ID
	})

	page := make([]domain.Post, 0, q.Limit)
	for _, p := range matched {
		if q.Cursor != nil {
			ck, cid := cursorKey(q.Cursor)
			if key(p) > ck || (key(p) == ck && p.ID >= cid) {
				continue
			}
		}
		page = append(page, p)
		if len(page) == q.Limit {
			break
		}
	}
	return page, nil
}

func cursorKey(c domain.PostCursor) (int64, int64) {
	switch c := c.(type) {
	case domain.VoteCursor:
		return c.VoteTotal, c.ID
	case domain.TimeCursor:
		return c.CreatedAt.UnixNano(), c.ID
	case domain.CommentCursor:
		return c.CommentCount, c.ID
	default:
		panic("unreachable")
	}
}

func makePosts(n int, at time.Time) []domain.Post {
	posts := make([]domain.Post, 0, n)
	for i := 1; i <= n; i++ {
		posts = append(posts, domain.Post{
			ID:           int64(i),
			Title:        "post",
			VoteTotal:    int64(i % 5),
			CommentCount: int64(i % 3),
			CreatedAt:    at.Add(time.Duration(i) * time.Minute),
		})
	}
	return posts
}

func TestPlanner_PaginatesToExhaustionWithoutDuplicates(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	for _, feedSort := range domain.ValidFeedSorts {
		t.Run(string(feedSort), func(t *testing.T) {
			store := &fakeFeedStore{posts: makePosts(23, now.Add(-time.Hour))}
			planner := &Planner{Posts: store, Clock: func() time.Time { return now }}

			// One unbounded read is the reference answer for the paged walk.
			all, err := store.SelectFeedPage(context.Background(), domain.FeedQuery{
				Scope: domain.FeedScope{Kind: domain.ScopeAll},
				Sort:  feedSort,
				Limit: len(store.posts),
				Now:   now,
			})
			require.NoError(t, err)
			require.Len(t, all, 23)

			var walked []domain.Post
			cursor := ""
			for pages := 0; ; pages++ {
				require.Less(t, pages, 10, "pagination did not terminate")

				page, err := planner.FetchPage(context.Background(), Request{
					Scope:  domain.FeedScope{Kind: domain.ScopeAll},
					Sort:   feedSort,
					Cursor: cursor,
					Limit:  5,
				})
				require.NoError(t, err)

				walked = append(walked, page.Posts...)
				if page.NextCursor == nil {
					break
				}
				cursor = *page.NextCursor
			}

			assert.Equal(t, all, walked)

			seen := map[int64]bool{}
			for _, p := range walked {
				assert.False(t, seen[p.ID], "post %d returned twice", p.ID)
				seen[p.ID] = true
			}
		})
	}
}

func TestPlanner_ShortPageEndsPagination(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	store := &fakeFeedStore{posts: makePosts(3, now.Add(-time.Hour))}
	planner := &Planner{Posts: store, Clock: func() time.Time { return now }}

	page, err := planner.FetchPage(context.Background(), Request{
		Scope: domain.FeedScope{Kind: domain.ScopeAll},
		Sort:  domain.SortNew,
		Limit: 5,
	})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 3)
	assert.Nil(t, page.NextCursor)
}

func TestPlanner_FullPageCarriesCursorEvenWhenFeedIsExhausted(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	store := &fakeFeedStore{posts: makePosts(5, now.Add(-time.Hour))}
	planner := &Planner{Posts: store, Clock: func() time.Time { return now }}

	page, err := planner.FetchPage(context.Background(), Request{
		Scope: domain.FeedScope{Kind: domain.ScopeAll},
		Sort:  domain.SortNew,
		Limit: 5,
	})
	require.NoError(t, err)
	require.Len(t, page.Posts, 5)
	require.NotNil(t, page.NextCursor)

	next, err := planner.FetchPage(context.Background(), Request{
		Scope:  domain.FeedScope{Kind: domain.ScopeAll},
		Sort:   domain.SortNew,
		Cursor: *page.NextCursor,
		Limit:  5,
	})
	require.NoError(t, err)
	assert.Empty(t, next.Posts)
	assert.Nil(t, next.NextCursor)
}

func TestPlanner_HotExcludesPostsOlderThanOneMonth(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	cutoff := domain.HotCutoff(now)

	store := &fakeFeedStore{posts: []domain.Post{
		{ID: 1, VoteTotal: 100, CreatedAt: cutoff.Add(-time.Second)},
		{ID: 2, VoteTotal: 50, CreatedAt: cutoff},
		{ID: 3, VoteTotal: 10, CreatedAt: cutoff.Add(time.Second)},
		{ID: 4, VoteTotal: 1, CreatedAt: now.Add(-time.Hour)},
	}}
	planner := &Planner{Posts: store, Clock: func() time.Time { return now }}

	page, err := planner.FetchPage(context.Background(), Request{
		Scope: domain.FeedScope{Kind: domain.ScopeAll},
		Sort:  domain.SortHot,
		Limit: 10,
	})
	require.NoError(t, err)

	var ids []int64
	for _, p := range page.Posts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{3, 4}, ids)
	assert.Equal(t, now, store.lastQuery.Now)
}

func TestPlanner_LimitDefaultsAndClamps(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "zero_defaults", limit: 0, wantLimit: DefaultPageSize},
		{name: "negative_defaults", limit: -3, wantLimit: DefaultPageSize},
		{name: "in_range_kept", limit: 25, wantLimit: 25},
		{name: "excess_clamped", limit: 500, wantLimit: MaxPageSize},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeFeedStore{}
			planner := &Planner{Posts: store, Clock: func() time.Time { return now }}

			_, err := planner.FetchPage(context.Background(), Request{
				Scope: domain.FeedScope{Kind: domain.ScopeAll},
				Sort:  domain.SortNew,
				Limit: tc.limit,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.wantLimit, store.lastQuery.Limit)
		})
	}
}

func TestPlanner_RejectsBadRequests(t *testing.T) {
	wrongSortCursor, err := domain.EncodeCursor(domain.TimeCursor{
		ID:        1,
		CreatedAt: time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	cases := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name:    "unknown_sort",
			req:     Request{Scope: domain.FeedScope{Kind: domain.ScopeAll}, Sort: "rising"},
			wantErr: domain.ErrInvalidSort,
		},
		{
			name:    "invalid_scope",
			req:     Request{Scope: domain.FeedScope{Kind: domain.ScopeCommunity}, Sort: domain.SortBest},
			wantErr: domain.ErrInvalidScope,
		},
		{
			name:    "malformed_cursor",
			req:     Request{Scope: domain.FeedScope{Kind: domain.ScopeAll}, Sort: domain.SortBest, Cursor: "@@@"},
			wantErr: domain.ErrBadCursor,
		},
		{
			name: "cursor_from_other_sort",
			req: Request{
				Scope:  domain.FeedScope{Kind: domain.ScopeAll},
				Sort:   domain.SortBest,
				Cursor: wrongSortCursor,
			},
			wantErr: domain.ErrBadCursor,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeFeedStore{}
			planner := &Planner{Posts: store}

			_, err := planner.FetchPage(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestPlanner_WrapsStoreErrors(t *testing.T) {
	storeErr := errors.New("connection reset")
	planner := &Planner{Posts: &fakeFeedStore{err: storeErr}}

	_, err := planner.FetchPage(context.Background(), Request{
		Scope: domain.FeedScope{Kind: domain.ScopeAll},
		Sort:  domain.SortBest,
	})
	assert.ErrorIs(t, err, storeErr)
}
