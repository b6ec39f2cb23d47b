package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/circleboard/feed/internal/domain"
	"github.com/circleboard/feed/internal/feed"
)

func TestFeedList_ServeHTTP(t *testing.T) {
	testTime := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	nextCursor := "b3BhcXVl"

	posts := []domain.Post{
		{ID: 2, Title: "Second post", VoteTotal: 10, CreatedAt: testTime},
		{ID: 1, Title: "First post", VoteTotal: 5, CreatedAt: testTime},
	}

	cases := []struct {
		name          string
		queryString   string
		setupContext  func(r *http.Request) *http.Request
		page          feed.Page
		fetchErr      error
		wantStatus    int
		wantCacheCtrl string
		wantRequest   *feed.Request
		skipFetch     bool
	}{
		{
			name:          "successful_list",
			queryString:   "sort=best",
			setupContext:  testContext(),
			page:          feed.Page{Posts: posts, NextCursor: &nextCursor},
			wantStatus:    http.StatusOK,
			wantCacheCtrl: "max-age=60",
			wantRequest: &feed.Request{
				Scope: domain.FeedScope{Kind: domain.ScopeAll},
				Sort:  domain.SortBest,
			},
		},
		{
			name:         "no_cache_for_authenticated_user",
			queryString:  "sort=new",
			setupContext: testContextWithUserID("user123"),
			page:         feed.Page{Posts: posts},
			wantStatus:   http.StatusOK,
			wantRequest: &feed.Request{
				Scope:    domain.FeedScope{Kind: domain.ScopeAll},
				Sort:     domain.SortNew,
				ViewerID: "user123",
			},
		},
		{
			name:         "scope_and_limit_and_cursor_forwarded",
			queryString:  "scope=community&community=golang&sort=hot&limit=25&cursor=abc",
			setupContext: testContextWithUserID("user123"),
			page:         feed.Page{},
			wantStatus:   http.StatusOK,
			wantRequest: &feed.Request{
				Scope:    domain.FeedScope{Kind: domain.ScopeCommunity, Community: "golang"},
				Sort:     domain.SortHot,
				Cursor:   "abc",
				Limit:    25,
				ViewerID: "user123",
			},
		},
		{
			name:         "self_scope_keyed_by_acting_user",
			queryString:  "scope=saved&sort=new",
			setupContext: testContextWithUserID("user123"),
			page:         feed.Page{},
			wantStatus:   http.StatusOK,
			wantRequest: &feed.Request{
				Scope:    domain.FeedScope{Kind: domain.ScopeSaved, UserID: "user123"},
				Sort:     domain.SortNew,
				ViewerID: "user123",
			},
		},
		{
			name:         "missing_sort_rejected",
			queryString:  "",
			setupContext: testContext(),
			wantStatus:   http.StatusBadRequest,
			skipFetch:    true,
		},
		{
			name:         "unknown_sort_rejected",
			queryString:  "sort=top",
			setupContext: testContext(),
			wantStatus:   http.StatusBadRequest,
			skipFetch:    true,
		},
		{
			name:         "unknown_scope_rejected",
			queryString:  "scope=popular&sort=best",
			setupContext: testContext(),
			wantStatus:   http.StatusBadRequest,
			skipFetch:    true,
		},
		{
			name:         "community_scope_without_name_rejected",
			queryString:  "scope=community&sort=best",
			setupContext: testContext(),
			wantStatus:   http.StatusBadRequest,
			skipFetch:    true,
		},
		{
			name:         "invalid_limit_rejected",
			queryString:  "sort=best&limit=abc",
			setupContext: testContext(),
			wantStatus:   http.StatusBadRequest,
			skipFetch:    true,
		},
		{
			name:         "excess_limit_rejected",
			queryString:  fmt.Sprintf("sort=best&limit=%d", feed.MaxPageSize+1),
			setupContext: testContext(),
			wantStatus:   http.StatusBadRequest,
			skipFetch:    true,
		},
		{
			name:         "home_scope_requires_auth",
			queryString:  "scope=home&sort=best",
			setupContext: testContext(),
			wantStatus:   http.StatusUnauthorized,
			skipFetch:    true,
		},
		{
			name:         "hidden_scope_requires_auth",
			queryString:  "scope=hidden&sort=best",
			setupContext: testContext(),
			wantStatus:   http.StatusUnauthorized,
			skipFetch:    true,
		},
		{
			name:         "bad_cursor_is_client_error",
			queryString:  "sort=best&cursor=garbage",
			setupContext: testContext(),
			fetchErr:     fmt.Errorf("decoding: %w", domain.ErrBadCursor),
			wantStatus:   http.StatusBadRequest,
		},
		{
			name:         "store_failure_is_server_error",
			queryString:  "sort=best",
			setupContext: testContext(),
			fetchErr:     errors.New("connection reset"),
			wantStatus:   http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pager := &mockFeedPager{}

			if !tc.skipFetch {
				pager.On("FetchPage", mock.Anything, mock.Anything).
					Return(tc.page, tc.fetchErr).Once()
			}

			controller := FeedList{
				Pager:       pager,
				CacheMaxAge: time.Minute,
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/feed?"+tc.queryString, nil)
			req = tc.setupContext(req)
			rec := httptest.NewRecorder()

			controller.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			pager.AssertExpectations(t)

			if tc.wantRequest != nil {
				require.Len(t, pager.Calls, 1)
				assert.Equal(t, *tc.wantRequest, pager.Calls[0].Arguments.Get(1))
			}

			if tc.wantStatus == http.StatusOK {
				if tc.wantCacheCtrl != "" {
					assert.Equal(t, tc.wantCacheCtrl, rec.Header().Get("Cache-Control"))
				} else {
					assert.Empty(t, rec.Header().Get("Cache-Control"))
				}

				var response FeedListResponse
				err := json.NewDecoder(rec.Body).Decode(&response)
				require.NoError(t, err)
				assert.Equal(t, tc.page.NextCursor, response.NextCursor)
				assert.Len(t, response.Posts, len(tc.page.Posts))
			}
		})
	}
}
