package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/circleboard/feed/internal/domain"
	"github.com/circleboard/feed/internal/feed"
)

// FeedPager is the planner surface controllers need.
type FeedPager interface {
	FetchPage(ctx context.Context, req feed.Request) (feed.Page, error)
}

type FeedList struct {
	Pager       FeedPager
	CacheMaxAge time.Duration
}

type FeedListResponse struct {
	Posts      []domain.Post `json:"posts"`
	NextCursor *string       `json:"next_cursor"`
}

func (c FeedList) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)
	viewerID := domain.UserIDFromContext(ctx)

	req, err := feedRequestFromQuery(r.URL.Query(), viewerID)
	if err != nil {
		logger.ErrorContext(ctx, "unable to parse feed request from query string", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if req.Scope.RequiresAuth() && viewerID == "" {
		logger.ErrorContext(ctx, "anonymous request for a scope requiring auth", "scope", req.Scope.Kind)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	page, err := c.Pager.FetchPage(ctx, req)
	if err != nil {
		if isClientError(err) {
			logger.ErrorContext(ctx, "rejecting feed request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		logger.ErrorContext(ctx, "unable to fetch feed page", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if viewerID == "" {
		w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(c.CacheMaxAge.Seconds())))
	}

	if err := json.NewEncoder(w).Encode(FeedListResponse{
		Posts:      page.Posts,
		NextCursor: page.NextCursor,
	}); err != nil {
		logger.ErrorContext(ctx, "unable to write feed page to response", "error", err)
	}
}

// isClientError distinguishes a malformed request (including a cursor
// that fails to decode) from a server fault. A bad cursor must surface
// as a 400, never as a silently restarted or empty feed.
func isClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidSort) ||
		errors.Is(err, domain.ErrInvalidScope) ||
		errors.Is(err, domain.ErrBadCursor)
}

func feedRequestFromQuery(q url.Values, viewerID string) (feed.Request, error) {
	scope, err := feedScopeFromQuery(q, viewerID)
	if err != nil {
		return feed.Request{}, err
	}

	// No default: an absent or unknown sort is a client error, and
	// defaulting would make pagination behaviour inconsistent across
	// calls.
	sort, err := domain.ParseFeedSort(q.Get("sort"))
	if err != nil {
		return feed.Request{}, err
	}

	limit := 0
	if q.Has("limit") {
		parsed, err := strconv.ParseInt(q.Get("limit"), 10, 32)
		if err != nil {
			return feed.Request{}, fmt.Errorf("unable to parse limit from query: %w", err)
		}
		if parsed < 1 {
			return feed.Request{}, fmt.Errorf("invalid limit value [%d]", parsed)
		}
		if parsed > feed.MaxPageSize {
			return feed.Request{}, fmt.Errorf("limit [%d] exceeds maximum [%d]", parsed, feed.MaxPageSize)
		}
		limit = int(parsed)
	}

	return feed.Request{
		Scope:    scope,
		Sort:     sort,
		Cursor:   q.Get("cursor"),
		Limit:    limit,
		ViewerID: viewerID,
	}, nil
}

func feedScopeFromQuery(q url.Values, viewerID string) (domain.FeedScope, error) {
	kind := domain.FeedScopeKind(q.Get("scope"))
	if !q.Has("scope") {
		kind = domain.ScopeAll
	}

	scope := domain.FeedScope{Kind: kind}
	switch kind {
	case domain.ScopeAll:
	case domain.ScopeHome:
	case domain.ScopeCommunity:
		scope.Community = q.Get("community")
	case domain.ScopeUser:
		scope.Username = q.Get("user")
	case domain.ScopeUpvoted, domain.ScopeDownvoted, domain.ScopeSaved, domain.ScopeHidden:
		// Self scopes are always keyed by the acting user; there is no
		// way to request another user's saved or hidden posts.
		scope.UserID = viewerID
	default:
		return domain.FeedScope{}, fmt.Errorf("%w: %q", domain.ErrInvalidScope, kind)
	}

	// Validation of auth-requiring scopes happens after the 401 check;
	// here only reject shapes that can never be valid.
	if kind == domain.ScopeCommunity || kind == domain.ScopeUser {
		if err := scope.Validate(); err != nil {
			return domain.FeedScope{}, err
		}
	}

	return scope, nil
}
