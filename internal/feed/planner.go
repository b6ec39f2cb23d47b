// Package feed composes scope filtering, sort strategy and cursor
// pagination into single bounded page reads.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/circleboard/feed/internal/datasources"
	"github.com/circleboard/feed/internal/domain"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Planner executes feed page requests. It is stateless: every request
// is one atomic read against the store, and the only thing carried
// between pages is the opaque cursor held by the client.
type Planner struct {
	Posts datasources.FeedPageSelector

	// Clock is overridable for tests; nil means time.Now.
	Clock func() time.Time
}

type Request struct {
	Scope    domain.FeedScope
	Sort     domain.FeedSort
	Cursor   string
	Limit    int
	ViewerID string
}

type Page struct {
	Posts      []domain.Post
	NextCursor *string
}

// FetchPage resolves the scope predicate and sort ordering, decodes the
// seek cursor if one was supplied, runs the combined bounded query and
// derives the next page's cursor from the last row.
//
// A short page (fewer rows than the limit) means the feed is exhausted
// and NextCursor is nil. A full page always carries a cursor, even if
// the next page turns out empty: distinguishing "no more posts" from a
// decode failure is the client's signal that pagination ended cleanly.
func (p *Planner) FetchPage(ctx context.Context, req Request) (Page, error) {
	if _, err := domain.ParseFeedSort(string(req.Sort)); err != nil {
		return Page{}, err
	}
	if err := req.Scope.Validate(); err != nil {
		return Page{}, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	var cursor domain.PostCursor
	if req.Cursor != "" {
		var err error
		cursor, err = domain.DecodeCursor(req.Cursor, req.Sort)
		if err != nil {
			return Page{}, err
		}
	}

	posts, err := p.Posts.SelectFeedPage(ctx, domain.FeedQuery{
		Scope:    req.Scope,
		Sort:     req.Sort,
		Cursor:   cursor,
		Limit:    limit,
		ViewerID: req.ViewerID,
		Now:      p.now(),
	})
	if err != nil {
		return Page{}, fmt.Errorf("selecting feed page: %w", err)
	}

	page := Page{Posts: posts}
	if len(posts) == limit {
		next, err := domain.CursorForPost(posts[len(posts)-1], req.Sort)
		if err != nil {
			return Page{}, fmt.Errorf("building next cursor: %w", err)
		}
		token, err := domain.EncodeCursor(next)
		if err != nil {
			return Page{}, fmt.Errorf("encoding next cursor: %w", err)
		}
		page.NextCursor = &token
	}

	return page, nil
}

func (p *Planner) now() time.Time {
	if p.Clock != nil {
		return p.Clock()
	}
	return time.Now()
}
