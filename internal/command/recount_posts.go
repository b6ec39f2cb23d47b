package command

import (
	"context"
	"fmt"

	"github.com/circleboard/feed/internal/datasources"
	"github.com/circleboard/feed/internal/domain"
)

// RecountPostsRequest selects which posts to repair. An empty PostIDs
// recounts every post.
type RecountPostsRequest struct {
	PostIDs []int64
}

type RecountPostsResponse struct {
	Recounted int
}

// RecountPosts rebuilds stored vote totals and comment counts from the
// raw vote and comment rows. The feed read path trusts the stored
// counters, so this is the repair tool for counter drift.
type RecountPosts struct {
	Lister    datasources.PostIDLister
	Recounter datasources.PostRecounter
}

// NewRecountPosts creates a properly initialized RecountPosts command.
func NewRecountPosts(
	lister datasources.PostIDLister,
	recounter datasources.PostRecounter,
) *RecountPosts {
	return &RecountPosts{
		Lister:    lister,
		Recounter: recounter,
	}
}

// Execute recounts the requested posts, stopping on the first failure.
func (c *RecountPosts) Execute(ctx context.Context, req RecountPostsRequest) (RecountPostsResponse, error) {
	logger := domain.LoggerFromContext(ctx)

	ids := req.PostIDs
	if len(ids) == 0 {
		var err error
		ids, err = c.Lister.ListPostIDs(ctx)
		if err != nil {
			return RecountPostsResponse{}, fmt.Errorf("listing posts to recount: %w", err)
		}
	}

	for i, id := range ids {
		if err := c.Recounter.RecountPost(ctx, id); err != nil {
			return RecountPostsResponse{Recounted: i}, fmt.Errorf("recounting post %d: %w", id, err)
		}
	}

	logger.InfoContext(ctx, "recounted posts", "count", len(ids))
	return RecountPostsResponse{Recounted: len(ids)}, nil
}
