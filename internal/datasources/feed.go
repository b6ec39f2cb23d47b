package datasources

import (
	"context"

	"github.com/circleboard/feed/internal/domain"
)

// FeedRepository is the full storage surface of the feed engine. The
// concrete implementation lives in the mysql package; consumers should
// depend on the narrowest interface below that covers what they use.
type FeedRepository interface {
	FeedPageSelector
	PostFetcher
	PostIDLister
	PostVoteSetter
	PostSavedSetter
	PostHiddenSetter
	CommentVoteSetter
	CommentCountAdjuster
	PostRecounter
}

// FeedPageSelector executes one bounded, ordered feed read. The query
// carries the scope predicate, sort, optional seek cursor and limit;
// implementations must return rows in the sort's total order
// (sort key descending, then post ID descending).
type FeedPageSelector interface {
	SelectFeedPage(ctx context.Context, query domain.FeedQuery) ([]domain.Post, error)
}

// PostFetcher loads a single post, with the viewer's vote/saved/hidden
// status populated when viewerID is non-empty. Returns
// domain.ErrNotFound for unknown IDs.
type PostFetcher interface {
	FetchPostByID(ctx context.Context, id int64, viewerID string) (domain.Post, error)
}

type PostIDLister interface {
	ListPostIDs(ctx context.Context) ([]int64, error)
}

// PostVoteSetter upserts the (user, post) vote row and applies the
// score delta to the post's stored vote total in the same transaction.
type PostVoteSetter interface {
	SetPostVote(ctx context.Context, userID string, postID int64, value int8) error
}

type PostSavedSetter interface {
	SetPostSaved(ctx context.Context, userID string, postID int64, saved bool) error
}

type PostHiddenSetter interface {
	SetPostHidden(ctx context.Context, userID string, postID int64, hidden bool) error
}

type CommentVoteSetter interface {
	SetCommentVote(ctx context.Context, userID string, commentID int64, value int8) error
}

// CommentCountAdjuster shifts a post's stored comment count; called by
// the comment service on comment create/delete.
type CommentCountAdjuster interface {
	AdjustCommentCount(ctx context.Context, postID int64, delta int) error
}

// PostRecounter recomputes a post's stored counters from the raw vote
// and comment rows.
type PostRecounter interface {
	RecountPost(ctx context.Context, postID int64) error
}
