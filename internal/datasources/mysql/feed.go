package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/huandu/go-sqlbuilder"

	"github.com/circleboard/feed/internal/domain"
)

// One row per post: communities and authors are single-valued, so the
// whole page is a single join query with no grouping.
var feedPostColumns = []string{
	"p.id",
	"p.title",
	"p.body",
	"p.author_id",
	"u.username",
	"p.community_id",
	"c.name",
	"p.vote_total",
	"p.comment_count",
	"p.nsfw",
	"p.spoiler",
	"p.created_at",
	"pv.value",
	"pv.saved",
	"pv.hidden",
}

func (r *Repository) SelectFeedPage(ctx context.Context, q domain.FeedQuery) ([]domain.Post, error) {
	sb, err := buildFeedSelect(q)
	if err != nil {
		return nil, err
	}

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running feed query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows, q.ViewerID)
		if err != nil {
			return nil, fmt.Errorf("scanning feed row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feed rows: %w", err)
	}

	return posts, nil
}

// buildFeedSelect composes scope predicate × sort ordering × seek
// cursor into one bounded SELECT. Split out from SelectFeedPage so the
// composition is testable without a database.
func buildFeedSelect(q domain.FeedQuery) (*sqlbuilder.SelectBuilder, error) {
	sb := feedSelect(q.ViewerID)

	conds := feedScopeConds(sb, q.Scope, q.ViewerID)

	// The hot window is resolved once per request, not per row.
	if q.Sort == domain.SortHot {
		conds = append(conds, sb.GreaterThan("p.created_at", domain.HotCutoff(q.Now)))
	}

	if q.Cursor != nil {
		seek, err := feedSeekCond(sb, q.Sort, q.Cursor)
		if err != nil {
			return nil, err
		}
		conds = append(conds, seek)
	}

	if len(conds) > 0 {
		sb.Where(conds...)
	}

	orderings, err := feedOrderings(q.Sort)
	if err != nil {
		return nil, err
	}
	sb.OrderBy(orderings...)
	sb.Limit(q.Limit)

	return sb, nil
}

func feedSelect(viewerID string) *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.Select(feedPostColumns...)
	sb.From("posts AS p")
	sb.Join("users AS u", "u.id = p.author_id")
	sb.Join("communities AS c", "c.id = p.community_id")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "post_votes AS pv",
		"pv.post_id = p.id",
		"pv.user_id = "+sb.Args.Add(viewerID))
	return sb
}

// feedScopeConds translates a feed scope into predicate strings over
// the posts relation. Community and user names are resolved with
// scalar subqueries, so an unknown name matches nothing instead of
// erroring: an empty feed page is a valid outcome.
func feedScopeConds(sb *sqlbuilder.SelectBuilder, scope domain.FeedScope, viewerID string) []string {
	var conds []string

	switch scope.Kind {
	case domain.ScopeAll:
		conds = append(conds, viewerExclusionConds(sb, viewerID, true)...)

	case domain.ScopeHome:
		conds = append(conds,
			"EXISTS (SELECT 1 FROM community_memberships m"+
				" WHERE m.user_id = "+sb.Args.Add(viewerID)+
				" AND m.community_id = p.community_id AND m.joined)")
		conds = append(conds, viewerExclusionConds(sb, viewerID, true)...)

	case domain.ScopeCommunity:
		conds = append(conds,
			"p.community_id = (SELECT id FROM communities WHERE name = "+sb.Args.Add(scope.Community)+")")
		// Deliberately no mute exclusion: explicitly visiting a muted
		// community shows its posts.
		conds = append(conds, viewerExclusionConds(sb, viewerID, false)...)

	case domain.ScopeUser:
		conds = append(conds,
			"p.author_id = (SELECT id FROM users WHERE username = "+sb.Args.Add(scope.Username)+")")

	case domain.ScopeUpvoted:
		conds = append(conds, voteRowCond(sb, scope.UserID, "sv.value = 1"))

	case domain.ScopeDownvoted:
		conds = append(conds, voteRowCond(sb, scope.UserID, "sv.value = -1"))

	case domain.ScopeSaved:
		conds = append(conds, voteRowCond(sb, scope.UserID, "sv.saved"))

	case domain.ScopeHidden:
		// No hidden exclusion here: a user viewing their hidden feed
		// must see their own hidden posts.
		conds = append(conds, voteRowCond(sb, scope.UserID, "sv.hidden"))
	}

	return conds
}

// viewerExclusionConds drops the viewer's hidden posts and, when
// includeMuted is set, posts from communities the viewer has muted.
// Anonymous requests have no rows to check against and skip both.
func viewerExclusionConds(sb *sqlbuilder.SelectBuilder, viewerID string, includeMuted bool) []string {
	if viewerID == "" {
		return nil
	}

	conds := []string{
		"NOT EXISTS (SELECT 1 FROM post_votes hv" +
			" WHERE hv.user_id = " + sb.Args.Add(viewerID) +
			" AND hv.post_id = p.id AND hv.hidden)",
	}
	if includeMuted {
		conds = append(conds,
			"NOT EXISTS (SELECT 1 FROM community_memberships mm"+
				" WHERE mm.user_id = "+sb.Args.Add(viewerID)+
				" AND mm.community_id = p.community_id AND mm.muted)")
	}
	return conds
}

func voteRowCond(sb *sqlbuilder.SelectBuilder, userID, match string) string {
	return "EXISTS (SELECT 1 FROM post_votes sv" +
		" WHERE sv.user_id = " + sb.Args.Add(userID) +
		" AND sv.post_id = p.id AND " + match + ")"
}

// feedSeekCond turns the decoded cursor into a strict seek predicate:
// a lexicographic less-than over (sort key, id), matching the
// descending order. Anchoring on the last-seen row's values keeps
// pagination stable under concurrent inserts and deletes.
func feedSeekCond(sb *sqlbuilder.SelectBuilder, sort domain.FeedSort, cursor domain.PostCursor) (string, error) {
	switch c := cursor.(type) {
	case domain.VoteCursor:
		return seekLessThan(sb, "p.vote_total", c.VoteTotal, c.ID), nil
	case domain.TimeCursor:
		return seekLessThan(sb, "p.created_at", c.CreatedAt, c.ID), nil
	case domain.CommentCursor:
		return seekLessThan(sb, "p.comment_count", c.CommentCount, c.ID), nil
	default:
		return "", fmt.Errorf("no seek predicate for cursor type %T under sort %q", cursor, sort)
	}
}

func seekLessThan(sb *sqlbuilder.SelectBuilder, column string, key any, id int64) string {
	return "(" + column + " < " + sb.Args.Add(key) +
		" OR (" + column + " = " + sb.Args.Add(key) +
		" AND p.id < " + sb.Args.Add(id) + "))"
}

// feedOrderings is the sort strategy table. For seek pagination to be
// correct the ordering must be a strict total order, so the post ID is
// always the final tie-break; a timestamp alone is not enough when two
// posts share one.
func feedOrderings(sort domain.FeedSort) ([]string, error) {
	switch sort {
	case domain.SortBest, domain.SortHot:
		return []string{"p.vote_total DESC", "p.id DESC"}, nil
	case domain.SortNew:
		return []string{"p.created_at DESC", "p.id DESC"}, nil
	case domain.SortControversial:
		return []string{"p.comment_count DESC", "p.id DESC"}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSort, sort)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner, viewerID string) (domain.Post, error) {
	var post domain.Post
	var viewerVote sql.NullInt64
	var viewerSaved, viewerHidden sql.NullBool

	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.AuthorID,
		&post.AuthorName,
		&post.CommunityID,
		&post.CommunityName,
		&post.VoteTotal,
		&post.CommentCount,
		&post.NSFW,
		&post.Spoiler,
		&post.CreatedAt,
		&viewerVote,
		&viewerSaved,
		&viewerHidden,
	); err != nil {
		return domain.Post{}, err
	}

	if viewerID != "" {
		status := &domain.ViewerPostStatus{}
		if viewerVote.Valid {
			status.Vote = int8(viewerVote.Int64)
		}
		if viewerSaved.Valid {
			status.Saved = viewerSaved.Bool
		}
		if viewerHidden.Valid {
			status.Hidden = viewerHidden.Bool
		}
		post.Viewer = status
	}

	return post, nil
}
