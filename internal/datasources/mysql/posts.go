package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/circleboard/feed/internal/domain"
)

func (r *Repository) FetchPostByID(ctx context.Context, id int64, viewerID string) (domain.Post, error) {
	sb := feedSelect(viewerID)
	sb.Where(sb.Equal("p.id", id))

	query, args := sb.Build()
	post, err := scanPost(r.db.QueryRowContext(ctx, query, args...), viewerID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Post{}, fmt.Errorf("post %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("fetching post %d: %w", id, err)
	}
	return post, nil
}

func (r *Repository) ListPostIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM posts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing post IDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning post ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating post IDs: %w", err)
	}
	return ids, nil
}

func (r *Repository) AdjustCommentCount(ctx context.Context, postID int64, delta int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET comment_count = comment_count + ? WHERE id = ?`,
		delta, postID)
	if err != nil {
		return fmt.Errorf("adjusting comment count for post %d: %w", postID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking comment count update for post %d: %w", postID, err)
	}
	if affected == 0 {
		return fmt.Errorf("post %d: %w", postID, domain.ErrNotFound)
	}
	return nil
}

// RecountPost rebuilds the stored counters from the raw vote and
// comment rows. The feed read path trusts the stored counters; this is
// the repair path when they drift.
func (r *Repository) RecountPost(ctx context.Context, postID int64) error {
	// MySQL reports zero affected rows both for a missing post and for
	// counters that were already correct, so no existence check here.
	_, err := r.db.ExecContext(ctx, `
UPDATE posts p
SET p.vote_total = (SELECT COALESCE(SUM(v.value), 0) FROM post_votes v WHERE v.post_id = p.id),
    p.comment_count = (SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id)
WHERE p.id = ?`,
		postID)
	if err != nil {
		return fmt.Errorf("recounting post %d: %w", postID, err)
	}
	return nil
}
