package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/circleboard/feed/internal/domain"
)

// voteDelta is the change a vote transition applies to a stored score:
// the new value minus the previous one. A -1 → +1 flip is worth +2.
func voteDelta(prev, next int8) int {
	return int(next) - int(prev)
}

// SetPostVote upserts the (user, post) vote row and applies the score
// delta to the post's stored vote total in one transaction, keeping the
// counter consistent with the raw rows. Vote resets write value 0
// rather than deleting the row, so the saved/hidden flags survive.
func (r *Repository) SetPostVote(ctx context.Context, userID string, postID int64, value int8) error {
	if value < domain.DownvoteValue || value > domain.UpvoteValue {
		return fmt.Errorf("invalid vote value %d", value)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting vote transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var prev int8
	err = tx.QueryRowContext(ctx,
		`SELECT value FROM post_votes WHERE user_id = ? AND post_id = ? FOR UPDATE`,
		userID, postID).Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading current vote: %w", err)
	}

	delta := voteDelta(prev, value)
	if delta == 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO post_votes (user_id, post_id, value) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE value = VALUES(value)`,
		userID, postID, value); err != nil {
		return fmt.Errorf("upserting vote: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE posts SET vote_total = vote_total + ? WHERE id = ?`,
		delta, postID); err != nil {
		return fmt.Errorf("applying vote delta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing vote transaction: %w", err)
	}
	return nil
}

func (r *Repository) SetPostSaved(ctx context.Context, userID string, postID int64, saved bool) error {
	return r.setPostFlag(ctx, "saved", userID, postID, saved)
}

func (r *Repository) SetPostHidden(ctx context.Context, userID string, postID int64, hidden bool) error {
	return r.setPostFlag(ctx, "hidden", userID, postID, hidden)
}

func (r *Repository) setPostFlag(ctx context.Context, flag, userID string, postID int64, value bool) error {
	// flag is one of the fixed column names "saved"/"hidden", never
	// caller input.
	query := `INSERT INTO post_votes (user_id, post_id, ` + flag + `) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE ` + flag + ` = VALUES(` + flag + `)`
	if _, err := r.db.ExecContext(ctx, query, userID, postID, value); err != nil {
		return fmt.Errorf("setting %s flag: %w", flag, err)
	}
	return nil
}

func (r *Repository) SetCommentVote(ctx context.Context, userID string, commentID int64, value int8) error {
	if value < domain.DownvoteValue || value > domain.UpvoteValue {
		return fmt.Errorf("invalid vote value %d", value)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting comment vote transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var prev int8
	err = tx.QueryRowContext(ctx,
		`SELECT value FROM comment_votes WHERE user_id = ? AND comment_id = ? FOR UPDATE`,
		userID, commentID).Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading current comment vote: %w", err)
	}

	delta := voteDelta(prev, value)
	if delta == 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO comment_votes (user_id, comment_id, value) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE value = VALUES(value)`,
		userID, commentID, value); err != nil {
		return fmt.Errorf("upserting comment vote: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE comments SET vote_total = vote_total + ? WHERE id = ?`,
		delta, commentID)
	if err != nil {
		return fmt.Errorf("applying comment vote delta: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking comment vote update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("comment %d: %w", commentID, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing comment vote transaction: %w", err)
	}
	return nil
}
