package domain

import (
	"time"
)

type Post struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	AuthorID      string    `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	CommunityID   int64     `json:"community_id"`
	CommunityName string    `json:"community_name"`
	VoteTotal     int64     `json:"vote_total"`
	CommentCount  int64     `json:"comment_count"`
	NSFW          bool      `json:"nsfw"`
	Spoiler       bool      `json:"spoiler"`
	CreatedAt     time.Time `json:"created_at"`

	// Viewer is only populated when the request carries an
	// authenticated user.
	Viewer *ViewerPostStatus `json:"viewer,omitempty"`
}

// ViewerPostStatus is the acting user's own relationship to a post.
type ViewerPostStatus struct {
	Vote   int8 `json:"vote"`
	Saved  bool `json:"saved"`
	Hidden bool `json:"hidden"`
}

const (
	UpvoteValue   int8 = 1
	DownvoteValue int8 = -1
	NoVoteValue   int8 = 0
)
