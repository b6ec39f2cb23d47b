package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// PostCursor anchors keyset pagination on the last-seen row of a page.
// The concrete shape is coupled to the sort that issued it: best and
// hot paginate by vote total, new by creation time, controversial by
// comment count. The post ID is always the final tie-break.
//
// Cursors are never stored server-side; their integrity depends only on
// a faithful round-trip through EncodeCursor/DecodeCursor.
type PostCursor interface {
	// LastID is the ID of the last row the client has seen.
	LastID() int64

	sealed()
}

// VoteCursor is issued by the best and hot sorts.
type VoteCursor struct {
	ID        int64 `json:"id"`
	VoteTotal int64 `json:"vote_total"`
}

func (c VoteCursor) LastID() int64 { return c.ID }
func (c VoteCursor) sealed()       {}

// TimeCursor is issued by the new sort.
type TimeCursor struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (c TimeCursor) LastID() int64 { return c.ID }
func (c TimeCursor) sealed()       {}

// CommentCursor is issued by the controversial sort.
type CommentCursor struct {
	ID           int64 `json:"id"`
	CommentCount int64 `json:"comment_count"`
}

func (c CommentCursor) LastID() int64 { return c.ID }
func (c CommentCursor) sealed()       {}

// CursorForPost extracts the cursor a page ending in post should hand
// to the client under the given sort.
func CursorForPost(post Post, sort FeedSort) (PostCursor, error) {
	switch sort {
	case SortBest, SortHot:
		return VoteCursor{ID: post.ID, VoteTotal: post.VoteTotal}, nil
	case SortNew:
		return TimeCursor{ID: post.ID, CreatedAt: post.CreatedAt}, nil
	case SortControversial:
		return CommentCursor{ID: post.ID, CommentCount: post.CommentCount}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, sort)
	}
}

// EncodeCursor serializes a cursor to its opaque URL-safe wire form.
func EncodeCursor(cursor PostCursor) (string, error) {
	payload, err := json.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("marshalling cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(payload), nil
}

// DecodeCursor reverses EncodeCursor and validates the payload against
// the shape the requested sort expects. A cursor issued under one sort
// is rejected when replayed under another; malformed base64, malformed
// JSON, and missing or extra fields are all ErrBadCursor. Decode
// failures are client errors and must never silently restart
// pagination from the first page.
func DecodeCursor(token string, sort FeedSort) (PostCursor, error) {
	payload, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrBadCursor, err)
	}

	switch sort {
	case SortBest, SortHot:
		var raw struct {
			ID        *int64 `json:"id"`
			VoteTotal *int64 `json:"vote_total"`
		}
		if err := decodeCursorPayload(payload, &raw); err != nil {
			return nil, err
		}
		if raw.ID == nil || raw.VoteTotal == nil {
			return nil, fmt.Errorf("%w: not a %s cursor", ErrBadCursor, sort)
		}
		return VoteCursor{ID: *raw.ID, VoteTotal: *raw.VoteTotal}, nil

	case SortNew:
		var raw struct {
			ID        *int64     `json:"id"`
			CreatedAt *time.Time `json:"created_at"`
		}
		if err := decodeCursorPayload(payload, &raw); err != nil {
			return nil, err
		}
		if raw.ID == nil || raw.CreatedAt == nil {
			return nil, fmt.Errorf("%w: not a %s cursor", ErrBadCursor, sort)
		}
		return TimeCursor{ID: *raw.ID, CreatedAt: *raw.CreatedAt}, nil

	case SortControversial:
		var raw struct {
			ID           *int64 `json:"id"`
			CommentCount *int64 `json:"comment_count"`
		}
		if err := decodeCursorPayload(payload, &raw); err != nil {
			return nil, err
		}
		if raw.ID == nil || raw.CommentCount == nil {
			return nil, fmt.Errorf("%w: not a %s cursor", ErrBadCursor, sort)
		}
		return CommentCursor{ID: *raw.ID, CommentCount: *raw.CommentCount}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, sort)
	}
}

func decodeCursorPayload(payload []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	return nil
}
