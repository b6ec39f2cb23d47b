package domain

import (
	"errors"
	"fmt"
	"time"
)

// Client-error sentinels. Controllers map these to 400-class responses;
// anything else surfaced from a feed request is a server fault.
var (
	ErrInvalidSort  = errors.New("invalid feed sort")
	ErrInvalidScope = errors.New("invalid feed scope")
	ErrBadCursor    = errors.New("bad feed cursor")
	ErrNotFound     = errors.New("not found")
)

type FeedSort string

const (
	SortBest          FeedSort = "best"
	SortHot           FeedSort = "hot"
	SortNew           FeedSort = "new"
	SortControversial FeedSort = "controversial"
)

var ValidFeedSorts = []FeedSort{SortBest, SortHot, SortNew, SortControversial}

// ParseFeedSort rejects unknown sort values rather than defaulting;
// defaulting would mask client bugs and produce inconsistent pagination
// across calls.
func ParseFeedSort(s string) (FeedSort, error) {
	sort := FeedSort(s)
	for _, valid := range ValidFeedSorts {
		if sort == valid {
			return sort, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
}

type FeedScopeKind string

const (
	ScopeAll       FeedScopeKind = "all"
	ScopeHome      FeedScopeKind = "home"
	ScopeCommunity FeedScopeKind = "community"
	ScopeUser      FeedScopeKind = "user"
	ScopeUpvoted   FeedScopeKind = "upvoted"
	ScopeDownvoted FeedScopeKind = "downvoted"
	ScopeSaved     FeedScopeKind = "saved"
	ScopeHidden    FeedScopeKind = "hidden"
)

// FeedScope identifies which subset of posts a feed draws from.
// Community and Username carry the target for the community/user scopes;
// UserID carries the acting user for the self scopes
// (upvoted/downvoted/saved/hidden), which are only reachable
// authenticated.
type FeedScope struct {
	Kind      FeedScopeKind
	Community string
	Username  string
	UserID    string
}

// RequiresAuth reports whether the scope is meaningless without an
// acting user.
func (s FeedScope) RequiresAuth() bool {
	switch s.Kind {
	case ScopeHome, ScopeUpvoted, ScopeDownvoted, ScopeSaved, ScopeHidden:
		return true
	}
	return false
}

// Public reports whether the scope can be served to anonymous clients,
// e.g. as an RSS feed.
func (s FeedScope) Public() bool {
	switch s.Kind {
	case ScopeAll, ScopeCommunity, ScopeUser:
		return true
	}
	return false
}

func (s FeedScope) Validate() error {
	switch s.Kind {
	case ScopeAll, ScopeHome:
	case ScopeCommunity:
		if s.Community == "" {
			return fmt.Errorf("%w: community scope without community name", ErrInvalidScope)
		}
	case ScopeUser:
		if s.Username == "" {
			return fmt.Errorf("%w: user scope without username", ErrInvalidScope)
		}
	case ScopeUpvoted, ScopeDownvoted, ScopeSaved, ScopeHidden:
		if s.UserID == "" {
			return fmt.Errorf("%w: %s scope without acting user", ErrInvalidScope, s.Kind)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidScope, s.Kind)
	}
	return nil
}

// HotCutoff is the lower bound on created_at for the hot sort: a fixed
// rolling month, computed once per request rather than per row.
func HotCutoff(now time.Time) time.Time {
	return now.AddDate(0, -1, 0)
}

// FeedQuery is a fully resolved single-page read: scope predicate, sort
// ordering, optional seek cursor, and bound. Each query is one atomic
// read against the store; nothing spans pages.
type FeedQuery struct {
	Scope    FeedScope
	Sort     FeedSort
	Cursor   PostCursor
	Limit    int
	ViewerID string
	Now      time.Time
}
