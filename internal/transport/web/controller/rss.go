package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/feeds"

	"github.com/circleboard/feed/internal/domain"
)

type FeedRSS struct {
	FeedHostname    string
	FeedPath        string
	FeedAuthorName  string
	FeedAuthorEmail string
	Pager           FeedPager
	CacheMaxAge     time.Duration
}

func (c FeedRSS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)

	// RSS is served without a viewer: readers poll it unauthenticated,
	// and per-user exclusions would make the shared cache wrong.
	req, err := feedRequestFromQuery(r.URL.Query(), "")
	if err != nil {
		logger.ErrorContext(ctx, "unable to parse feed request from query string", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if !req.Scope.Public() {
		logger.ErrorContext(ctx, "non-public scope requested over RSS", "scope", req.Scope.Kind)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	page, err := c.Pager.FetchPage(ctx, req)
	if err != nil {
		if isClientError(err) {
			logger.ErrorContext(ctx, "rejecting feed request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		logger.ErrorContext(ctx, "unable to fetch feed page for RSS", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	out := &feeds.Feed{
		Title:       rssTitle(req.Scope, req.Sort),
		Link:        &feeds.Link{Href: c.FeedHostname + c.FeedPath},
		Description: "Posts from circleboard",
		Author:      &feeds.Author{Name: c.FeedAuthorName, Email: c.FeedAuthorEmail},
		Created:     time.Now(),
	}

	for _, post := range page.Posts {
		out.Items = append(out.Items, &feeds.Item{
			Id:          fmt.Sprintf("%d", post.ID),
			IsPermaLink: "false",
			Title:       post.Title,
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/posts/%d", c.FeedHostname, post.ID)},
			Description: post.Body,
			Author:      &feeds.Author{Name: post.AuthorName},
			Created:     post.CreatedAt,
		})
	}

	rss, err := out.ToRss()
	if err != nil {
		logger.ErrorContext(ctx, "unable to format feed as RSS", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(c.CacheMaxAge.Seconds())))

	if _, err := w.Write([]byte(rss)); err != nil {
		logger.ErrorContext(ctx, "unable to write feed to response", "error", err)
	}
}

func rssTitle(scope domain.FeedScope, sort domain.FeedSort) string {
	switch scope.Kind {
	case domain.ScopeCommunity:
		return fmt.Sprintf("circleboard: %s (%s)", scope.Community, sort)
	case domain.ScopeUser:
		return fmt.Sprintf("circleboard: posts by %s (%s)", scope.Username, sort)
	default:
		return fmt.Sprintf("circleboard: all posts (%s)", sort)
	}
}
