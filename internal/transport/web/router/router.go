package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/circleboard/feed/internal/datasources"
	"github.com/circleboard/feed/internal/feed"
	"github.com/circleboard/feed/internal/transport/web/controller"
)

func MakeRouter(
	repo datasources.FeedRepository,
	planner *feed.Planner,
	rssFeedBaseURL, rssFeedAuthorName, rssFeedAuthorEmail string,
	feedCacheMaxAge time.Duration,
	authMiddleware func(http.Handler) http.Handler,
) (http.Handler, error) {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(authMiddleware)

	r.Handle("/v1/health", controller.Health{}).
		Methods(http.MethodGet, http.MethodOptions)

	r.Handle("/v1/feed", controller.FeedList{
		Pager:       planner,
		CacheMaxAge: feedCacheMaxAge,
	}).Methods(http.MethodGet, http.MethodOptions)

	r.Handle("/v1/feed/rss", controller.FeedRSS{
		FeedHostname:    rssFeedBaseURL,
		FeedPath:        "/v1/feed/rss",
		FeedAuthorName:  rssFeedAuthorName,
		FeedAuthorEmail: rssFeedAuthorEmail,
		Pager:           planner,
		CacheMaxAge:     feedCacheMaxAge,
	}).Methods(http.MethodGet, http.MethodOptions)

	r.Handle("/v1/posts/{post_id:[0-9]+}", controller.PostGet{
		Fetcher:     repo,
		CacheMaxAge: feedCacheMaxAge,
	}).Methods(http.MethodGet, http.MethodOptions)

	r.Handle("/v1/posts/{post_id:[0-9]+}/vote/{value:-?[01]}",
		requireAuthMiddleware(controller.PostVoteSet{
			Fetcher: repo,
			Votes:   repo,
		})).Methods(http.MethodPost, http.MethodOptions)

	r.Handle("/v1/posts/{post_id:[0-9]+}/saved/{saved}",
		requireAuthMiddleware(controller.PostSavedSet{
			Fetcher: repo,
			Setter:  repo,
		})).Methods(http.MethodPost, http.MethodOptions)

	r.Handle("/v1/posts/{post_id:[0-9]+}/hidden/{hidden}",
		requireAuthMiddleware(controller.PostHiddenSet{
			Fetcher: repo,
			Setter:  repo,
		})).Methods(http.MethodPost, http.MethodOptions)

	r.Handle("/v1/comments/{comment_id:[0-9]+}/vote/{value:-?[01]}",
		requireAuthMiddleware(controller.CommentVoteSet{
			Votes: repo,
		})).Methods(http.MethodPost, http.MethodOptions)

	return r, nil
}
