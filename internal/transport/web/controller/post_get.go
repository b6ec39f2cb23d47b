package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/circleboard/feed/internal/datasources"
	"github.com/circleboard/feed/internal/domain"
)

type PostGet struct {
	Fetcher     datasources.PostFetcher
	CacheMaxAge time.Duration
}

func (c PostGet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)

	postID, err := postIDFromRequest(r)
	if err != nil {
		logger.ErrorContext(ctx, "unable to parse post ID", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	post, err := c.Fetcher.FetchPostByID(ctx, postID, domain.UserIDFromContext(ctx))
	if errors.Is(err, domain.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "unable to fetch post", "error", err, "post_id", postID)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if domain.UserIDFromContext(ctx) == "" {
		w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(c.CacheMaxAge.Seconds())))
	}

	if err := json.NewEncoder(w).Encode(post); err != nil {
		logger.ErrorContext(ctx, "unable to write post to response", "error", err)
	}
}

func postIDFromRequest(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["post_id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing post ID [%s]: %w", raw, err)
	}
	return id, nil
}
