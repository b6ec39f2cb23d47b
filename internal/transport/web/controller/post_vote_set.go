package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/circleboard/feed/internal/datasources"
	"github.com/circleboard/feed/internal/domain"
)

type PostVoteSet struct {
	Fetcher datasources.PostFetcher
	Votes   datasources.PostVoteSetter
}

func (c PostVoteSet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)

	postID, err := postIDFromRequest(r)
	if err != nil {
		logger.ErrorContext(ctx, "unable to parse post ID", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	value, err := voteValueFromRequest(r)
	if err != nil {
		logger.ErrorContext(ctx, "invalid vote value", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if _, err := c.Fetcher.FetchPostByID(ctx, postID, ""); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		logger.ErrorContext(ctx, "unable to fetch post", "error", err, "post_id", postID)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := c.Votes.SetPostVote(ctx, domain.UserIDFromContext(ctx), postID, value); err != nil {
		logger.ErrorContext(ctx, "unable to set vote", "error", err, "post_id", postID)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func voteValueFromRequest(r *http.Request) (int8, error) {
	value, err := strconv.ParseInt(mux.Vars(r)["value"], 10, 8)
	if err != nil {
		return 0, err
	}
	return int8(value), nil
}
