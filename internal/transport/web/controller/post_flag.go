package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/circleboard/feed/internal/datasources"
	"github.com/circleboard/feed/internal/domain"
)

// Bool string constants for route parameters.
const (
	boolTrue  = "true"
	boolFalse = "false"
)

type postFlagSetter func(ctx context.Context, userID string, postID int64, value bool) error

func handlePostFlag(
	w http.ResponseWriter,
	r *http.Request,
	fetcher datasources.PostFetcher,
	setter postFlagSetter,
	paramName string,
) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)

	postID, err := postIDFromRequest(r)
	if err != nil {
		logger.ErrorContext(ctx, "unable to parse post ID", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var value bool
	switch mux.Vars(r)[paramName] {
	case boolTrue:
		value = true
	case boolFalse:
		value = false
	default:
		logger.ErrorContext(ctx, "invalid flag value", "flag", paramName, "value", mux.Vars(r)[paramName])
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if _, err := fetcher.FetchPostByID(ctx, postID, ""); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		logger.ErrorContext(ctx, "unable to fetch post", "error", err, "post_id", postID)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := setter(ctx, domain.UserIDFromContext(ctx), postID, value); err != nil {
		logger.ErrorContext(ctx, "unable to set flag", "error", err, "flag", paramName, "post_id", postID)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
