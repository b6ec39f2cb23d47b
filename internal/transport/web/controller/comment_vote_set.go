package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/circleboard/feed/internal/datasources"
	"github.com/circleboard/feed/internal/domain"
)

type CommentVoteSet struct {
	Votes datasources.CommentVoteSetter
}

func (c CommentVoteSet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)

	commentID, err := strconv.ParseInt(mux.Vars(r)["comment_id"], 10, 64)
	if err != nil {
		logger.ErrorContext(ctx, "unable to parse comment ID",
			"error", fmt.Errorf("parsing comment ID [%s]: %w", mux.Vars(r)["comment_id"], err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	value, err := voteValueFromRequest(r)
	if err != nil {
		logger.ErrorContext(ctx, "invalid vote value", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	err = c.Votes.SetCommentVote(ctx, domain.UserIDFromContext(ctx), commentID, value)
	if errors.Is(err, domain.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "unable to set comment vote", "error", err, "comment_id", commentID)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
