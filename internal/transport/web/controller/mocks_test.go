package controller

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/circleboard/feed/internal/domain"
	"github.com/circleboard/feed/internal/feed"
)

func testContext() func(r *http.Request) *http.Request {
	return func(r *http.Request) *http.Request {
		ctx := domain.ContextWithLogger(r.Context(), slog.New(slog.NewTextHandler(io.Discard, nil)))
		return r.WithContext(ctx)
	}
}

func testContextWithUserID(userID string) func(r *http.Request) *http.Request {
	return func(r *http.Request) *http.Request {
		ctx := domain.ContextWithLogger(r.Context(), slog.New(slog.NewTextHandler(io.Discard, nil)))
		ctx = domain.ContextWithUserID(ctx, userID)
		return r.WithContext(ctx)
	}
}

type mockFeedPager struct {
	mock.Mock
}

func (m *mockFeedPager) FetchPage(ctx context.Context, req feed.Request) (feed.Page, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(feed.Page), args.Error(1)
}

type mockPostFetcher struct {
	mock.Mock
}

func (m *mockPostFetcher) FetchPostByID(ctx context.Context, id int64, viewerID string) (domain.Post, error) {
	args := m.Called(ctx, id, viewerID)
	return args.Get(0).(domain.Post), args.Error(1)
}

type mockPostVoteSetter struct {
	mock.Mock
}

func (m *mockPostVoteSetter) SetPostVote(ctx context.Context, userID string, postID int64, value int8) error {
	return m.Called(ctx, userID, postID, value).Error(0)
}

type mockPostSavedSetter struct {
	mock.Mock
}

func (m *mockPostSavedSetter) SetPostSaved(ctx context.Context, userID string, postID int64, saved bool) error {
	return m.Called(ctx, userID, postID, saved).Error(0)
}

type mockPostHiddenSetter struct {
	mock.Mock
}

func (m *mockPostHiddenSetter) SetPostHidden(ctx context.Context, userID string, postID int64, hidden bool) error {
	return m.Called(ctx, userID, postID, hidden).Error(0)
}

type mockCommentVoteSetter struct {
	mock.Mock
}

func (m *mockCommentVoteSetter) SetCommentVote(ctx context.Context, userID string, commentID int64, value int8) error {
	return m.Called(ctx, userID, commentID, value).Error(0)
}
