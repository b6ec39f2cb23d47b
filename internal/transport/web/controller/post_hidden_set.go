package controller

import (
	"net/http"

	"github.com/circleboard/feed/internal/datasources"
)

type PostHiddenSet struct {
	Fetcher datasources.PostFetcher
	Setter  datasources.PostHiddenSetter
}

func (c PostHiddenSet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handlePostFlag(w, r, c.Fetcher, c.Setter.SetPostHidden, "hidden")
}
