package controller

import (
	"net/http"

	"github.com/circleboard/feed/internal/datasources"
)

type PostSavedSet struct {
	Fetcher datasources.PostFetcher
	Setter  datasources.PostSavedSetter
}

func (c PostSavedSet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handlePostFlag(w, r, c.Fetcher, c.Setter.SetPostSaved, "saved")
}
