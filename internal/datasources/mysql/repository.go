package mysql

import (
	"database/sql"

	"github.com/circleboard/feed/internal/datasources"
)

var _ datasources.FeedRepository = (*Repository)(nil)

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}
