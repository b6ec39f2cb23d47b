package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/circleboard/feed/internal/command"
	"github.com/circleboard/feed/internal/datasources/mysql"
	"github.com/circleboard/feed/internal/domain"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	ctx := context.Background()

	// Setup logger
	logLevel := slog.LevelInfo
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if err := logLevel.UnmarshalText([]byte(lvl)); err != nil {
			fmt.Fprintf(os.Stderr, "invalid LOG_LEVEL: %s\n", lvl)
			os.Exit(1)
		}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	ctx = domain.ContextWithLogger(ctx, logger)

	postsFlag := flag.String("posts", "", "comma-separated post IDs to recount; empty recounts all posts")
	flag.Parse()

	postIDs, err := parsePostIDs(*postsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -posts value: %s\n", err)
		os.Exit(1)
	}

	if err := run(ctx, postIDs); err != nil {
		logger.ErrorContext(ctx, "post recount failed", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "post recount completed successfully")
}

func parsePostIDs(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing post ID [%s]: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func run(ctx context.Context, postIDs []int64) error {
	mysqlURI := os.Getenv("MYSQL_URI")
	if mysqlURI == "" {
		return fmt.Errorf("MYSQL_URI environment variable is required")
	}

	db, err := mysql.Connect(ctx, mysqlURI)
	if err != nil {
		return fmt.Errorf("connecting to MySQL: %w", err)
	}
	defer func() { _ = db.Close() }()

	repo := mysql.New(db)

	recountCmd := command.NewRecountPosts(repo, repo)

	_, err = recountCmd.Execute(ctx, command.RecountPostsRequest{PostIDs: postIDs})
	return err
}
