package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vhallberg/clubfeed/app/content"
	"github.com/vhallberg/clubfeed/app/database"
	"github.com/vhallberg/clubfeed/app/sources"
	"github.com/vhallberg/clubfeed/app/upstream"
)

type RefreshPostsTask struct {
	Task
	SourceConfig *sources.Config
	client       *upstream.Client
	normalizer   *content.Normalizer
	postRepo     database.PostRepository
}

func NewRefreshPostsTask(sourceName string, sourceConfig *sources.Config, client *upstream.Client, normalizer *content.Normalizer, postRepo database.PostRepository) *RefreshPostsTask {
	return &RefreshPostsTask{
		Task:         NewTask(TaskTypeRefreshPosts, sourceName),
		SourceConfig: sourceConfig,
		client:       client,
		normalizer:   normalizer,
		postRepo:     postRepo,
	}
}

func (t *RefreshPostsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fetchCtx, cancel := context.WithTimeout(ctx, t.SourceConfig.Settings.GetTimeout())
	defer cancel()

	list, err := t.client.GetNewsList(fetchCtx, t.SourceConfig.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to fetch news list: %w", err)
	}

	storedCount := 0
	invalidCount := 0

	for _, raw := range list {
		post, err := t.normalizer.Post(raw)
		if err != nil {
			// A malformed entry is upstream noise, not a reason to drop
			// the rest of the list.
			var invalid *content.InvalidInputError
			if errors.As(err, &invalid) {
				slog.Warn("Skipping malformed news entry", "source", t.SourceName, "error", err)
				invalidCount++
				continue
			}
			return fmt.Errorf("failed to normalize post: %w", err)
		}

		if err := t.postRepo.UpsertPost(t.SourceName, post); err != nil {
			return fmt.Errorf("failed to store post: %w", err)
		}
		storedCount++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(list),
		"stored", storedCount,
		"invalid", invalidCount)

	return nil
}
