package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vhallberg/clubfeed/app/content"
	"github.com/vhallberg/clubfeed/app/database"
	"github.com/vhallberg/clubfeed/app/sources"
)

type ExtractContentTask struct {
	Task
	SourceConfig *sources.Config
	httpClient   *http.Client
	extractor    *content.Extractor
	postRepo     database.PostRepository
	userAgent    string
}

func NewExtractContentTask(sourceName string, sourceConfig *sources.Config, httpClient *http.Client, extractor *content.Extractor, postRepo database.PostRepository, userAgent string) *ExtractContentTask {
	return &ExtractContentTask{
		Task:         NewTask(TaskTypeExtractContent, sourceName),
		SourceConfig: sourceConfig,
		httpClient:   httpClient,
		extractor:    extractor,
		postRepo:     postRepo,
		userAgent:    userAgent,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.News.ExtractContent {
		slog.Debug("Content extraction disabled for source", "source", t.SourceName)
		return nil
	}

	posts, err := t.postRepo.GetPostsForExtraction(t.SourceConfig.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to get posts for content extraction: %w", err)
	}

	if len(posts) == 0 {
		slog.Debug("No posts need content extraction", "source", t.SourceName)
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, post := range posts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		extractCtx, cancel := context.WithTimeout(ctx, t.SourceConfig.Settings.GetTimeout())

		err := t.extractContentForPost(extractCtx, post)
		cancel()

		if err != nil {
			slog.Error("Failed to extract content for post", "post_id", post.ID, "url", post.URL, "error", err)
			errorCount++

			if updateErr := t.postRepo.UpdateExtractionError(post.ID, err.Error()); updateErr != nil {
				slog.Error("Failed to update content extraction status", "post_id", post.ID, "error", updateErr)
			}
		} else {
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extractContentForPost(ctx context.Context, post database.PostForExtraction) error {
	if post.URL == "" {
		return fmt.Errorf("post has no URL")
	}

	data, err := t.fetchArticlePage(ctx, post.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch article page: %w", err)
	}

	body, err := t.extractor.Run(data)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	if err := t.postRepo.UpdateExtractedContent(post.ID, body, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	slog.Debug("Content extracted successfully", "post_id", post.ID, "url", post.URL, "content_length", len(body))
	return nil
}

func (t *ExtractContentTask) fetchArticlePage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
