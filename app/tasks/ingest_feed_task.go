package tasks

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/vhallberg/clubfeed/app/content"
	"github.com/vhallberg/clubfeed/app/database"
	"github.com/vhallberg/clubfeed/app/sources"
)

// IngestFeedTask supplements the web API with the site's public RSS
// feed. Posts the API hasn't delivered yet (or no longer lists) are
// ingested from the feed under the same source.
type IngestFeedTask struct {
	Task
	SourceConfig *sources.Config
	httpClient   *http.Client
	normalizer   *content.Normalizer
	postRepo     database.PostRepository
	userAgent    string
	feedParser   *gofeed.Parser
}

func NewIngestFeedTask(sourceName string, sourceConfig *sources.Config, httpClient *http.Client, normalizer *content.Normalizer, postRepo database.PostRepository, userAgent string) *IngestFeedTask {
	return &IngestFeedTask{
		Task:         NewTask(TaskTypeIngestFeed, sourceName),
		SourceConfig: sourceConfig,
		httpClient:   httpClient,
		normalizer:   normalizer,
		postRepo:     postRepo,
		userAgent:    userAgent,
		feedParser:   gofeed.NewParser(),
	}
}

func (t *IngestFeedTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if t.SourceConfig.News.RSSURL == "" {
		slog.Debug("No RSS URL configured for source", "source", t.SourceName)
		return nil
	}

	data, err := t.fetchFeed(ctx, t.SourceConfig.News.RSSURL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := t.feedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	storedCount := 0
	skippedCount := 0

	for i, item := range feed.Items {
		if i >= t.SourceConfig.Settings.MaxItems {
			break
		}

		post, ok := t.postFromFeedItem(item)
		if !ok {
			skippedCount++
			continue
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
		"total", len(feed.Items),
		"stored", storedCount,
		"skipped", skippedCount)

	return nil
}

func (t *IngestFeedTask) postFromFeedItem(item *gofeed.Item) (*content.Post, bool) {
	id := cmp.Or(item.GUID, item.Link)
	if id == "" {
		return nil, false
	}

	post := &content.Post{
		ID:      id,
		URL:     item.Link,
		Slug:    slugFromLink(item.Link),
		Title:   item.Title,
		Excerpt: content.StripHTML(item.Description),
		Content: t.normalizer.Sanitizer().Run(cmp.Or(item.Content, item.Description)),
		Tags:    []content.Tag{},
	}

	if item.PublishedParsed != nil {
		post.PublishedAt = *item.PublishedParsed
	}
	if item.Image != nil {
		post.ImageURL = item.Image.URL
	}
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		post.Author = content.User{Name: item.Authors[0].Name}
	}

	return post, true
}

func slugFromLink(link string) string {
	link = strings.TrimRight(link, "/")
	if i := strings.LastIndex(link, "/"); i >= 0 {
		return link[i+1:]
	}
	return ""
}

func (t *IngestFeedTask) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, t.SourceConfig.Settings.GetTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
