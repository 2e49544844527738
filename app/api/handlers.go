package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vhallberg/clubfeed/app/cfg"
	"github.com/vhallberg/clubfeed/app/content"
	"github.com/vhallberg/clubfeed/app/database"
	"github.com/vhallberg/clubfeed/app/l10n"
	"github.com/vhallberg/clubfeed/app/sources"
	"github.com/vhallberg/clubfeed/app/tasks"
	"github.com/vhallberg/clubfeed/app/upstream"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func NewHandler(configCache *sources.ConfigCache, postRepo database.PostRepository,
	fixtureRepo database.FixtureRepository, client *upstream.Client,
	normalizer *content.Normalizer, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		postRepo:    postRepo,
		fixtureRepo: fixtureRepo,
		configCache: configCache,
		client:      client,
		normalizer:  normalizer,
		generator:   NewGenerator(),
		formatters:  l10n.NewCache(),
		locale:      cfg.Get().Locale,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetPosts(c *gin.Context) {
	limit := queryInt(c, "limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	stored, err := h.postRepo.GetPosts(limit, offset)
	if err != nil {
		slog.Error("Database error", "operation", "get_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	total, err := h.postRepo.GetPostCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_post_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	posts := make([]content.Post, 0, len(stored))
	for _, post := range stored {
		posts = append(posts, post.Post)
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":  posts,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetPost(c *gin.Context) {
	id := c.Param("id")

	stored, err := h.postRepo.GetPost(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_post", "post_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if stored != nil {
		c.JSON(http.StatusOK, stored.Post)
		return
	}

	// Not cached yet. Fetch it live so deep links work right after a
	// post is published.
	raw, err := h.client.GetNewsByID(c.Request.Context(), id)
	if err != nil {
		slog.Error("Upstream error", "operation", "get_news_by_id", "post_id", id, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	post, err := h.normalizer.Post(raw)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if err := h.postRepo.UpsertPost("news", post); err != nil {
		slog.Warn("Failed to cache post fetched on demand", "post_id", id, "error", err)
	}

	c.JSON(http.StatusOK, post)
}

func (h *Handler) GetPostComments(c *gin.Context) {
	id := c.Param("id")

	list, err := h.client.GetCommentList(c.Request.Context(), id)
	if err != nil {
		slog.Error("Upstream error", "operation", "get_comment_list", "post_id", id, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch comments"})
		return
	}

	now := time.Now()
	formatter := h.formatters.Get(h.locale)

	comments := make([]commentResponse, 0, len(list))
	for _, raw := range list {
		comment, err := h.normalizer.Comment(raw)
		if err != nil {
			var invalid *content.InvalidInputError
			if errors.As(err, &invalid) {
				continue
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to normalize comments"})
			return
		}
		comments = append(comments, commentResponse{
			Comment:           *comment,
			CreatedAtRelative: formatter.RelativeTime(comment.CreatedAt, now),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"total":    len(comments),
	})
}

func (h *Handler) GetFixtures(c *gin.Context) {
	stored, err := h.fixtureRepo.GetFixtures()
	if err != nil {
		slog.Error("Database error", "operation", "get_fixtures", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	fixtures := make([]content.Fixture, 0, len(stored))
	for _, fixture := range stored {
		fixtures = append(fixtures, fixture.Fixture)
	}

	c.JSON(http.StatusOK, gin.H{
		"fixtures": fixtures,
		"total":    len(fixtures),
	})
}

func (h *Handler) GetFixture(c *gin.Context) {
	id := c.Param("id")

	raw, err := h.client.GetFixtureByID(c.Request.Context(), id)
	if err == nil {
		if detail, normErr := h.normalizer.FixtureDetail(raw); normErr == nil {
			c.JSON(http.StatusOK, gin.H{
				"fixture":             detail,
				"attendanceFormatted": h.formatters.Get(h.locale).Number(detail.Attendance),
			})
			return
		}
	} else {
		slog.Warn("Upstream error, falling back to stored fixture", "operation", "get_fixture_by_id", "fixture_id", id, "error", err)
	}

	stored, err := h.fixtureRepo.GetFixture(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_fixture", "fixture_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if stored == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Fixture not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fixture": stored.Fixture})
}

func (h *Handler) GetFixtureStats(c *gin.Context) {
	id := c.Param("id")

	raw, err := h.client.GetFixtureStats(c.Request.Context(), id)
	if err != nil {
		slog.Error("Upstream error", "operation", "get_fixture_stats", "fixture_id", id, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch fixture stats"})
		return
	}

	stats, err := h.normalizer.FixtureStats(raw)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Fixture stats not found"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetFixtureEvents(c *gin.Context) {
	id := c.Param("id")

	list, err := h.client.GetFixtureEvents(c.Request.Context(), id)
	if err != nil {
		slog.Error("Upstream error", "operation", "get_fixture_events", "fixture_id", id, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch fixture events"})
		return
	}

	events := make([]content.FixtureEvent, 0, len(list))
	for _, raw := range list {
		event, err := h.normalizer.FixtureEvent(raw)
		if err != nil {
			var invalid *content.InvalidInputError
			if errors.As(err, &invalid) {
				continue
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to normalize events"})
			return
		}
		events = append(events, *event)
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  len(events),
	})
}

func (h *Handler) GetNewsFeed(c *gin.Context) {
	maxItems := defaultPageSize
	if config, err := h.configCache.GetConfig("news"); err == nil {
		maxItems = config.Settings.MaxItems
	}

	posts, err := h.postRepo.GetPosts(maxItems, 0)
	if err != nil {
		slog.Error("Database error", "operation", "get_posts", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run(posts)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(posts)))

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if postCount, err := h.postRepo.GetPostCount(); err == nil {
		health["posts"] = postCount
	}
	if fixtureCount, err := h.fixtureRepo.GetFixtureCount(); err == nil {
		health["fixtures"] = fixtureCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"version": cfg.Get().Version,
	}

	if postCount, err := h.postRepo.GetPostCount(); err == nil {
		stats["posts"] = postCount
	}
	if fixtureCount, err := h.fixtureRepo.GetFixtureCount(); err == nil {
		stats["fixtures"] = fixtureCount
	}

	configs := h.configCache.GetConfigs()
	sourceStats := make([]map[string]interface{}, 0, len(configs))
	for _, sourceConfig := range configs {
		sourceStats = append(sourceStats, map[string]interface{}{
			"name":             sourceConfig.Name,
			"type":             sourceConfig.Type,
			"enabled":          sourceConfig.Settings.Enabled,
			"refresh_interval": sourceConfig.Settings.GetRefreshInterval().String(),
		})
	}
	stats["sources"] = sourceStats

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	list := make([]map[string]interface{}, 0, len(configs))
	for _, sourceConfig := range configs {
		info := map[string]interface{}{
			"name":             sourceConfig.Name,
			"type":             sourceConfig.Type,
			"enabled":          sourceConfig.Settings.Enabled,
			"max_items":        sourceConfig.Settings.MaxItems,
			"refresh_interval": sourceConfig.Settings.GetRefreshInterval().String(),
		}

		if sourceConfig.Type == sources.TypeNews {
			info["extract_content"] = sourceConfig.News.ExtractContent
			info["rss_url"] = sourceConfig.News.RSSURL
		}
		if sourceConfig.Type == sources.TypeFixtures {
			info["season_id"] = sourceConfig.Fixtures.SeasonID
		}

		list = append(list, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": list,
		"total":   len(list),
	})
}

func (h *Handler) APIRefreshSource(c *gin.Context) {
	name := c.Param("name")

	sourceConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	var task tasks.TaskInterface
	switch sourceConfig.Type {
	case sources.TypeNews:
		task = tasks.NewRefreshPostsTask(name, sourceConfig, h.client, h.normalizer, h.postRepo)
	case sources.TypeFixtures:
		task = tasks.NewRefreshFixturesTask(name, sourceConfig, h.client, h.normalizer, h.fixtureRepo)
	}

	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing refresh task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue refresh task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded and refresh task enqueued",
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
