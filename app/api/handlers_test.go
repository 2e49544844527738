package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vhallberg/clubfeed/app/cfg"
	"github.com/vhallberg/clubfeed/app/content"
	"github.com/vhallberg/clubfeed/app/database"
	"github.com/vhallberg/clubfeed/app/sources"
	"github.com/vhallberg/clubfeed/app/tasks"
	"github.com/vhallberg/clubfeed/app/upstream"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testCfg() *cfg.Cfg {
	return &cfg.Cfg{
		Port:    "8080",
		SiteURL: "https://www.example-club.se",
		Locale:  "en",
		Version: "test",
	}
}

// MockPostRepository implements a simple mock for testing
type MockPostRepository struct {
	posts []database.Post
}

func (m *MockPostRepository) GetPosts(limit, offset int) ([]database.Post, error) {
	if offset >= len(m.posts) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.posts) {
		end = len(m.posts)
	}
	return m.posts[offset:end], nil
}

func (m *MockPostRepository) GetPost(postID string) (*database.Post, error) {
	for i := range m.posts {
		if m.posts[i].ID == postID {
			return &m.posts[i], nil
		}
	}
	return nil, nil
}

func (m *MockPostRepository) GetPostCount() (int, error) {
	return len(m.posts), nil
}

func (m *MockPostRepository) UpsertPost(source string, post *content.Post) error {
	m.posts = append(m.posts, database.Post{Post: *post, Source: source})
	return nil
}

func (m *MockPostRepository) GetPostsForExtraction(limit int) ([]database.PostForExtraction, error) {
	return nil, nil
}

func (m *MockPostRepository) UpdateExtractedContent(postID string, body string, extractedAt time.Time) error {
	return nil
}

func (m *MockPostRepository) UpdateExtractionError(postID string, errorMsg string) error {
	return nil
}

// MockFixtureRepository implements a simple mock for testing
type MockFixtureRepository struct {
	fixtures []database.Fixture
}

func (m *MockFixtureRepository) GetFixtures() ([]database.Fixture, error) {
	return m.fixtures, nil
}

func (m *MockFixtureRepository) GetFixture(fixtureID string) (*database.Fixture, error) {
	for i := range m.fixtures {
		if m.fixtures[i].ID == fixtureID {
			return &m.fixtures[i], nil
		}
	}
	return nil, nil
}

func (m *MockFixtureRepository) GetFixtureCount() (int, error) {
	return len(m.fixtures), nil
}

func (m *MockFixtureRepository) UpsertFixture(seasonID int, fixture *content.Fixture) error {
	m.fixtures = append(m.fixtures, database.Fixture{Fixture: *fixture, SeasonID: seasonID})
	return nil
}

// MockScheduler implements a simple mock for testing
type MockScheduler struct {
	enqueued []tasks.TaskInterface
}

func (m *MockScheduler) Start() {}
func (m *MockScheduler) Stop()  {}

func (m *MockScheduler) EnqueueTask(task tasks.TaskInterface) error {
	m.enqueued = append(m.enqueued, task)
	return nil
}

type testEnv struct {
	router      *gin.Engine
	postRepo    *MockPostRepository
	fixtureRepo *MockFixtureRepository
	scheduler   *MockScheduler
}

func setupTestServer(t *testing.T, upstreamHandler http.HandlerFunc, apiAccessKey string) *testEnv {
	t.Helper()
	cfg.SetForTesting(testCfg())

	upstreamServer := httptest.NewServer(upstreamHandler)
	t.Cleanup(upstreamServer.Close)

	postRepo := &MockPostRepository{}
	fixtureRepo := &MockFixtureRepository{}
	scheduler := &MockScheduler{}
	client := upstream.NewClient(upstreamServer.URL, upstreamServer.Client(), "clubfeed-test/1.0")
	normalizer := content.NewNormalizer("https://www.example-club.se")

	handler := NewHandler(sources.NewConfigCache(t.TempDir()), postRepo, fixtureRepo, client, normalizer, scheduler)
	router := NewServer(handler, apiAccessKey)

	return &testEnv{
		router:      router,
		postRepo:    postRepo,
		fixtureRepo: fixtureRepo,
		scheduler:   scheduler,
	}
}

func noUpstream(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("Unexpected upstream request: %s", r.URL.Path)
	}
}

func TestGetPostsReturnsStoredPosts(t *testing.T) {
	env := setupTestServer(t, noUpstream(t), "")
	env.postRepo.posts = []database.Post{
		{Post: content.Post{ID: "1", Title: "Win", Tags: []content.Tag{}}},
		{Post: content.Post{ID: "2", Title: "Draw", Tags: []content.Tag{}}},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/posts", nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Posts []content.Post `json:"posts"`
		Total int            `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Total != 2 {
		t.Errorf("Expected total 2, got %d", response.Total)
	}
	if len(response.Posts) != 2 || response.Posts[0].Title != "Win" {
		t.Errorf("Unexpected posts: %+v", response.Posts)
	}
}

func TestGetPostFallsBackToUpstream(t *testing.T) {
	env := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/News/GetNewsById" {
			t.Errorf("Unexpected upstream path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"NewsId": 123, "Title": "Fresh post", "Url": "fresh-post"}`))
	}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/posts/123", nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var post content.Post
	if err := json.Unmarshal(w.Body.Bytes(), &post); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if post.Title != "Fresh post" {
		t.Errorf("Unexpected title: %s", post.Title)
	}
	if post.URL != "https://www.example-club.se/fresh-post" {
		t.Errorf("Expected canonical URL, got: %s", post.URL)
	}

	// On-demand fetches are cached for the next reader.
	if len(env.postRepo.posts) != 1 {
		t.Errorf("Expected post cached after fallback, got %d posts", len(env.postRepo.posts))
	}
}

func TestGetPostNotFoundWhenUpstreamFails(t *testing.T) {
	env := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/posts/999", nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestGetPostCommentsProxiedLive(t *testing.T) {
	env := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Comment/GetCommentList" {
			t.Errorf("Unexpected upstream path: %s", r.URL.Path)
		}
		w.Write([]byte(`[{"CommentId": 1, "Comment": "Nice one<br><br><br>Great game", "UserName": "fan"}]`))
	}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/posts/123/comments", nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Comments []content.Comment `json:"comments"`
		Total    int               `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Total != 1 {
		t.Fatalf("Expected 1 comment, got %d", response.Total)
	}
	if response.Comments[0].Text != "Nice one\n\nGreat game" {
		t.Errorf("Expected normalized text, got: %q", response.Comments[0].Text)
	}
}

func TestGetFixtureStatsProxiedLive(t *testing.T) {
	env := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"FixtureId": 881, "HomePossession": 38, "AwayPossession": 62, "HomeShots": 9}`))
	}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/fixtures/881/stats", nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var stats content.FixtureStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if stats.Home.Possession != 0.38 {
		t.Errorf("Expected possession 0.38, got: %v", stats.Home.Possession)
	}
	if stats.Home.Shots != 9 {
		t.Errorf("Expected 9 shots, got: %d", stats.Home.Shots)
	}
}

func TestGetFixtureFallsBackToStored(t *testing.T) {
	env := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}, "")
	env.fixtureRepo.fixtures = []database.Fixture{
		{Fixture: content.Fixture{ID: "881", Opponent: "Ipswich"}},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/fixtures/881", nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Ipswich") {
		t.Errorf("Expected stored fixture in response, got: %s", w.Body.String())
	}
}

func TestNewsFeedReturnsRSS(t *testing.T) {
	env := setupTestServer(t, noUpstream(t), "")
	env.postRepo.posts = []database.Post{
		{Post: content.Post{
			ID:          "1",
			Title:       "Win",
			URL:         "https://www.example-club.se/win",
			PublishedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			Tags:        []content.Tag{},
		}},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/feeds/news", nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/xml") {
		t.Errorf("Expected XML content type, got: %s", ct)
	}
	if !strings.Contains(w.Body.String(), "<title>Win</title>") {
		t.Errorf("Expected post in feed, got: %s", w.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestServer(t, noUpstream(t), "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "timestamp") {
		t.Errorf("Expected timestamp in health response, got: %s", w.Body.String())
	}
}

func TestAPIRequiresKey(t *testing.T) {
	env := setupTestServer(t, noUpstream(t), "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/sources", nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/sources", nil)
	req.Header.Set("X-API-Key", "wrong")
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/sources", nil)
	req.Header.Set("X-API-Key", "secret")
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with valid key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/sources", nil)
	req.Header.Set("Authorization", "Bearer secret")
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with bearer token, got %d", w.Code)
	}
}

func TestAPIDisabledWithoutKey(t *testing.T) {
	env := setupTestServer(t, noUpstream(t), "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/sources", nil)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 when API is disabled, got %d", w.Code)
	}
}
