package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Client wraps the club's public web API. Every endpoint returns
// PascalCase JSON; responses are decoded without a schema and handed to
// the content normalizers as-is.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func NewClient(baseURL string, httpClient *http.Client, userAgent string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (c *Client) GetNewsList(ctx context.Context, items int) ([]any, error) {
	return c.getList(ctx, "/News/GetNewsList", url.Values{"items": {strconv.Itoa(items)}})
}

func (c *Client) GetNewsByID(ctx context.Context, newsID string) (any, error) {
	return c.getObject(ctx, "/News/GetNewsById", url.Values{"NewsId": {newsID}})
}

func (c *Client) GetCommentList(ctx context.Context, newsID string) ([]any, error) {
	return c.getList(ctx, "/Comment/GetCommentList", url.Values{"NewsId": {newsID}})
}

func (c *Client) GetFixtures(ctx context.Context, seasonID int) ([]any, error) {
	return c.getList(ctx, "/Fixture/GetFixture", url.Values{"seasonId": {strconv.Itoa(seasonID)}})
}

func (c *Client) GetFixtureByID(ctx context.Context, fixtureID string) (any, error) {
	return c.getObject(ctx, "/Fixture/GetFixtureById", url.Values{"FixtureId": {fixtureID}})
}

func (c *Client) GetFixtureStats(ctx context.Context, fixtureID string) (any, error) {
	return c.getObject(ctx, "/Fixture/GetFixtureStats", url.Values{"FixtureId": {fixtureID}})
}

func (c *Client) GetFixtureEvents(ctx context.Context, fixtureID string) ([]any, error) {
	return c.getList(ctx, "/Fixture/GetFixtureEvents", url.Values{"FixtureId": {fixtureID}})
}

func (c *Client) GetSeasonList(ctx context.Context) ([]any, error) {
	return c.getList(ctx, "/Fixture/GetSeasonList", nil)
}

func (c *Client) getList(ctx context.Context, path string, params url.Values) ([]any, error) {
	data, err := c.fetch(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var list []any
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return list, nil
}

func (c *Client) getObject(ctx context.Context, path string, params url.Values) (any, error) {
	data, err := c.fetch(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var obj any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return obj, nil
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
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
