package api

import (
	"strings"
	"testing"
	"time"

	"github.com/vhallberg/clubfeed/app/cfg"
	"github.com/vhallberg/clubfeed/app/content"
	"github.com/vhallberg/clubfeed/app/database"
)

func generatorPosts() []database.Post {
	return []database.Post{
		{Post: content.Post{
			ID:          "100",
			Title:       "Win & celebration",
			URL:         "https://www.example-club.se/win",
			Excerpt:     "A big win.",
			Content:     "<p>Full report with <b>markup</b>.</p>",
			ImageURL:    "https://cdn.example.com/w_600/hero.jpg",
			PublishedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			Tags:        []content.Tag{{ID: 4, Value: "matchrapport"}},
			Author:      content.User{Name: "Redaktionen"},
		}},
	}
}

func TestGeneratorChannelStructure(t *testing.T) {
	cfg.SetForTesting(testCfg())

	rss, err := NewGenerator().Run(generatorPosts())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.HasPrefix(rss, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("Expected XML declaration, got: %s", rss[:60])
	}
	if !strings.Contains(rss, `<link>https://www.example-club.se</link>`) {
		t.Errorf("Expected channel link, got: %s", rss)
	}
	if !strings.Contains(rss, `href="http://localhost:8080/feeds/news"`) {
		t.Errorf("Expected localhost self link when base URL unset, got: %s", rss)
	}
	if !strings.Contains(rss, "<generator>clubfeed/test</generator>") {
		t.Errorf("Expected generator element, got: %s", rss)
	}
}

func TestGeneratorSelfLinkUsesBaseURL(t *testing.T) {
	c := testCfg()
	c.BaseURL = "https://feed.example-club.se"
	cfg.SetForTesting(c)

	rss, err := NewGenerator().Run(nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(rss, `href="https://feed.example-club.se/feeds/news"`) {
		t.Errorf("Expected base URL self link, got: %s", rss)
	}
}

func TestGeneratorItemFields(t *testing.T) {
	cfg.SetForTesting(testCfg())

	rss, err := NewGenerator().Run(generatorPosts())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(rss, `<guid isPermaLink="false">100</guid>`) {
		t.Errorf("Expected non-permalink guid, got: %s", rss)
	}
	if !strings.Contains(rss, "<title>Win &amp; celebration</title>") {
		t.Errorf("Expected escaped title, got: %s", rss)
	}
	if !strings.Contains(rss, "<content:encoded><![CDATA[<p>Full report with <b>markup</b>.</p>]]></content:encoded>") {
		t.Errorf("Expected CDATA content, got: %s", rss)
	}
	if !strings.Contains(rss, "<category>matchrapport</category>") {
		t.Errorf("Expected category from tag, got: %s", rss)
	}
	if !strings.Contains(rss, "<author>Redaktionen</author>") {
		t.Errorf("Expected author, got: %s", rss)
	}
	if !strings.Contains(rss, `<enclosure url="https://cdn.example.com/w_600/hero.jpg"`) {
		t.Errorf("Expected image enclosure, got: %s", rss)
	}
	if !strings.Contains(rss, "<pubDate>Mon, 10 Mar 2025 12:00:00 +0000</pubDate>") {
		t.Errorf("Expected RFC1123Z pubDate, got: %s", rss)
	}
}

func TestGeneratorEmptyFeed(t *testing.T) {
	cfg.SetForTesting(testCfg())

	rss, err := NewGenerator().Run(nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(rss, "<channel>") || !strings.Contains(rss, "</rss>") {
		t.Errorf("Expected well-formed empty channel, got: %s", rss)
	}
	if strings.Contains(rss, "<item>") {
		t.Errorf("Expected no items, got: %s", rss)
	}
}

func TestGeneratorMissingDescriptionFallback(t *testing.T) {
	cfg.SetForTesting(testCfg())

	posts := []database.Post{{Post: content.Post{ID: "1", Title: "No excerpt", PublishedAt: time.Now()}}}

	rss, err := NewGenerator().Run(posts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(rss, "<description>No description available</description>") {
		t.Errorf("Expected description fallback, got: %s", rss)
	}
}
