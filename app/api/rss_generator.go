package api

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/vhallberg/clubfeed/app/cfg"
	"github.com/vhallberg/clubfeed/app/database"
)

// Generator renders stored posts as an RSS 2.0 feed so the club's news
// can be followed from any feed reader.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(posts []database.Post) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", "Club News", 4)
	g.writeElement(&buf, "link", cfg.Get().SiteURL, 4)
	g.writeElement(&buf, "description", fmt.Sprintf("News from %s", cfg.Get().SiteURL), 4)

	var selfLink string
	if cfg.Get().BaseURL != "" {
		selfLink = fmt.Sprintf("%s/feeds/news", cfg.Get().BaseURL)
	} else {
		selfLink = fmt.Sprintf("http://localhost:%s/feeds/news", cfg.Get().Port)
	}
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := time.Now().In(time.Local)
	if len(posts) > 0 {
		lastBuildDate = cmp.Or(posts[0].PublishedAt, posts[0].CreatedAt, lastBuildDate)
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("clubfeed/%s", cfg.Get().Version), 4)
	g.writeElement(&buf, "language", cfg.Get().Locale, 4)

	for _, post := range posts {
		g.writeItem(&buf, post)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, post database.Post) {
	buf.WriteString("    <item>\n")

	if post.ID != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(post.ID)))
		xml.EscapeText(buf, []byte(post.ID))
		buf.WriteString("</guid>\n")
	}

	if post.Title != "" {
		g.writeElement(buf, "title", post.Title, 6)
	}

	if post.URL != "" {
		g.writeElement(buf, "link", post.URL, 6)
	}

	g.writeElement(buf, "description", cmp.Or(post.Excerpt, "No description available"), 6)

	if post.Content != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(post.Content)
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", post.PublishedAt.Format(time.RFC1123Z), 6)

	if post.Author.Name != "" {
		g.writeElement(buf, "author", post.Author.Name, 6)
	}

	for _, tag := range post.Tags {
		if tag.Value != "" {
			g.writeElement(buf, "category", tag.Value, 6)
		}
	}

	if post.ImageURL != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"image/jpeg\" />\n",
			html.EscapeString(post.ImageURL)))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}
