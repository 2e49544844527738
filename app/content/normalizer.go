package content

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// InvalidInputError is returned when a normalizer receives something
// that is not a JSON object. Field-level problems never raise it;
// missing or mistyped fields default (see helpers.go).
type InvalidInputError struct {
	Entity string
}

func (e *InvalidInputError) Error() string {
	return "invalid " + e.Entity
}

const (
	postImageWidth  = "w_600"
	crestImageWidth = "w_220"

	defaultAvatarSuffix = "default-avatar-generic.png"
)

var (
	imageWidthRe      = regexp.MustCompile(`w_\d+`)
	commentNewlinesRe = regexp.MustCompile(`\n{3,}`)
)

// Normalizer converts raw upstream JSON values into the stable record
// types. It is stateless apart from its configuration and safe for
// concurrent use.
type Normalizer struct {
	sanitizer *Sanitizer
	siteURL   string
}

func NewNormalizer(siteURL string) *Normalizer {
	return &Normalizer{
		sanitizer: NewSanitizer(),
		siteURL:   strings.TrimRight(siteURL, "/"),
	}
}

func (n *Normalizer) Sanitizer() *Sanitizer {
	return n.sanitizer
}

func (n *Normalizer) Post(input any) (*Post, error) {
	obj, ok := asObject(input)
	if !ok {
		return nil, &InvalidInputError{Entity: "article"}
	}

	slug := stringField(obj, "Url")

	post := &Post{
		ID:            idField(obj, "NewsId"),
		Slug:          slug,
		URL:           n.canonicalURL(slug),
		Title:         stringField(obj, "Title"),
		Excerpt:       StripHTML(stringField(obj, "Preamble")),
		ImageURL:      rewriteImageWidth(stringField(obj, "ImageName"), postImageWidth),
		PublishedAt:   timeField(obj, "CreatedDate"),
		Content:       n.sanitizer.Run(stringField(obj, "ContentText")),
		Tags:          normalizeTags(arrayField(obj, "TagList")),
		Author:        normalizeAdmin(objectField(obj, "Admin")),
		CommentsCount: 0,
	}

	// Nil-coalescing, not falsy: an explicit 0 upstream stays 0, only
	// an absent field defaults.
	if count, ok := numberField(obj, "NumberOfComments"); ok {
		post.CommentsCount = int(count)
	}

	return post, nil
}

func (n *Normalizer) Comment(input any) (*Comment, error) {
	obj, ok := asObject(input)
	if !ok {
		return nil, &InvalidInputError{Entity: "comment"}
	}

	comment := &Comment{
		ID:        idField(obj, "CommentId"),
		ParentID:  stringFieldPtr(obj, "ParentId"),
		CreatedAt: timeField(obj, "CreatedDate"),
		UpdatedAt: timeFieldPtr(obj, "ChangedDate"),
		Text:      normalizeCommentText(stringField(obj, "Comment")),
		Author: User{
			ID:        idField(obj, "MemberId"),
			Name:      stringField(obj, "UserName"),
			AvatarURL: normalizeAvatarURL(stringField(obj, "ImageName")),
			URL:       stringField(obj, "Url"),
		},
		Likes:   intField(obj, "NumberOfLikes"),
		Replies: []Comment{},
	}

	for _, raw := range arrayField(obj, "SubList") {
		reply, err := n.Comment(raw)
		if err != nil {
			return nil, err
		}
		comment.Replies = append(comment.Replies, *reply)
	}

	return comment, nil
}

func normalizeTags(raw []any) []Tag {
	tags := make([]Tag, 0, len(raw))
	for _, item := range raw {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		tags = append(tags, Tag{
			ID:    intField(obj, "TagId"),
			Value: stringField(obj, "TagName"),
		})
	}
	return tags
}

func normalizeAdmin(obj map[string]any) User {
	if obj == nil {
		return User{}
	}
	return User{
		ID:        idField(obj, "AdminId"),
		Name:      stringField(obj, "AdminName"),
		AvatarURL: normalizeAvatarURL(stringField(obj, "ImageName")),
		URL:       stringField(obj, "Url"),
	}
}

// normalizeAvatarURL drops the CMS stand-in image so callers can tell
// "no avatar" apart from a real one.
func normalizeAvatarURL(url string) *string {
	if url == "" || strings.HasSuffix(url, defaultAvatarSuffix) {
		return nil
	}
	return &url
}

func normalizeCommentText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "<br>", "\n")
	text = commentNewlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// rewriteImageWidth swaps the CDN sizing token for a fixed width. Plain
// token substitution: the token sits in the URL path, not a query
// parameter.
func rewriteImageWidth(url, width string) string {
	return imageWidthRe.ReplaceAllString(url, width)
}

func (n *Normalizer) canonicalURL(slug string) string {
	if slug == "" {
		return ""
	}
	return n.siteURL + "/" + strings.TrimLeft(slug, "/")
}

// StripHTML reduces a markup fragment to its text. Inputs without any
// markup are returned as-is so plain excerpts skip the parse.
func StripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
