package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vhallberg/clubfeed/app/content"
)

const maxExtractionAttempts = 3

type postRepository struct {
	db *DB
}

func NewPostRepository(db *DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) UpsertPost(source string, post *content.Post) error {
	tags, err := json.Marshal(post.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	author, err := json.Marshal(post.Author)
	if err != nil {
		return fmt.Errorf("failed to encode author: %w", err)
	}

	// Content is overwritten only when the refresh actually carries a
	// body, so a previously extracted body survives list refreshes that
	// deliver the post without one. Extraction is requested on first
	// sight of a bodyless post.
	status := ExtractionStatusSkipped
	if post.Content == "" {
		status = ExtractionStatusPending
	}

	_, err = r.db.Exec(`
		INSERT INTO posts (
			id, source, slug, url, title, excerpt, image_url, published_at,
			content, tags, author, comments_count, content_extraction_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			source = excluded.source,
			slug = excluded.slug,
			url = excluded.url,
			title = excluded.title,
			excerpt = excluded.excerpt,
			image_url = excluded.image_url,
			published_at = excluded.published_at,
			content = CASE WHEN excluded.content != '' THEN excluded.content ELSE posts.content END,
			content_extraction_status = CASE WHEN excluded.content != '' THEN 'skipped' ELSE posts.content_extraction_status END,
			tags = excluded.tags,
			author = excluded.author,
			comments_count = excluded.comments_count,
			updated_at = CURRENT_TIMESTAMP
	`, post.ID, source, post.Slug, post.URL, post.Title, post.Excerpt, post.ImageURL,
		post.PublishedAt, post.Content, string(tags), string(author), post.CommentsCount, status)

	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}

	return nil
}

func (r *postRepository) GetPosts(limit, offset int) ([]Post, error) {
	rows, err := r.db.Query(`
		SELECT id, source, slug, url, title, excerpt, image_url, published_at,
		       content, tags, author, comments_count,
		       content_extraction_status, content_extracted_at,
		       content_extraction_error, extraction_attempts,
		       created_at, updated_at
		FROM posts
		ORDER BY published_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

func (r *postRepository) GetPost(postID string) (*Post, error) {
	row := r.db.QueryRow(`
		SELECT id, source, slug, url, title, excerpt, image_url, published_at,
		       content, tags, author, comments_count,
		       content_extraction_status, content_extracted_at,
		       content_extraction_error, extraction_attempts,
		       created_at, updated_at
		FROM posts
		WHERE id = ?
	`, postID)

	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (r *postRepository) GetPostCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

func (r *postRepository) GetPostsForExtraction(limit int) ([]PostForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT id, url
		FROM posts
		WHERE content_extraction_status = ?
		  AND extraction_attempts < ?
		ORDER BY published_at DESC
		LIMIT ?
	`, ExtractionStatusPending, maxExtractionAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts for extraction: %w", err)
	}
	defer rows.Close()

	var posts []PostForExtraction
	for rows.Next() {
		var p PostForExtraction
		if err := rows.Scan(&p.ID, &p.URL); err != nil {
			return nil, fmt.Errorf("failed to scan extraction row: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extraction rows: %w", err)
	}

	return posts, nil
}

func (r *postRepository) UpdateExtractedContent(postID string, body string, extractedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE posts
		SET content = ?,
		    content_extraction_status = ?,
		    content_extracted_at = ?,
		    content_extraction_error = '',
		    extraction_attempts = extraction_attempts + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, body, ExtractionStatusSuccess, extractedAt, postID)

	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	return nil
}

func (r *postRepository) UpdateExtractionError(postID string, errorMsg string) error {
	_, err := r.db.Exec(`
		UPDATE posts
		SET content_extraction_status = CASE
		        WHEN extraction_attempts + 1 >= ? THEN ?
		        ELSE content_extraction_status
		    END,
		    content_extraction_error = ?,
		    extraction_attempts = extraction_attempts + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, maxExtractionAttempts, ExtractionStatusFailed, errorMsg, postID)

	if err != nil {
		return fmt.Errorf("failed to update extraction error: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var post Post
	var tags, author string

	err := row.Scan(
		&post.ID, &post.Source, &post.Slug, &post.URL, &post.Title,
		&post.Excerpt, &post.ImageURL, &post.PublishedAt,
		&post.Content, &tags, &author, &post.CommentsCount,
		&post.ContentExtractionStatus, &post.ContentExtractedAt,
		&post.ContentExtractionError, &post.ExtractionAttempts,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan post row: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &post.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(author), &post.Author); err != nil {
		return nil, fmt.Errorf("failed to decode author: %w", err)
	}
	if post.Tags == nil {
		post.Tags = []content.Tag{}
	}

	return &post, nil
}
