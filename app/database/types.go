package database

import (
	"time"

	"github.com/vhallberg/clubfeed/app/content"
)

// Post is a normalized news post plus its storage bookkeeping.
type Post struct {
	content.Post
	Source                  string // Configuration source identifier derived from filename
	ContentExtractionStatus string // pending, success, failed, skipped
	ContentExtractedAt      *time.Time
	ContentExtractionError  string
	ExtractionAttempts      int
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Fixture is a normalized fixture plus its storage bookkeeping.
type Fixture struct {
	content.Fixture
	SeasonID  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PostForExtraction struct {
	ID  string
	URL string
}
