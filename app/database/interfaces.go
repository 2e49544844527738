package database

import (
	"time"

	"github.com/vhallberg/clubfeed/app/content"
)

const (
	ExtractionStatusPending = "pending"
	ExtractionStatusSuccess = "success"
	ExtractionStatusFailed  = "failed"
	ExtractionStatusSkipped = "skipped"
)

type PostRepository interface {
	GetPosts(limit, offset int) ([]Post, error)
	GetPost(postID string) (*Post, error)
	GetPostCount() (int, error)

	UpsertPost(source string, post *content.Post) error

	GetPostsForExtraction(limit int) ([]PostForExtraction, error)
	UpdateExtractedContent(postID string, body string, extractedAt time.Time) error
	UpdateExtractionError(postID string, errorMsg string) error
}

type FixtureRepository interface {
	GetFixtures() ([]Fixture, error)
	GetFixture(fixtureID string) (*Fixture, error)
	GetFixtureCount() (int, error)

	UpsertFixture(seasonID int, fixture *content.Fixture) error
}
